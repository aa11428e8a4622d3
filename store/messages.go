package store

import (
	"context"
	"fmt"
	"strings"

	"campus-popcorn-api/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type MessageRepo struct {
	db  *gorm.DB
	log zerolog.Logger
}

func (r *MessageRepo) Insert(ctx context.Context, msg *models.PaymentMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Match returns ingested messages satisfying the verification rule: exact
// txid, payer name containing accountName case-insensitively, and phone number
// ending with the given suffix. Ordered most recent first so the caller can
// deterministically take the first row when several qualify.
func (r *MessageRepo) Match(ctx context.Context, txid, accountName, phoneSuffix string) ([]models.PaymentMessage, error) {
	var msgs []models.PaymentMessage
	err := r.db.WithContext(ctx).
		Where("tx_id = ?", txid).
		Where("lower(payer_name) LIKE ?", "%"+strings.ToLower(accountName)+"%").
		Where("phone_number LIKE ?", "%"+phoneSuffix).
		Order("received_at desc").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("match messages: %w", err)
	}
	return msgs, nil
}

// Recent returns the latest ingested messages for the admin payments view.
func (r *MessageRepo) Recent(ctx context.Context, limit int) ([]models.PaymentMessage, error) {
	var msgs []models.PaymentMessage
	err := r.db.WithContext(ctx).
		Order("received_at desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return msgs, nil
}
