package store

import (
	"context"
	"fmt"

	"campus-popcorn-api/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type PaymentRepo struct {
	db  *gorm.DB
	log zerolog.Logger
}

func (r *PaymentRepo) Insert(ctx context.Context, p *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) ByOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("verified_at desc").Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("payments by order: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepo) List(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Order("verified_at desc").Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
