package store

import (
	"context"
	"errors"
	"fmt"

	"campus-popcorn-api/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type UserRepo struct {
	db  *gorm.DB
	log zerolog.Logger
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &u, nil
}

// IsAdminRow reports whether the admins table carries a row for this user —
// one of the admin role sources, independent of the profile fields.
func (r *UserRepo) IsAdminRow(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("admin row lookup: %w", err)
	}
	return count > 0, nil
}

// SaveAdminRow grants admin via the admins table.
func (r *UserRepo) SaveAdminRow(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Create(&models.AdminUser{UserID: userID}).Error; err != nil {
		return fmt.Errorf("save admin row: %w", err)
	}
	return nil
}

func (r *UserRepo) ListClients(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("role = ?", models.RoleClient).
		Order("created_at desc").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return users, nil
}

func (r *UserRepo) SaveSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (r *UserRepo) SubscriptionsByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("subscriptions by user: %w", err)
	}
	return subs, nil
}
