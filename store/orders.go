package store

import (
	"context"
	"errors"
	"fmt"

	"campus-popcorn-api/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type OrderRepo struct {
	db  *gorm.DB
	log zerolog.Logger
}

// ErrNotFound is returned when a row lookup finds nothing.
var ErrNotFound = errors.New("record not found")

func (r *OrderRepo) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Payments").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// Update applies a partial column update to an existing order.
// Last write wins; there is no row versioning.
func (r *OrderRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// OrderFilter narrows List; zero values are ignored.
type OrderFilter struct {
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	UserID        string
	HasProof      bool
}

func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Payments")
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.HasProof {
		query = query.Where("payment_proof_url IS NOT NULL")
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) ByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.List(ctx, OrderFilter{UserID: userID})
}

// UserOrderStats is a per-user order count and spend rollup for the admin
// clients view.
type UserOrderStats struct {
	UserID     string `json:"user_id"`
	OrderCount int    `json:"order_count"`
	TotalSpent int    `json:"total_spent"`
}

func (r *OrderRepo) StatsByUser(ctx context.Context) (map[string]UserOrderStats, error) {
	var rows []UserOrderStats
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("user_id, count(*) as order_count, sum(total_price) as total_spent").
		Where("user_id IS NOT NULL").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	stats := make(map[string]UserOrderStats, len(rows))
	for _, row := range rows {
		stats[row.UserID] = row
	}
	return stats, nil
}

func (r *OrderRepo) AddHistory(ctx context.Context, h *models.PaymentStatusHistory) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	return nil
}

func (r *OrderRepo) History(ctx context.Context, orderID string) ([]models.PaymentStatusHistory, error) {
	var rows []models.PaymentStatusHistory
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("created_at asc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	return rows, nil
}
