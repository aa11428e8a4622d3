package store

import (
	"context"
	"errors"
	"fmt"

	"campus-popcorn-api/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepo struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Map returns all settings as a key/value map. A read error yields an empty
// map — callers fall back to configured defaults.
func (r *SettingsRepo) Map(ctx context.Context) map[string]string {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		r.log.Warn().Err(err).Msg("settings read failed, using defaults")
		return map[string]string{}
	}
	m := make(map[string]string, len(rows))
	for _, row := range rows {
		m[row.Key] = row.Value
	}
	return m
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var row models.Setting
	err := r.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return row.Value, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, key, value string) error {
	row := models.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}
