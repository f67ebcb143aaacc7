package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tourbook/internal/domain"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the singleton settings row, falling back to zero-valued
// settings when none has been seeded yet (no discount, zero commissions).
func (r *SettingsRepository) Get(ctx context.Context) (*domain.PlatformSettings, error) {
	var s domain.PlatformSettings
	tx := r.db.WithContext(ctx).First(&s)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return &domain.PlatformSettings{}, nil
		}
		return nil, tx.Error
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *domain.PlatformSettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}
