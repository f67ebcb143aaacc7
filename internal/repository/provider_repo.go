package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tourbook/internal/domain"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

type providerModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	UserID           int64     `gorm:"column:user_id;index"`
	CompanyName      string    `gorm:"column:company_name"`
	Phone            *string   `gorm:"column:phone"`
	CustomCommission *float64  `gorm:"column:custom_commission"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (providerModel) TableName() string { return "provider_profiles" }

func toDomainProvider(m providerModel) *domain.ProviderProfile {
	var phone string
	if m.Phone != nil {
		phone = *m.Phone
	}
	return &domain.ProviderProfile{
		ID:               m.ID,
		UserID:           m.UserID,
		CompanyName:      m.CompanyName,
		Phone:            phone,
		CustomCommission: m.CustomCommission,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *ProviderRepository) Create(ctx context.Context, p *domain.ProviderProfile) error {
	var phone *string
	if p.Phone != "" {
		v := p.Phone
		phone = &v
	}
	m := providerModel{
		UserID:           p.UserID,
		CompanyName:      p.CompanyName,
		Phone:            phone,
		CustomCommission: p.CustomCommission,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainProvider(m)
	return nil
}

func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*domain.ProviderProfile, error) {
	var m providerModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainProvider(m), nil
}

func (r *ProviderRepository) GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error) {
	var m providerModel
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainProvider(m), nil
}
