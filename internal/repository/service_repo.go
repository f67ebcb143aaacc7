package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tourbook/internal/domain"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type serviceModel struct {
	ID                 int64     `gorm:"column:id;primaryKey"`
	ProviderID         int64     `gorm:"column:provider_id"`
	Name               string    `gorm:"column:name"`
	Price              float64   `gorm:"column:price"`
	Category           string    `gorm:"column:service_category"`
	SubCategory        *string   `gorm:"column:sub_category"`
	PlatformCommission *float64  `gorm:"column:platform_commission"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

func toDomainService(m serviceModel) *domain.TourService {
	var sub string
	if m.SubCategory != nil {
		sub = *m.SubCategory
	}
	return &domain.TourService{
		ID:                 m.ID,
		ProviderID:         m.ProviderID,
		Name:               m.Name,
		Price:              m.Price,
		Category:           domain.ServiceCategory(m.Category),
		SubCategory:        sub,
		PlatformCommission: m.PlatformCommission,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.TourService, error) {
	var m serviceModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainService(m), nil
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.TourService) error {
	var sub *string
	if s.SubCategory != "" {
		v := s.SubCategory
		sub = &v
	}
	m := serviceModel{
		ProviderID:         s.ProviderID,
		Name:               s.Name,
		Price:              s.Price,
		Category:           string(s.Category),
		SubCategory:        sub,
		PlatformCommission: s.PlatformCommission,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainService(m)
	return nil
}
