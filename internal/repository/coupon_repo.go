package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"tourbook/internal/domain"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

type couponModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	Code            string    `gorm:"column:code;uniqueIndex"`
	DiscountPercent float64   `gorm:"column:discount_percent"`
	UsageCount      int64     `gorm:"column:usage_count"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (couponModel) TableName() string { return "coupons" }

// NormalizeCode is the canonical form coupon codes are stored and matched in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var m couponModel
	tx := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &domain.Coupon{
		ID:              m.ID,
		Code:            m.Code,
		DiscountPercent: m.DiscountPercent,
		UsageCount:      m.UsageCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func (r *CouponRepository) Create(ctx context.Context, c *domain.Coupon) error {
	m := couponModel{
		Code:            NormalizeCode(c.Code),
		DiscountPercent: c.DiscountPercent,
		UsageCount:      c.UsageCount,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	c.ID = m.ID
	c.Code = m.Code
	return nil
}

// IncrementUsage bumps the usage counter in the database rather than
// read-modify-write, so concurrent checkouts cannot lose counts.
func (r *CouponRepository) IncrementUsage(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&couponModel{}).
		Where("code = ?", NormalizeCode(code)).
		Updates(map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now().UTC(),
		}).Error
}
