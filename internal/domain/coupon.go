package domain

import "time"

type Coupon struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code" gorm:"uniqueIndex" validate:"required"`
	DiscountPercent float64   `json:"discount_percent" validate:"gte=0,lte=100"`
	UsageCount      int64     `json:"usage_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
