package domain

import "time"

// PlatformSettings is the singleton row of platform-wide configuration.
// This core only reads it; admin screens write it.
type PlatformSettings struct {
	ID int64 `json:"id"`

	IsGeneralDiscountActive bool    `json:"is_general_discount_active"`
	GeneralDiscountPercent  float64 `json:"general_discount_percent"`

	CommissionTourist float64 `json:"commission_tourist"`
	CommissionHousing float64 `json:"commission_housing"`
	CommissionFood    float64 `json:"commission_food"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (PlatformSettings) TableName() string { return "platform_settings" }
