package domain

import "time"

type ServiceCategory string

const (
	CategoryTourist    ServiceCategory = "tourist"
	CategoryExperience ServiceCategory = "experience"
	CategoryHousing    ServiceCategory = "housing"
	CategoryFood       ServiceCategory = "food"
)

// TourService is a bookable offering published by a provider.
type TourService struct {
	ID          int64           `json:"id"`
	ProviderID  int64           `json:"provider_id" validate:"required"`
	Name        string          `json:"name"`
	Price       float64         `json:"price" validate:"gte=0"`
	Category    ServiceCategory `json:"category"`
	SubCategory string          `json:"sub_category,omitempty"`

	// PlatformCommission overrides every other commission source when set.
	// A stored 0 is a real override, which is why this is a pointer.
	PlatformCommission *float64 `json:"platform_commission,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
