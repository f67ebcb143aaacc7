package domain

import "time"

// ProviderProfile is the seller-side profile attached to a user with the
// provider role.
type ProviderProfile struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone,omitempty"`

	// CustomCommission sits between a per-service override and the
	// category default in the resolution order.
	CustomCommission *float64 `json:"custom_commission,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
