package domain

import "time"

type BookingStatus string

const (
	BookingPending        BookingStatus = "pending"
	BookingApprovedUnpaid BookingStatus = "approved_unpaid"
	BookingRejected       BookingStatus = "rejected"
	BookingConfirmed      BookingStatus = "confirmed"
	BookingPaid           BookingStatus = "paid"
	// BookingExpired is never stored: it is derived at read time from
	// ExpiresAt while the row still says approved_unpaid.
	BookingExpired BookingStatus = "expired"
)

type Booking struct {
	ID         int64 `json:"id"`
	ServiceID  int64 `json:"service_id" validate:"required"`
	UserID     int64 `json:"user_id" validate:"required"`
	ProviderID int64 `json:"provider_id"`
	Quantity   int   `json:"quantity" validate:"gte=1"`

	BookedFor time.Time     `json:"booked_for"`
	Status    BookingStatus `json:"status"`

	// Monetary breakdown, frozen at checkout time. Zero until then.
	Subtotal         float64 `json:"subtotal"`
	DiscountAmount   float64 `json:"discount_amount"`
	TaxAmount        float64 `json:"tax_amount"`
	FinalPrice       float64 `json:"final_price"`
	PlatformFee      float64 `json:"platform_fee"`
	ProviderEarnings float64 `json:"provider_earnings"`

	CouponCode      string     `json:"coupon_code,omitempty"`
	CouponRedeemed  bool       `json:"-"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveStatus reports the booking status with lazy expiry applied:
// an approved_unpaid booking past its window reads as expired even though
// the stored status is unchanged.
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == BookingApprovedUnpaid && b.ExpiresAt != nil && now.After(*b.ExpiresAt) {
		return BookingExpired
	}
	return b.Status
}
