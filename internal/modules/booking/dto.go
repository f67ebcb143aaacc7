package booking

import "time"

type CreateBookingRequest struct {
	ServiceID int64     `json:"service_id" binding:"required"`
	UserID    int64     `json:"-"`
	Quantity  int       `json:"quantity"`
	BookedFor time.Time `json:"booked_for" binding:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CheckoutRequest struct {
	CouponCode string `json:"coupon_code"`
}

// CheckoutResult is what the client sees after a checkout call: either a
// gateway redirect or the no-payment short-circuit, never both.
type CheckoutResult struct {
	BookingID         int64   `json:"booking_id"`
	NoPaymentRequired bool    `json:"no_payment_required"`
	RedirectURL       string  `json:"redirect_url,omitempty"`
	Subtotal          float64 `json:"subtotal"`
	DiscountAmount    float64 `json:"discount_amount"`
	TaxAmount         float64 `json:"tax_amount"`
	FinalPrice        float64 `json:"final_price"`
}

// StatusEvent is pushed to connected panels on every lifecycle transition.
type StatusEvent struct {
	BookingID int64  `json:"booking_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}
