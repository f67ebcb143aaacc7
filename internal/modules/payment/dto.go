package payment

type InitPaymentResult struct {
	BookingID       int64  `json:"booking_id"`
	MerchantOrderID string `json:"merchant_order_id"`
	AmountCents     int64  `json:"amount_cents"`
	RedirectURL     string `json:"redirect_url"`
}

// ConfirmationCallback is the gateway's server-to-server notification that
// a payment attempt finished.
type ConfirmationCallback struct {
	MerchantOrderID string `json:"merchant_order_id" binding:"required"`
	AmountCents     int64  `json:"amount_cents" binding:"required"`
	Success         bool   `json:"success"`
	HMAC            string `json:"hmac" binding:"required"`
}
