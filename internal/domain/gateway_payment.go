package domain

import "time"

type GatewayPaymentStatus string

const (
	GatewayPaymentCreated   GatewayPaymentStatus = "created"
	GatewayPaymentKeyIssued GatewayPaymentStatus = "key_issued"
	GatewayPaymentPaid      GatewayPaymentStatus = "paid"
	GatewayPaymentFailed    GatewayPaymentStatus = "failed"
)

// GatewayPayment is the audit record of one payment-initiation attempt
// against the external gateway. Retries create fresh rows with fresh
// merchant order ids; rows are never deleted.
type GatewayPayment struct {
	ID              int64                `gorm:"primaryKey" json:"id"`
	BookingID       int64                `gorm:"index;not null" json:"booking_id"`
	MerchantOrderID string               `gorm:"uniqueIndex;type:varchar(64);not null" json:"merchant_order_id"`
	AmountCents     int64                `gorm:"not null" json:"amount_cents"`
	Currency        string               `gorm:"type:varchar(8)" json:"currency"`
	GatewayOrderID  string               `gorm:"type:varchar(64)" json:"gateway_order_id"`
	PaymentToken    string               `gorm:"type:text" json:"payment_token"`
	RedirectURL     string               `gorm:"type:text" json:"redirect_url"`
	Status          GatewayPaymentStatus `gorm:"type:varchar(20);default:'created';index" json:"status"`
	FailureReason   string               `gorm:"type:text" json:"failure_reason"`
	CallbackRawBody string               `gorm:"type:text" json:"callback_raw_body"`
	PaidAt          *time.Time           `json:"paid_at"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func (GatewayPayment) TableName() string { return "gateway_payments" }
