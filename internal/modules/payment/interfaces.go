package payment

import (
	"context"
	"time"

	"tourbook/internal/domain"
)

type gatewayClient interface {
	InitiatePayment(ctx context.Context, amountCents int64, merchantOrderID string, buyer BuyerContact) (*HandshakeResult, error)
}

type paymentRepo interface {
	Create(ctx context.Context, p *domain.GatewayPayment) error
	GetByMerchantOrderID(ctx context.Context, merchantOrderID string) (*domain.GatewayPayment, error)
	RecordKeyIssued(ctx context.Context, id int64, gatewayOrderID, paymentToken, redirectURL string) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	MarkPaidIdempotent(ctx context.Context, id int64, rawBody string, paidAt time.Time) (bool, error)
}

type bookingWriter interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updates map[string]any) (bool, error)
	MarkCouponRedeemed(ctx context.Context, id int64) (bool, error)
}

type couponCounter interface {
	IncrementUsage(ctx context.Context, code string) error
}

type notifier interface {
	NotifyPaymentReceived(ctx context.Context, userID, bookingID int64, amount float64) error
}
