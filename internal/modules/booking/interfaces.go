package booking

import (
	"context"
	"time"

	"tourbook/internal/domain"
	"tourbook/internal/modules/payment"
)

// BookingRepository defines the persistence contract for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	GetByProviderID(ctx context.Context, providerID int64) ([]domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updates map[string]any) (bool, error)
	FreezeSettlement(ctx context.Context, id int64, b *domain.Booking) (bool, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TourService, error)
}

type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ProviderProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.PlatformSettings, error)
}

type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// NotificationSender is the fire-and-forget dispatcher contract.
type NotificationSender interface {
	NotifyBookingRequested(ctx context.Context, providerUserID, bookingID int64) error
	NotifyBookingApproved(ctx context.Context, clientUserID, bookingID int64, expiresAt time.Time) error
	NotifyBookingRejected(ctx context.Context, clientUserID, bookingID int64, reason string) error
}

// PaymentInitiator runs the gateway handshake for a frozen settlement.
type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, bookingID, userID int64, amountCents int64, buyer payment.BuyerContact) (*payment.InitPaymentResult, error)
}

// EventPusher fans lifecycle transitions out to connected panels.
type EventPusher interface {
	SendToUser(userID int64, message interface{}) bool
}
