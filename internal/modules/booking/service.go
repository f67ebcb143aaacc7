package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tourbook/internal/domain"
	"tourbook/internal/modules/commission"
	"tourbook/internal/modules/payment"
	"tourbook/internal/modules/pricing"
	"tourbook/internal/pkg/validator"
)

type Service struct {
	bookings  BookingRepository
	services  ServiceRepository
	providers ProviderRepository
	settings  SettingsRepository
	coupons   CouponRepository
	users     UserRepository
	notifs    NotificationSender
	payments  PaymentInitiator
	events    EventPusher
	logger    *zap.Logger

	approvalWindow time.Duration
}

func NewService(
	bookings BookingRepository,
	services ServiceRepository,
	providers ProviderRepository,
	settings SettingsRepository,
	coupons CouponRepository,
	users UserRepository,
	notifs NotificationSender,
	payments PaymentInitiator,
	events EventPusher,
	logger *zap.Logger,
	approvalWindow time.Duration,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if approvalWindow <= 0 {
		approvalWindow = 24 * time.Hour
	}
	return &Service{
		bookings:       bookings,
		services:       services,
		providers:      providers,
		settings:       settings,
		coupons:        coupons,
		users:          users,
		notifs:         notifs,
		payments:       payments,
		events:         events,
		logger:         logger,
		approvalWindow: approvalWindow,
	}
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.Quantity < 0 {
		return nil, ErrValidation
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if !req.BookedFor.IsZero() && req.BookedFor.Before(time.Now()) {
		return nil, ErrValidation
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	b := &domain.Booking{
		ServiceID:  svc.ID,
		UserID:     req.UserID,
		ProviderID: svc.ProviderID,
		Quantity:   qty,
		BookedFor:  req.BookedFor,
		Status:     domain.BookingPending,
	}
	if errs := validator.Validate(b); errs != nil {
		return nil, ErrValidation
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		if provider, perr := s.providers.GetByID(ctx, svc.ProviderID); perr == nil {
			if nerr := s.notifs.NotifyBookingRequested(ctx, provider.UserID, b.ID); nerr != nil {
				s.logger.Error("booking requested notification failed",
					zap.Int64("booking_id", b.ID), zap.Error(nerr))
			}
			s.pushEvent(provider.UserID, StatusEvent{BookingID: b.ID, Status: string(b.Status)})
		}
	}

	return b, nil
}

// Approve moves a pending booking to approved_unpaid and starts the payment
// window. Only the owning provider may approve.
func (s *Service) Approve(ctx context.Context, bookingID, actorUserID int64) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwningProvider(ctx, b, actorUserID); err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.approvalWindow).UTC()
	ok, err := s.bookings.TransitionStatus(ctx, b.ID, domain.BookingPending, domain.BookingApprovedUnpaid,
		map[string]any{"expires_at": expiresAt})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflictingState
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingApproved(ctx, b.UserID, b.ID, expiresAt); err != nil {
			s.logger.Error("booking approved notification failed",
				zap.Int64("booking_id", b.ID), zap.Error(err))
		}
	}
	s.pushEvent(b.UserID, StatusEvent{BookingID: b.ID, Status: string(domain.BookingApprovedUnpaid)})

	return s.getBooking(ctx, bookingID)
}

// Reject moves a pending booking to the terminal rejected state. A reason
// is mandatory and is relayed to the client.
func (s *Service) Reject(ctx context.Context, bookingID, actorUserID int64, reason string) (*domain.Booking, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwningProvider(ctx, b, actorUserID); err != nil {
		return nil, err
	}

	ok, err := s.bookings.TransitionStatus(ctx, b.ID, domain.BookingPending, domain.BookingRejected,
		map[string]any{"rejection_reason": reason})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflictingState
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingRejected(ctx, b.UserID, b.ID, reason); err != nil {
			s.logger.Error("booking rejected notification failed",
				zap.Int64("booking_id", b.ID), zap.Error(err))
		}
	}
	s.pushEvent(b.UserID, StatusEvent{BookingID: b.ID, Status: string(domain.BookingRejected), Reason: reason})

	return s.getBooking(ctx, bookingID)
}

// Checkout freezes the settlement onto the booking and initiates the
// gateway handshake. It does not flip the booking to paid; that happens on
// gateway confirmation.
func (s *Service) Checkout(ctx context.Context, bookingID, actorUserID int64, req CheckoutRequest) (*CheckoutResult, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorUserID {
		return nil, ErrForbidden
	}

	switch b.EffectiveStatus(time.Now()) {
	case domain.BookingApprovedUnpaid:
	case domain.BookingExpired:
		return nil, ErrExpired
	default:
		return nil, ErrConflictingState
	}

	settlement, err := s.computeSettlement(ctx, b, req.CouponCode)
	if err != nil {
		return nil, err
	}

	rounded := settlement.Rounded()
	frozen := &domain.Booking{
		Subtotal:         rounded.Subtotal.InexactFloat64(),
		DiscountAmount:   rounded.TotalDiscount.InexactFloat64(),
		TaxAmount:        rounded.TaxAmount.InexactFloat64(),
		FinalPrice:       rounded.FinalPrice.InexactFloat64(),
		PlatformFee:      rounded.PlatformFee.InexactFloat64(),
		ProviderEarnings: rounded.ProviderEarnings.InexactFloat64(),
		CouponCode:       rounded.CouponCode,
	}
	ok, err := s.bookings.FreezeSettlement(ctx, b.ID, frozen)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Status changed between the read and the write; treat as conflict.
		return nil, ErrConflictingState
	}

	result := &CheckoutResult{
		BookingID:      b.ID,
		Subtotal:       frozen.Subtotal,
		DiscountAmount: frozen.DiscountAmount,
		TaxAmount:      frozen.TaxAmount,
		FinalPrice:     frozen.FinalPrice,
	}

	if rounded.NoPaymentRequired() {
		s.logger.Info("no payment required", zap.Int64("booking_id", b.ID))
		result.NoPaymentRequired = true
		return result, nil
	}

	buyer := payment.BuyerContact{}
	if user, uerr := s.users.GetByID(ctx, b.UserID); uerr == nil {
		buyer = payment.BuyerContact{Name: user.Name, Email: user.Email, Phone: user.Phone}
	}

	init, err := s.payments.InitiatePayment(ctx, b.ID, b.UserID, rounded.AmountCents(), buyer)
	if err != nil {
		return nil, err
	}

	result.RedirectURL = init.RedirectURL
	return result, nil
}

// computeSettlement resolves the commission and runs the calculator. An
// unknown coupon code is dropped and the settlement recomputed without it.
func (s *Service) computeSettlement(ctx context.Context, b *domain.Booking, couponCode string) (*pricing.Settlement, error) {
	svc, err := s.services.GetByID(ctx, b.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	provider, err := s.providers.GetByID(ctx, b.ProviderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	rate := commission.Resolve(svc, provider, *settings)

	var coupon *domain.Coupon
	if couponCode != "" {
		coupon, err = s.coupons.GetByCode(ctx, couponCode)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			s.logger.Info("coupon not found, recomputing without it",
				zap.Int64("booking_id", b.ID), zap.String("coupon_code", couponCode))
			coupon = nil
			couponCode = ""
		}
	}

	settlement, err := pricing.Calculate(pricing.Input{
		UnitPrice:      svc.Price,
		Quantity:       b.Quantity,
		CouponCode:     couponCode,
		Coupon:         coupon,
		Settings:       *settings,
		CommissionRate: rate,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrValidation) {
			return nil, ErrValidation
		}
		return nil, err
	}
	return settlement, nil
}

func (s *Service) GetMyBookings(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.bookings.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	applyEffectiveStatus(rows)
	return rows, nil
}

func (s *Service) GetProviderBookings(ctx context.Context, actorUserID int64) ([]domain.Booking, error) {
	provider, err := s.providers.GetByUserID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	rows, err := s.bookings.GetByProviderID(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	applyEffectiveStatus(rows)
	return rows, nil
}

// GetByID returns one booking with lazy expiry applied. Only the booking
// client or the owning provider may read it.
func (s *Service) GetByID(ctx context.Context, bookingID, actorUserID int64) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorUserID {
		if err := s.requireOwningProvider(ctx, b, actorUserID); err != nil {
			return nil, err
		}
	}
	b.Status = b.EffectiveStatus(time.Now())
	return b, nil
}

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) requireOwningProvider(ctx context.Context, b *domain.Booking, actorUserID int64) error {
	provider, err := s.providers.GetByUserID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if provider.ID != b.ProviderID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) pushEvent(userID int64, event StatusEvent) {
	if s.events != nil {
		s.events.SendToUser(userID, event)
	}
}

// Reads report expiry lazily: stored approved_unpaid past its window is
// surfaced as expired without touching the row.
func applyEffectiveStatus(rows []domain.Booking) {
	now := time.Now()
	for i := range rows {
		rows[i].Status = rows[i].EffectiveStatus(now)
	}
}
