package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tourbook/internal/domain"
)

type Service struct {
	client   gatewayClient
	payments paymentRepo
	bookings bookingWriter
	coupons  couponCounter
	notifs   notifier
	logger   *zap.Logger

	hmacSecret string
	currency   string
}

func NewService(client gatewayClient, payments paymentRepo, bookings bookingWriter, coupons couponCounter, notifs notifier, logger *zap.Logger, hmacSecret, currency string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:     client,
		payments:   payments,
		bookings:   bookings,
		coupons:    coupons,
		notifs:     notifs,
		logger:     logger,
		hmacSecret: hmacSecret,
		currency:   currency,
	}
}

// InitiatePayment persists an attempt record, runs the gateway handshake
// and returns the redirect target. The merchant order id carries a time
// component so a retried checkout never collides with an earlier attempt.
func (s *Service) InitiatePayment(ctx context.Context, bookingID, userID int64, amountCents int64, buyer BuyerContact) (*InitPaymentResult, error) {
	merchantOrderID := fmt.Sprintf("%d-%d", bookingID, time.Now().UnixNano())

	attempt := &domain.GatewayPayment{
		BookingID:       bookingID,
		MerchantOrderID: merchantOrderID,
		AmountCents:     amountCents,
		Currency:        s.currency,
		Status:          domain.GatewayPaymentCreated,
	}
	if err := s.payments.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save payment attempt: %w", err)
	}

	result, err := s.client.InitiatePayment(ctx, amountCents, merchantOrderID, buyer)
	if err != nil {
		if ferr := s.payments.MarkFailed(ctx, attempt.ID, err.Error()); ferr != nil {
			s.logger.Error("failed to mark payment attempt failed",
				zap.Int64("booking_id", bookingID), zap.Error(ferr))
		}
		return nil, err
	}

	if err := s.payments.RecordKeyIssued(ctx, attempt.ID, result.GatewayOrderID, result.PaymentToken, result.RedirectURL); err != nil {
		s.logger.Error("failed to record issued payment key",
			zap.Int64("booking_id", bookingID), zap.Error(err))
	}

	s.logger.Info("payment initiated",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", userID),
		zap.String("merchant_order_id", merchantOrderID),
		zap.Int64("amount_cents", amountCents))

	return &InitPaymentResult{
		BookingID:       bookingID,
		MerchantOrderID: merchantOrderID,
		AmountCents:     amountCents,
		RedirectURL:     result.RedirectURL,
	}, nil
}

// HandleConfirmationCallback processes the gateway's payment notification:
// verify the signature, cross-check the amount against the stored attempt,
// mark the attempt paid exactly once, flip the booking to paid and count
// the coupon redemption. Safe against retried callbacks.
func (s *Service) HandleConfirmationCallback(ctx context.Context, cb ConfirmationCallback, rawBody string) error {
	if !s.verifySignature(cb) {
		s.logger.Warn("callback signature rejected", zap.String("merchant_order_id", cb.MerchantOrderID))
		return ErrInvalidSignature
	}

	attempt, err := s.payments.GetByMerchantOrderID(ctx, cb.MerchantOrderID)
	if err != nil {
		return err
	}

	if cb.AmountCents != attempt.AmountCents {
		reason := fmt.Sprintf("amount mismatch callback=%d expected=%d", cb.AmountCents, attempt.AmountCents)
		if ferr := s.payments.MarkFailed(ctx, attempt.ID, reason); ferr != nil {
			s.logger.Error("failed to persist amount mismatch", zap.Error(ferr))
		}
		return ErrAmountMismatch
	}

	if !cb.Success {
		if err := s.payments.MarkFailed(ctx, attempt.ID, "gateway reported failure"); err != nil {
			return err
		}
		s.logger.Info("gateway reported failed payment", zap.String("merchant_order_id", cb.MerchantOrderID))
		return nil
	}

	changed, err := s.payments.MarkPaidIdempotent(ctx, attempt.ID, rawBody, time.Now().UTC())
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Info("idempotent callback, attempt already paid", zap.String("merchant_order_id", cb.MerchantOrderID))
		return nil
	}

	booking, err := s.bookings.GetByID(ctx, attempt.BookingID)
	if err != nil {
		return err
	}

	// A payment completing after the approval window is a reconciliation
	// case: the stored status is still approved_unpaid, so the transition
	// applies and the money is accounted for rather than dropped.
	flipped, err := s.bookings.TransitionStatus(ctx, booking.ID, domain.BookingApprovedUnpaid, domain.BookingPaid, nil)
	if err != nil {
		return err
	}
	if !flipped {
		s.logger.Warn("booking not in approved_unpaid on confirmation",
			zap.Int64("booking_id", booking.ID), zap.String("status", string(booking.Status)))
	}

	if booking.CouponCode != "" {
		redeemed, err := s.bookings.MarkCouponRedeemed(ctx, booking.ID)
		if err != nil {
			s.logger.Error("failed to mark coupon redeemed", zap.Int64("booking_id", booking.ID), zap.Error(err))
		} else if redeemed {
			if err := s.coupons.IncrementUsage(ctx, booking.CouponCode); err != nil {
				s.logger.Error("failed to increment coupon usage",
					zap.String("coupon_code", booking.CouponCode), zap.Error(err))
			}
		}
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyPaymentReceived(ctx, booking.UserID, booking.ID, booking.FinalPrice); err != nil {
			s.logger.Error("payment notification failed", zap.Int64("booking_id", booking.ID), zap.Error(err))
		}
	}

	return nil
}

func (s *Service) verifySignature(cb ConfirmationCallback) bool {
	expected := s.signCallback(cb.MerchantOrderID, cb.AmountCents, cb.Success)
	return hmac.Equal([]byte(expected), []byte(cb.HMAC))
}

func (s *Service) signCallback(merchantOrderID string, amountCents int64, success bool) string {
	mac := hmac.New(sha512.New, []byte(s.hmacSecret))
	mac.Write([]byte(merchantOrderID + ":" + strconv.FormatInt(amountCents, 10) + ":" + strconv.FormatBool(success)))
	return hex.EncodeToString(mac.Sum(nil))
}
