package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourbook/internal/domain"
)

type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) InitiatePayment(ctx context.Context, amountCents int64, merchantOrderID string, buyer BuyerContact) (*HandshakeResult, error) {
	args := m.Called(ctx, amountCents, merchantOrderID, buyer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*HandshakeResult), args.Error(1)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.GatewayPayment) error {
	args := m.Called(ctx, p)
	if p != nil {
		p.ID = 77 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByMerchantOrderID(ctx context.Context, merchantOrderID string) (*domain.GatewayPayment, error) {
	args := m.Called(ctx, merchantOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayPayment), args.Error(1)
}

func (m *MockPaymentRepo) RecordKeyIssued(ctx context.Context, id int64, gatewayOrderID, paymentToken, redirectURL string) error {
	args := m.Called(ctx, id, gatewayOrderID, paymentToken, redirectURL)
	return args.Error(0)
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockPaymentRepo) MarkPaidIdempotent(ctx context.Context, id int64, rawBody string, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, rawBody, paidAt)
	return args.Bool(0), args.Error(1)
}

type MockBookingWriter struct {
	mock.Mock
}

func (m *MockBookingWriter) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingWriter) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updates map[string]any) (bool, error) {
	args := m.Called(ctx, id, from, to, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingWriter) MarkCouponRedeemed(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockCouponCounter struct {
	mock.Mock
}

func (m *MockCouponCounter) IncrementUsage(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPaymentReceived(ctx context.Context, userID, bookingID int64, amount float64) error {
	args := m.Called(ctx, userID, bookingID, amount)
	return args.Error(0)
}

func newTestService(client gatewayClient, payments paymentRepo, bookings bookingWriter, coupons couponCounter, notifs notifier) *Service {
	return NewService(client, payments, bookings, coupons, notifs, nil, "test-secret", "SAR")
}

func TestInitiatePayment_HappyPath(t *testing.T) {
	client := new(MockGatewayClient)
	payments := new(MockPaymentRepo)
	svc := newTestService(client, payments, nil, nil, nil)

	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.GatewayPayment) bool {
		return p.BookingID == 55 &&
			p.AmountCents == 170000 &&
			p.Status == domain.GatewayPaymentCreated &&
			strings.HasPrefix(p.MerchantOrderID, "55-")
	})).Return(nil)
	client.On("InitiatePayment", mock.Anything, int64(170000), mock.Anything, mock.Anything).
		Return(&HandshakeResult{
			GatewayOrderID: "4242",
			PaymentToken:   "ptoken",
			RedirectURL:    "https://gateway.example/iframes/123?payment_token=ptoken",
		}, nil)
	payments.On("RecordKeyIssued", mock.Anything, int64(77), "4242", "ptoken",
		"https://gateway.example/iframes/123?payment_token=ptoken").Return(nil)

	result, err := svc.InitiatePayment(context.Background(), 55, 9, 170000, BuyerContact{Name: "Demo Client"})
	require.NoError(t, err)

	assert.Equal(t, int64(55), result.BookingID)
	assert.Equal(t, "https://gateway.example/iframes/123?payment_token=ptoken", result.RedirectURL)
	assert.True(t, strings.HasPrefix(result.MerchantOrderID, "55-"))
	payments.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestInitiatePayment_HandshakeFailureMarksAttempt(t *testing.T) {
	client := new(MockGatewayClient)
	payments := new(MockPaymentRepo)
	svc := newTestService(client, payments, nil, nil, nil)

	stepErr := &StepError{Step: StepOrder, Err: errors.New("unexpected status 422")}
	payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	client.On("InitiatePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, stepErr)
	payments.On("MarkFailed", mock.Anything, int64(77), stepErr.Error()).Return(nil)

	_, err := svc.InitiatePayment(context.Background(), 55, 9, 1000, BuyerContact{})

	var gotStep *StepError
	require.ErrorAs(t, err, &gotStep)
	assert.Equal(t, StepOrder, gotStep.Step)
	payments.AssertExpectations(t)
}

func TestInitiatePayment_FreshMerchantOrderIDPerAttempt(t *testing.T) {
	client := new(MockGatewayClient)
	payments := new(MockPaymentRepo)
	svc := newTestService(client, payments, nil, nil, nil)

	seen := map[string]bool{}
	payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	payments.On("RecordKeyIssued", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("InitiatePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&HandshakeResult{GatewayOrderID: "1", PaymentToken: "t", RedirectURL: "u"}, nil)

	for i := 0; i < 3; i++ {
		result, err := svc.InitiatePayment(context.Background(), 55, 9, 1000, BuyerContact{})
		require.NoError(t, err)
		assert.False(t, seen[result.MerchantOrderID], "merchant order id reused")
		seen[result.MerchantOrderID] = true
	}
}

func callbackFor(svc *Service, merchantOrderID string, amountCents int64, success bool) ConfirmationCallback {
	return ConfirmationCallback{
		MerchantOrderID: merchantOrderID,
		AmountCents:     amountCents,
		Success:         success,
		HMAC:            svc.signCallback(merchantOrderID, amountCents, success),
	}
}

func TestHandleConfirmationCallback_InvalidSignature(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)

	cb := callbackFor(svc, "55-1", 1000, true)
	cb.HMAC = "tampered"

	err := svc.HandleConfirmationCallback(context.Background(), cb, "{}")

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleConfirmationCallback_AmountMismatch(t *testing.T) {
	payments := new(MockPaymentRepo)
	svc := newTestService(nil, payments, nil, nil, nil)

	payments.On("GetByMerchantOrderID", mock.Anything, "55-1").
		Return(&domain.GatewayPayment{ID: 77, BookingID: 55, AmountCents: 170000}, nil)
	payments.On("MarkFailed", mock.Anything, int64(77), mock.Anything).Return(nil)

	err := svc.HandleConfirmationCallback(context.Background(), callbackFor(svc, "55-1", 999, true), "{}")

	assert.ErrorIs(t, err, ErrAmountMismatch)
	payments.AssertExpectations(t)
}

func TestHandleConfirmationCallback_GatewayFailureMarksAttempt(t *testing.T) {
	payments := new(MockPaymentRepo)
	bookings := new(MockBookingWriter)
	svc := newTestService(nil, payments, bookings, nil, nil)

	payments.On("GetByMerchantOrderID", mock.Anything, "55-1").
		Return(&domain.GatewayPayment{ID: 77, BookingID: 55, AmountCents: 1000}, nil)
	payments.On("MarkFailed", mock.Anything, int64(77), "gateway reported failure").Return(nil)

	err := svc.HandleConfirmationCallback(context.Background(), callbackFor(svc, "55-1", 1000, false), "{}")

	require.NoError(t, err)
	bookings.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	payments.AssertExpectations(t)
}

func TestHandleConfirmationCallback_SuccessFlipsBookingAndCountsCoupon(t *testing.T) {
	payments := new(MockPaymentRepo)
	bookings := new(MockBookingWriter)
	coupons := new(MockCouponCounter)
	notifs := new(MockNotifier)
	svc := newTestService(nil, payments, bookings, coupons, notifs)

	payments.On("GetByMerchantOrderID", mock.Anything, "55-1").
		Return(&domain.GatewayPayment{ID: 77, BookingID: 55, AmountCents: 170000}, nil)
	payments.On("MarkPaidIdempotent", mock.Anything, int64(77), "{raw}", mock.Anything).Return(true, nil)
	bookings.On("GetByID", mock.Anything, int64(55)).
		Return(&domain.Booking{ID: 55, UserID: 9, Status: domain.BookingApprovedUnpaid, CouponCode: "SAVE5", FinalPrice: 1700}, nil)
	bookings.On("TransitionStatus", mock.Anything, int64(55), domain.BookingApprovedUnpaid, domain.BookingPaid, mock.Anything).
		Return(true, nil)
	bookings.On("MarkCouponRedeemed", mock.Anything, int64(55)).Return(true, nil)
	coupons.On("IncrementUsage", mock.Anything, "SAVE5").Return(nil)
	notifs.On("NotifyPaymentReceived", mock.Anything, int64(9), int64(55), 1700.0).Return(nil)

	err := svc.HandleConfirmationCallback(context.Background(), callbackFor(svc, "55-1", 170000, true), "{raw}")

	require.NoError(t, err)
	payments.AssertExpectations(t)
	bookings.AssertExpectations(t)
	coupons.AssertExpectations(t)
	notifs.AssertExpectations(t)
}

func TestHandleConfirmationCallback_RetriedCallbackIncrementsOnce(t *testing.T) {
	payments := new(MockPaymentRepo)
	bookings := new(MockBookingWriter)
	coupons := new(MockCouponCounter)
	svc := newTestService(nil, payments, bookings, coupons, nil)

	payments.On("GetByMerchantOrderID", mock.Anything, "55-1").
		Return(&domain.GatewayPayment{ID: 77, BookingID: 55, AmountCents: 1000}, nil)
	// First delivery wins the conditional update, the retry does not.
	payments.On("MarkPaidIdempotent", mock.Anything, int64(77), mock.Anything, mock.Anything).Return(true, nil).Once()
	payments.On("MarkPaidIdempotent", mock.Anything, int64(77), mock.Anything, mock.Anything).Return(false, nil).Once()
	bookings.On("GetByID", mock.Anything, int64(55)).
		Return(&domain.Booking{ID: 55, UserID: 9, Status: domain.BookingApprovedUnpaid, CouponCode: "SAVE5"}, nil)
	bookings.On("TransitionStatus", mock.Anything, int64(55), domain.BookingApprovedUnpaid, domain.BookingPaid, mock.Anything).
		Return(true, nil)
	bookings.On("MarkCouponRedeemed", mock.Anything, int64(55)).Return(true, nil)
	coupons.On("IncrementUsage", mock.Anything, "SAVE5").Return(nil)

	cb := callbackFor(svc, "55-1", 1000, true)
	require.NoError(t, svc.HandleConfirmationCallback(context.Background(), cb, "{}"))
	require.NoError(t, svc.HandleConfirmationCallback(context.Background(), cb, "{}"))

	coupons.AssertNumberOfCalls(t, "IncrementUsage", 1)
	bookings.AssertNumberOfCalls(t, "MarkCouponRedeemed", 1)
}

func TestHandleConfirmationCallback_LateConfirmationStillSettles(t *testing.T) {
	payments := new(MockPaymentRepo)
	bookings := new(MockBookingWriter)
	svc := newTestService(nil, payments, bookings, nil, nil)

	past := time.Now().Add(-2 * time.Hour)
	payments.On("GetByMerchantOrderID", mock.Anything, "55-1").
		Return(&domain.GatewayPayment{ID: 77, BookingID: 55, AmountCents: 1000}, nil)
	payments.On("MarkPaidIdempotent", mock.Anything, int64(77), mock.Anything, mock.Anything).Return(true, nil)
	// The window elapsed but the stored status is still approved_unpaid, so
	// the transition applies and the payment is accounted for.
	bookings.On("GetByID", mock.Anything, int64(55)).
		Return(&domain.Booking{ID: 55, Status: domain.BookingApprovedUnpaid, ExpiresAt: &past}, nil)
	bookings.On("TransitionStatus", mock.Anything, int64(55), domain.BookingApprovedUnpaid, domain.BookingPaid, mock.Anything).
		Return(true, nil)

	err := svc.HandleConfirmationCallback(context.Background(), callbackFor(svc, "55-1", 1000, true), "{}")

	require.NoError(t, err)
	bookings.AssertExpectations(t)
}
