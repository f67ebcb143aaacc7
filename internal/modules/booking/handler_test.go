package booking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourbook/internal/modules/payment"
)

func newCheckoutRouter(svc *Service, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})
	NewHandler(svc).RegisterRoutes(r.Group("/"))
	return r
}

func stubCheckoutToGateway(deps *testDeps) {
	deps.bookings.On("GetByID", mock.Anything, int64(5)).Return(approvedBooking(time.Hour), nil)
	stubCheckoutLookups(deps)
	deps.bookings.On("FreezeSettlement", mock.Anything, int64(5), mock.Anything).Return(true, nil)
}

func TestCheckoutHandler_GatewayStepFailureIsBadGateway(t *testing.T) {
	svc, deps := newTestService()
	stubCheckoutToGateway(deps)
	deps.payments.On("InitiatePayment", mock.Anything, int64(5), int64(9), mock.Anything, mock.Anything).
		Return(nil, &payment.StepError{Step: payment.StepOrder, Err: errors.New("unexpected status 422")})

	r := newCheckoutRouter(svc, 9)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/5/checkout", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "PAYMENT_INIT_FAILED")
	assert.NotContains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestCheckoutHandler_GatewayNotConfiguredIsBadGateway(t *testing.T) {
	svc, deps := newTestService()
	stubCheckoutToGateway(deps)
	deps.payments.On("InitiatePayment", mock.Anything, int64(5), int64(9), mock.Anything, mock.Anything).
		Return(nil, payment.ErrNotConfigured)

	r := newCheckoutRouter(svc, 9)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/5/checkout", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "PAYMENT_INIT_FAILED")
}

func TestCheckout_GatewayErrorKeepsStepIdentity(t *testing.T) {
	svc, deps := newTestService()
	stubCheckoutToGateway(deps)
	deps.payments.On("InitiatePayment", mock.Anything, int64(5), int64(9), mock.Anything, mock.Anything).
		Return(nil, &payment.StepError{Step: payment.StepKey, Err: errors.New("empty payment token in response")})

	_, err := svc.Checkout(context.Background(), 5, 9, CheckoutRequest{})

	var stepErr *payment.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, payment.StepKey, stepErr.Step)
}
