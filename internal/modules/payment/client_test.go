package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayStub struct {
	authCalls  int32
	orderCalls int32
	keyCalls   int32

	failAuth  bool
	failOrder bool
	failKey   bool
}

func (g *gatewayStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/tokens", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&g.authCalls, 1)
		if g.failAuth {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "session-token"})
	})
	mux.HandleFunc("/ecommerce/orders", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&g.orderCalls, 1)
		if g.failOrder {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["auth_token"] != "session-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 4242})
	})
	mux.HandleFunc("/acceptance/payment_keys", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&g.keyCalls, 1)
		if g.failKey {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["order_id"] != "4242" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "payment-token"})
	})
	return mux
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:       baseURL,
		APIKey:        "test-api-key",
		IntegrationID: "777",
		FrameBase:     "https://gateway.example/iframes",
		FrameID:       "123",
		Currency:      "SAR",
	})
}

func TestClient_InitiatePayment_FullHandshake(t *testing.T) {
	stub := &gatewayStub{}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)

	result, err := client.InitiatePayment(context.Background(), 170000, "55-1", BuyerContact{
		Name:  "Demo Client",
		Email: "client@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "4242", result.GatewayOrderID)
	assert.Equal(t, "payment-token", result.PaymentToken)
	assert.Equal(t, "https://gateway.example/iframes/123?payment_token=payment-token", result.RedirectURL)

	assert.Equal(t, int32(1), stub.authCalls)
	assert.Equal(t, int32(1), stub.orderCalls)
	assert.Equal(t, int32(1), stub.keyCalls)
}

func TestClient_InitiatePayment_AuthFailureStopsSequence(t *testing.T) {
	stub := &gatewayStub{failAuth: true}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.InitiatePayment(context.Background(), 1000, "1-1", BuyerContact{})
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepAuth, stepErr.Step)

	assert.Equal(t, int32(0), stub.orderCalls)
	assert.Equal(t, int32(0), stub.keyCalls)
}

func TestClient_InitiatePayment_OrderFailureIsTagged(t *testing.T) {
	stub := &gatewayStub{failOrder: true}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.InitiatePayment(context.Background(), 1000, "1-2", BuyerContact{})
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepOrder, stepErr.Step)

	// No retry inside the client and no key request after a failed order.
	assert.Equal(t, int32(1), stub.authCalls)
	assert.Equal(t, int32(1), stub.orderCalls)
	assert.Equal(t, int32(0), stub.keyCalls)
}

func TestClient_InitiatePayment_KeyFailureIsTagged(t *testing.T) {
	stub := &gatewayStub{failKey: true}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.InitiatePayment(context.Background(), 1000, "1-3", BuyerContact{})
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepKey, stepErr.Step)
	assert.Equal(t, int32(1), stub.keyCalls)
}

func TestClient_InitiatePayment_MissingCredentials(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "https://gateway.example"})

	_, err := client.InitiatePayment(context.Background(), 1000, "1-4", BuyerContact{})

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{"", "NA", "NA"},
		{"Madonna", "Madonna", "NA"},
		{"Demo Client", "Demo", "Client"},
		{"Anna Maria van Dyk", "Anna", "Maria van Dyk"},
	}

	for _, tt := range tests {
		first, last := splitName(tt.in)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}
