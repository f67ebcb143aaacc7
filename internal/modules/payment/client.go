package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// BuyerContact is the billing identity submitted with the payment key
// request. Fields the platform does not collect are sent as placeholders.
type BuyerContact struct {
	Name  string
	Email string
	Phone string
}

// HandshakeResult is what a completed three-step handshake yields.
type HandshakeResult struct {
	GatewayOrderID string
	PaymentToken   string
	RedirectURL    string
}

// Client drives the gateway's three sequential calls: authenticate, create
// order, issue payment key. Each call depends on the previous result, so
// they are strictly ordered blocking requests. The client never retries;
// callers retry the whole sequence with a fresh merchant order id.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	integrationID string
	frameBase     string
	frameID       string
	currency      string
}

type ClientConfig struct {
	BaseURL       string
	APIKey        string
	IntegrationID string
	FrameBase     string
	FrameID       string
	Currency      string
	Timeout       time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		integrationID: cfg.IntegrationID,
		frameBase:     strings.TrimRight(cfg.FrameBase, "/"),
		frameID:       cfg.FrameID,
		currency:      cfg.Currency,
	}
}

// InitiatePayment runs the full handshake for one attempt and composes the
// embeddable-frame redirect URL from the issued payment token.
func (c *Client) InitiatePayment(ctx context.Context, amountCents int64, merchantOrderID string, buyer BuyerContact) (*HandshakeResult, error) {
	if c.apiKey == "" || c.integrationID == "" {
		return nil, ErrNotConfigured
	}

	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, &StepError{Step: StepAuth, Err: err}
	}

	orderID, err := c.createOrder(ctx, token, amountCents, merchantOrderID)
	if err != nil {
		return nil, &StepError{Step: StepOrder, Err: err}
	}

	paymentToken, err := c.issuePaymentKey(ctx, token, orderID, amountCents, buyer)
	if err != nil {
		return nil, &StepError{Step: StepKey, Err: err}
	}

	return &HandshakeResult{
		GatewayOrderID: orderID,
		PaymentToken:   paymentToken,
		RedirectURL:    fmt.Sprintf("%s/%s?payment_token=%s", c.frameBase, c.frameID, paymentToken),
	}, nil
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.postJSON(ctx, "/auth/tokens", map[string]any{"api_key": c.apiKey}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("empty session token in response")
	}
	return out.Token, nil
}

func (c *Client) createOrder(ctx context.Context, token string, amountCents int64, merchantOrderID string) (string, error) {
	var out struct {
		ID json.Number `json:"id"`
	}
	err := c.postJSON(ctx, "/ecommerce/orders", map[string]any{
		"auth_token":        token,
		"amount_cents":      amountCents,
		"currency":          c.currency,
		"merchant_order_id": merchantOrderID,
		"delivery_needed":   false,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.ID.String() == "" {
		return "", fmt.Errorf("empty order id in response")
	}
	return out.ID.String(), nil
}

func (c *Client) issuePaymentKey(ctx context.Context, token, orderID string, amountCents int64, buyer BuyerContact) (string, error) {
	first, last := splitName(buyer.Name)

	var out struct {
		Token string `json:"token"`
	}
	err := c.postJSON(ctx, "/acceptance/payment_keys", map[string]any{
		"auth_token":     token,
		"amount_cents":   amountCents,
		"currency":       c.currency,
		"order_id":       orderID,
		"integration_id": c.integrationID,
		"expiration":     3600,
		"billing_data": map[string]any{
			"first_name":   first,
			"last_name":    last,
			"email":        buyer.Email,
			"phone_number": placeholder(buyer.Phone),
			// Fields the platform does not collect.
			"country":     "NA",
			"city":        "NA",
			"street":      "NA",
			"building":    "NA",
			"floor":       "NA",
			"apartment":   "NA",
			"postal_code": "NA",
		},
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("empty payment token in response")
	}
	return out.Token, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}

func splitName(name string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(name))
	switch len(parts) {
	case 0:
		return "NA", "NA"
	case 1:
		return parts[0], "NA"
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func placeholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "NA"
	}
	return v
}
