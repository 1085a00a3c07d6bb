package vnpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kickzhub/storefront-backend/pkg/config"
	"github.com/kickzhub/storefront-backend/pkg/logger"
)

var (
	errBaseURLRequired   = errors.New("gateway base url is required")
	errReturnURLRequired = errors.New("gateway return url is required")
)

// Client drives the payment-initiation handshake with the VNPay gateway.
// The actual payment happens in the shopper's browser after a full-page
// redirect to the URL this client obtains.
type Client struct {
	baseURL   string
	returnURL string
	http      *http.Client
}

// NewClient validates the gateway configuration once at startup.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	returnURL := strings.TrimSpace(cfg.ReturnURL)
	if returnURL == "" {
		return nil, errReturnURLRequired
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("vnpay client initialized (%s)", baseURL))
	}

	return &Client{
		baseURL:   baseURL,
		returnURL: returnURL,
		http:      &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ReturnURL is the landing page the gateway redirects back to.
func (c *Client) ReturnURL() string {
	if c == nil {
		return ""
	}
	return c.returnURL
}

// PaymentInitParams carries the handshake payload.
type PaymentInitParams struct {
	Amount   decimal.Decimal
	ClientIP string
}

// PaymentInit is the gateway's handshake response.
type PaymentInit struct {
	PaymentURL string `json:"paymentUrl"`
}

type paymentInitRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	ReturnURL string          `json:"returnUrl"`
	ClientIP  string          `json:"clientIp"`
}

// CreatePayment requests a redirect target for the given amount.
func (c *Client) CreatePayment(ctx context.Context, params PaymentInitParams) (*PaymentInit, error) {
	if c == nil {
		return nil, errors.New("vnpay client not initialized")
	}
	if params.Amount.Sign() <= 0 {
		return nil, errors.New("payment amount must be positive")
	}

	body, err := json.Marshal(paymentInitRequest{
		Amount:    params.Amount,
		ReturnURL: c.returnURL,
		ClientIP:  params.ClientIP,
	})
	if err != nil {
		return nil, fmt.Errorf("encode payment init: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment-init", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment init request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment init request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment init returned status %d", resp.StatusCode)
	}

	var init PaymentInit
	if err := json.NewDecoder(resp.Body).Decode(&init); err != nil {
		return nil, fmt.Errorf("decode payment init response: %w", err)
	}
	if strings.TrimSpace(init.PaymentURL) == "" {
		return nil, errors.New("payment init response missing payment url")
	}
	return &init, nil
}
