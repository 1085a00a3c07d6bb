package orderapi

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
	"github.com/kickzhub/storefront-backend/pkg/enums"
	"github.com/kickzhub/storefront-backend/pkg/logger"
)

var errBaseURLRequired = errors.New("order api base url is required")

// Client submits finalized order payloads to the remote order service.
// Order persistence, pricing authority, and fulfillment live there; the
// storefront only delivers a well-formed submission.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient validates the order service configuration once at startup.
func NewClient(ctx context.Context, cfg config.OrderAPIConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("order api client initialized (%s)", baseURL))
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// OrderItem is one submitted line; the order service resolves the
// authoritative price at creation time.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput is the order-creation wire payload.
type CreateOrderInput struct {
	UserID            string              `json:"userId"`
	Items             []OrderItem         `json:"items"`
	ShippingAddressID string              `json:"shippingAddressId"`
	PaymentMethod     enums.PaymentMethod `json:"paymentMethod"`
	TotalAmount       decimal.Decimal     `json:"totalAmount"`
	Status            enums.OrderStatus   `json:"status"`
	Description       string              `json:"description"`
}

// Order is the order service's creation response.
type Order struct {
	OrderID string `json:"orderId"`
}

// CreateOrder performs the remote order-creation call.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if c == nil {
		return nil, errors.New("order api client not initialized")
	}
	if len(input.Items) == 0 {
		return nil, errors.New("order submission requires at least one item")
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode order submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order creation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("order creation returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if strings.TrimSpace(order.OrderID) == "" {
		return nil, errors.New("order response missing order id")
	}
	return &order, nil
}
