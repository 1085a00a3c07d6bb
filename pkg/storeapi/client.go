package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kickzhub/storefront-backend/pkg/config"
	"github.com/kickzhub/storefront-backend/pkg/enums"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/kickzhub/storefront-backend/pkg/types"
)

var errBaseURLRequired = errors.New("store api base url is required")

// Client reads catalog-adjacent data (promotions, shipping addresses)
// from the store service. All of it is lookup-only for the storefront.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient validates the store service configuration once at startup.
func NewClient(ctx context.Context, cfg config.StoreAPIConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("store api client initialized (%s)", baseURL))
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Promotion is a storewide discount offer a shopper can apply to the cart.
type Promotion struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	DiscountType  enums.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
}

// ListPromotions fetches the active promotions.
func (c *Client) ListPromotions(ctx context.Context) ([]Promotion, error) {
	var promotions []Promotion
	if err := c.getJSON(ctx, "/promotions", nil, &promotions); err != nil {
		return nil, err
	}
	return promotions, nil
}

// ListAddresses fetches the shopper's shipping addresses.
func (c *Client) ListAddresses(ctx context.Context, userID string) ([]types.ShippingAddress, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}
	query := url.Values{}
	query.Set("userId", userID)

	var addresses []types.ShippingAddress
	if err := c.getJSON(ctx, "/addresses", query, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	if c == nil {
		return errors.New("store api client not initialized")
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build store api request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store api request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("store api %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode store api response: %w", err)
	}
	return nil
}
