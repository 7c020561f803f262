package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// StripeConfig holds the connection settings for a Stripe-compatible
// payment API.
type StripeConfig struct {
	// BaseURL defaults to the real Stripe API.
	BaseURL string

	// APIKey is the secret key. Required.
	APIKey string

	// Timeout for individual HTTP requests. Defaults to 15s.
	Timeout time.Duration
}

// StripeCatalog reads plans from a Stripe-shaped product/price API.
type StripeCatalog struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Ensure StripeCatalog implements Catalog at compile time.
var _ Catalog = (*StripeCatalog)(nil)

// NewStripeCatalog creates a catalog backed by the payment provider.
func NewStripeCatalog(cfg StripeConfig) (*StripeCatalog, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("billing: APIKey is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &StripeCatalog{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// stripeProduct is the subset of the provider's product object we read.
type stripeProduct struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// stripePrice is the subset of the provider's price object we read.
type stripePrice struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Recurring  *struct {
		Interval string `json:"interval"`
	} `json:"recurring"`
}

// stripeList is the provider's list envelope.
type stripeList[T any] struct {
	Data []T `json:"data"`
}

// ListPlans joins active prices to active products. Products without a
// price are not purchasable and are dropped; prices whose product is
// missing (archived mid-read) are dropped too.
func (c *StripeCatalog) ListPlans(ctx context.Context) ([]Plan, error) {
	var products stripeList[stripeProduct]
	if err := c.get(ctx, "/v1/products?active=true&limit=100", &products); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	var prices stripeList[stripePrice]
	if err := c.get(ctx, "/v1/prices?active=true&limit=100", &prices); err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}

	byID := make(map[string]stripeProduct, len(products.Data))
	for _, p := range products.Data {
		byID[p.ID] = p
	}

	var plans []Plan
	for _, price := range prices.Data {
		product, ok := byID[price.Product]
		if !ok {
			continue
		}
		plan := Plan{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.Description,
			PriceID:     price.ID,
			UnitAmount:  price.UnitAmount,
			Currency:    price.Currency,
		}
		if price.Recurring != nil {
			plan.Interval = price.Recurring.Interval
		}
		plans = append(plans, plan)
	}

	sort.Slice(plans, func(i, j int) bool {
		if plans[i].UnitAmount != plans[j].UnitAmount {
			return plans[i].UnitAmount < plans[j].UnitAmount
		}
		return plans[i].PriceID < plans[j].PriceID
	})

	return plans, nil
}

func (c *StripeCatalog) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("payment provider returned HTTP %d: %s", resp.StatusCode, string(excerpt))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
