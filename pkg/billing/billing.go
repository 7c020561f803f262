// Package billing exposes the subscription plan catalog. Plans live in
// the payment provider; this package reads them, it never writes.
// Checkout and webhooks are frontend/provider concerns outside this
// backend.
package billing

import "context"

// Plan is one purchasable subscription plan.
type Plan struct {
	// ID is the provider's product id.
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// PriceID is the provider's price id, the value checkout flows need.
	PriceID string `json:"price_id"`

	// UnitAmount is the price in the currency's smallest unit.
	UnitAmount int64 `json:"unit_amount"`

	Currency string `json:"currency"`

	// Interval is the billing period (e.g. "month"), empty for
	// one-time prices.
	Interval string `json:"interval,omitempty"`
}

// Catalog lists the purchasable plans. Implementations must be safe
// for concurrent use by multiple goroutines.
type Catalog interface {
	ListPlans(ctx context.Context) ([]Plan, error)
}

// Static is a fixed catalog. The zero value is the empty catalog used
// when billing is disabled.
type Static struct {
	Plans []Plan
}

// Ensure Static implements Catalog at compile time.
var _ Catalog = (*Static)(nil)

// NewStatic creates a catalog serving the given plans.
func NewStatic(plans ...Plan) *Static {
	return &Static{Plans: plans}
}

// ListPlans returns the fixed plan list.
func (s *Static) ListPlans(_ context.Context) ([]Plan, error) {
	return s.Plans, nil
}
