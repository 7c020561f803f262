package transport

import (
	"log/slog"
	"net/http"

	"github.com/coverly/coverly/pkg/api"
)

// handleListPlans handles GET /v1/plans. The catalog is a read-through
// to the payment provider; with billing disabled it is an empty static
// list and the route still answers 200.
func (rt *Router) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := rt.catalog.ListPlans(r.Context())
	if err != nil {
		slog.Error("listing plans failed", "error", err)
		WriteAPIError(w, api.NewUnavailableError("plan catalog temporarily unavailable"))
		return
	}

	out := make([]api.Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, api.Plan{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			PriceID:     p.PriceID,
			UnitAmount:  p.UnitAmount,
			Currency:    p.Currency,
			Interval:    p.Interval,
		})
	}

	writeJSON(w, http.StatusOK, api.PlanListResponse{Plans: out})
}
