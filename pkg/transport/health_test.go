package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/billing"
	"github.com/coverly/coverly/pkg/objstore"
	"github.com/coverly/coverly/pkg/store"
)

// unhealthyUserStore fails its health check and delegates everything else.
type unhealthyUserStore struct {
	store.UserStore
	err error
}

func (s *unhealthyUserStore) HealthCheck(context.Context) error { return s.err }

// unhealthyObjectStore fails its health check and delegates everything else.
type unhealthyObjectStore struct {
	objstore.ObjectStore
	err error
}

func (s *unhealthyObjectStore) HealthCheck(context.Context) error { return s.err }

// erroringCatalog fails every plan listing.
type erroringCatalog struct{ err error }

func (c *erroringCatalog) ListPlans(context.Context) ([]billing.Plan, error) { return nil, c.err }

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/healthz", "", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/readyz", "", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["status"] != "ready" {
		t.Errorf("status field = %q, want %q", body["status"], "ready")
	}
}

func TestReadyzReportsUserStoreOutage(t *testing.T) {
	env := newTestEnv(t)

	rt := NewRouter(Deps{
		Users:   &unhealthyUserStore{UserStore: env.users, err: errors.New("connection refused")},
		Objects: env.objects,
		Codec:   env.codec,
		Letters: env.router.letters,
	}, DefaultConfig())

	rec := httptest.NewRecorder()
	rt.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["check"] != "user_store" {
		t.Errorf("check field = %q, want %q", body["check"], "user_store")
	}
}

func TestReadyzReportsObjectStoreOutage(t *testing.T) {
	env := newTestEnv(t)

	rt := NewRouter(Deps{
		Users:   env.users,
		Objects: &unhealthyObjectStore{ObjectStore: env.objects, err: errors.New("bucket gone")},
		Codec:   env.codec,
		Letters: env.router.letters,
	}, DefaultConfig())

	rec := httptest.NewRecorder()
	rt.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["check"] != "object_store" {
		t.Errorf("check field = %q, want %q", body["check"], "object_store")
	}
}

func TestListPlansEmptyWithoutCatalog(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/v1/plans", "", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var list api.PlanListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(list.Plans) != 0 {
		t.Errorf("len(Plans) = %d, want 0", len(list.Plans))
	}
}

func TestListPlansServesCatalog(t *testing.T) {
	env := newTestEnv(t)

	rt := NewRouter(Deps{
		Users:   env.users,
		Objects: env.objects,
		Codec:   env.codec,
		Letters: env.router.letters,
		Catalog: billing.NewStatic(
			billing.Plan{
				ID:         "prod_basic",
				Name:       "Basic",
				PriceID:    "price_basic_monthly",
				UnitAmount: 500,
				Currency:   "usd",
				Interval:   "month",
			},
			billing.Plan{
				ID:         "prod_pro",
				Name:       "Pro",
				PriceID:    "price_pro_monthly",
				UnitAmount: 1500,
				Currency:   "usd",
				Interval:   "month",
			},
		),
	}, DefaultConfig())

	rec := httptest.NewRecorder()
	rt.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var list api.PlanListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(list.Plans) != 2 {
		t.Fatalf("len(Plans) = %d, want 2", len(list.Plans))
	}
	if list.Plans[0].PriceID != "price_basic_monthly" {
		t.Errorf("PriceID = %q, want %q", list.Plans[0].PriceID, "price_basic_monthly")
	}
	if list.Plans[1].UnitAmount != 1500 {
		t.Errorf("UnitAmount = %d, want 1500", list.Plans[1].UnitAmount)
	}
}

func TestListPlansCatalogFailure(t *testing.T) {
	env := newTestEnv(t)

	rt := NewRouter(Deps{
		Users:   env.users,
		Objects: env.objects,
		Codec:   env.codec,
		Letters: env.router.letters,
		Catalog: &erroringCatalog{err: errors.New("stripe: rate limited")},
	}, DefaultConfig())

	rec := httptest.NewRecorder()
	rt.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error.Type != api.ErrorTypeUnavailable {
		t.Errorf("error type = %q, want %q", resp.Error.Type, api.ErrorTypeUnavailable)
	}
}
