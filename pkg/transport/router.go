package transport

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth"
	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/billing"
	"github.com/coverly/coverly/pkg/letters"
	"github.com/coverly/coverly/pkg/objstore"
	"github.com/coverly/coverly/pkg/observability"
	"github.com/coverly/coverly/pkg/render"
	"github.com/coverly/coverly/pkg/store"
)

// Config holds configuration for the HTTP surface.
type Config struct {
	// MaxBodySize caps JSON request bodies.
	MaxBodySize int64

	// MaxUploadBytes caps multipart file uploads.
	MaxUploadBytes int64

	// PresignTTL is the validity window of issued download links.
	PresignTTL time.Duration

	// MetricsEnabled exposes the Prometheus endpoint at MetricsPath.
	MetricsEnabled bool
	MetricsPath    string

	// Validation carries the request size and length limits.
	Validation api.ValidationConfig
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:    1 << 20,  // 1 MB
		MaxUploadBytes: 10 << 20, // 10 MB
		PresignTTL:     15 * time.Minute,
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
		Validation:     api.DefaultValidationConfig(),
	}
}

// Deps holds the collaborators behind the HTTP surface.
type Deps struct {
	Users   store.UserStore
	Objects objstore.ObjectStore
	Codec   *token.Codec
	Letters *letters.Service

	// Renderer is optional. When nil, the render route reports the
	// operation as not available.
	Renderer render.Renderer

	// Catalog is optional. When nil, the plans route serves an empty
	// catalog.
	Catalog billing.Catalog

	// Limiter is optional. When set, the completion-backed routes
	// (letter generation, job analysis) enforce it per caller.
	Limiter auth.RateLimiter
}

// Router dispatches API requests to their handlers. Every route is
// registered with an explicit gate mode; see NewRouter for the table.
type Router struct {
	users    store.UserStore
	objects  objstore.ObjectStore
	codec    *token.Codec
	letters  *letters.Service
	renderer render.Renderer
	catalog  billing.Catalog
	limiter  auth.RateLimiter
	cfg      Config
	mux      *http.ServeMux
}

// NewRouter builds the route table. The gate is constructed over the
// same user store the handlers use, so identity resolution and profile
// reads always observe the same records.
func NewRouter(deps Deps, cfg Config) *Router {
	if deps.Catalog == nil {
		deps.Catalog = billing.NewStatic()
	}

	rt := &Router{
		users:    deps.Users,
		objects:  deps.Objects,
		codec:    deps.Codec,
		letters:  deps.Letters,
		renderer: deps.Renderer,
		catalog:  deps.Catalog,
		limiter:  deps.Limiter,
		cfg:      cfg,
		mux:      http.NewServeMux(),
	}

	gate := auth.NewGate(auth.NewResolver(deps.Codec, deps.Users))

	rt.mux.Handle("GET /healthz", gate.Public(http.HandlerFunc(rt.handleHealthz)))
	rt.mux.Handle("GET /readyz", gate.Public(http.HandlerFunc(rt.handleReadyz)))
	if cfg.MetricsEnabled && cfg.MetricsPath != "" {
		rt.mux.Handle("GET "+cfg.MetricsPath, gate.Public(promhttp.Handler()))
	}

	rt.mux.Handle("POST /v1/auth/register", gate.Public(http.HandlerFunc(rt.handleRegister)))
	rt.mux.Handle("POST /v1/auth/login", gate.Public(http.HandlerFunc(rt.handleLogin)))
	rt.mux.Handle("POST /v1/auth/refresh", gate.Public(http.HandlerFunc(rt.handleRefresh)))

	rt.mux.Handle("GET /v1/users/me", gate.Require(http.HandlerFunc(rt.handleGetMe)))
	rt.mux.Handle("PATCH /v1/users/me", gate.Require(http.HandlerFunc(rt.handleUpdateMe)))

	rt.mux.Handle("GET /v1/files", gate.Require(http.HandlerFunc(rt.handleListFiles)))
	rt.mux.Handle("POST /v1/files", gate.Require(http.HandlerFunc(rt.handleUploadFile)))
	rt.mux.Handle("POST /v1/files/rename", gate.Require(http.HandlerFunc(rt.handleRenameFile)))
	rt.mux.Handle("GET /v1/files/{key...}", gate.Require(http.HandlerFunc(rt.handleDownloadLink)))
	rt.mux.Handle("DELETE /v1/files/{key...}", gate.Require(http.HandlerFunc(rt.handleDeleteFile)))

	rt.mux.Handle("POST /v1/letters", gate.Optional(http.HandlerFunc(rt.handleGenerateLetter)))
	rt.mux.Handle("POST /v1/letters/render", gate.Require(http.HandlerFunc(rt.handleRenderLetter)))
	rt.mux.Handle("POST /v1/jobs/analyze", gate.Optional(http.HandlerFunc(rt.handleAnalyzeJob)))

	rt.mux.Handle("GET /v1/plans", gate.Public(http.HandlerFunc(rt.handleListPlans)))

	return rt
}

// Handler returns the http.Handler for this router. Use this to
// integrate with an http.Server or test with httptest. Request metrics
// are recorded here so every route is covered, the metrics endpoint
// included.
func (rt *Router) Handler() http.Handler {
	var h http.Handler = rt.mux
	if rt.cfg.MetricsEnabled {
		h = observability.MetricsMiddleware(h)
	}
	return h
}

// decodeJSON parses a JSON body with the configured size cap. On
// failure the error response has already been written.
func (rt *Router) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeJSON(w, r, rt.cfg.MaxBodySize, dst)
}
