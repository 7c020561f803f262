// Command server runs the Coverly backend.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (-config flag, COVERLY_CONFIG, ./config.yaml, /etc/coverly/config.yaml),
// then COVERLY_* environment overrides. The most common knobs:
//
//	COVERLY_PORT          - Listen port (default: 8080)
//	COVERLY_AUTH_SECRET   - Token signing secret (required)
//	COVERLY_STORAGE       - User store: "memory" or "postgres" (default: "memory")
//	COVERLY_OBJECTS       - Object store: "memory" or "s3" (default: "memory")
//	COVERLY_PROVIDER_URL  - Chat Completions backend URL (required)
//	COVERLY_MODEL         - Model for letter generation (default: "gpt-4o-mini")
//	COVERLY_RENDERER_URL  - Document render service URL (optional)
//	COVERLY_DEBUG         - Debug categories, e.g. "provider,letters" (optional)
//
// See pkg/config for the full set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/coverly/coverly/pkg/auth"
	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/billing"
	"github.com/coverly/coverly/pkg/config"
	"github.com/coverly/coverly/pkg/debug"
	"github.com/coverly/coverly/pkg/letters"
	"github.com/coverly/coverly/pkg/objstore"
	objmem "github.com/coverly/coverly/pkg/objstore/memory"
	"github.com/coverly/coverly/pkg/objstore/s3"
	"github.com/coverly/coverly/pkg/provider/openai"
	"github.com/coverly/coverly/pkg/render"
	"github.com/coverly/coverly/pkg/store"
	storemem "github.com/coverly/coverly/pkg/store/memory"
	"github.com/coverly/coverly/pkg/store/postgres"
	"github.com/coverly/coverly/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	debug.Init(cfg.Log.Debug)

	ctx := context.Background()

	codec, err := token.New(token.Config{
		Secret:     []byte(cfg.Auth.Secret),
		Algorithm:  cfg.Auth.Algorithm,
		AccessTTL:  time.Duration(cfg.Auth.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.Auth.RefreshTTLDays) * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}

	users, err := newUserStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating user store: %w", err)
	}
	defer users.Close()
	slog.Info("user store ready", "type", cfg.Storage.Type)

	objects, err := newObjectStore(ctx, cfg.Objects)
	if err != nil {
		return fmt.Errorf("creating object store: %w", err)
	}
	slog.Info("object store ready", "type", cfg.Objects.Type)

	prov, err := openai.New(openai.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	defer prov.Close()

	svc := letters.NewService(prov, objects, cfg.Provider.Model)

	// The render service is an optional collaborator. Without one the
	// render route reports the operation as not available.
	var renderer render.Renderer
	if cfg.Renderer.BaseURL != "" {
		rc, err := render.NewClient(cfg.Renderer.BaseURL, time.Duration(cfg.Renderer.TimeoutSeconds)*time.Second)
		if err != nil {
			return fmt.Errorf("creating render client: %w", err)
		}
		renderer = rc
		slog.Info("renderer enabled", "url", cfg.Renderer.BaseURL)
	} else {
		slog.Info("renderer disabled")
	}

	var catalog billing.Catalog
	if cfg.Billing.Enabled {
		sc, err := billing.NewStripeCatalog(billing.StripeConfig{
			BaseURL: cfg.Billing.BaseURL,
			APIKey:  cfg.Billing.APIKey,
			Timeout: time.Duration(cfg.Billing.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("creating billing catalog: %w", err)
		}
		catalog = sc
		slog.Info("billing enabled", "url", cfg.Billing.BaseURL)
	}

	tcfg := transport.DefaultConfig()
	tcfg.MaxUploadBytes = cfg.Server.MaxUploadBytes
	tcfg.PresignTTL = time.Duration(cfg.Objects.PresignTTLMinutes) * time.Minute
	tcfg.MetricsEnabled = cfg.Observability.Metrics.Enabled
	tcfg.MetricsPath = cfg.Observability.Metrics.Path

	var limiter auth.RateLimiter
	if cfg.Provider.RateLimitPerMinute > 0 {
		limiter = auth.NewInProcessLimiter(cfg.Provider.RateLimitPerMinute)
		slog.Info("generation rate limit enabled", "per_minute", cfg.Provider.RateLimitPerMinute)
	}

	router := transport.NewRouter(transport.Deps{
		Users:    users,
		Objects:  objects,
		Codec:    codec,
		Letters:  svc,
		Renderer: renderer,
		Catalog:  catalog,
		Limiter:  limiter,
	}, tcfg)

	srv := transport.NewServer(router,
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithReadTimeout(time.Duration(cfg.Server.ReadTimeoutSeconds)*time.Second),
		transport.WithWriteTimeout(time.Duration(cfg.Server.WriteTimeoutSeconds)*time.Second),
		transport.WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second),
		transport.WithLogger(logger),
	)

	slog.Info("server starting",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"objects", cfg.Objects.Type,
		"model", cfg.Provider.Model)
	return srv.ListenAndServe()
}

// newLogger builds the process logger from the log section. Validation
// has already restricted level and format to known values.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: debug.ParseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func newUserStore(ctx context.Context, cfg config.StorageConfig) (store.UserStore, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
	default:
		return storemem.New(), nil
	}
}

func newObjectStore(ctx context.Context, cfg config.ObjectsConfig) (objstore.ObjectStore, error) {
	switch cfg.Type {
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:       cfg.Bucket,
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			UsePathStyle: cfg.UsePathStyle,
		})
	default:
		return objmem.New(), nil
	}
}
