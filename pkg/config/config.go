// Package config provides unified configuration for the Coverly backend.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (COVERLY_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

// Config holds all configuration for the Coverly backend.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Objects       ObjectsConfig       `yaml:"objects"`
	Provider      ProviderConfig      `yaml:"provider"`
	Renderer      RendererConfig      `yaml:"renderer"`
	Billing       BillingConfig       `yaml:"billing"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                   int   `yaml:"port"`                     // default: 8080
	ReadTimeoutSeconds     int   `yaml:"read_timeout_seconds"`     // default: 30
	WriteTimeoutSeconds    int   `yaml:"write_timeout_seconds"`    // default: 120
	ShutdownTimeoutSeconds int   `yaml:"shutdown_timeout_seconds"` // default: 10
	MaxUploadBytes         int64 `yaml:"max_upload_bytes"`         // default: 10 MiB
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // "trace", "debug", "info", "warn", "error", default: "info"
	Format string `yaml:"format"` // "json" or "text", default: "json"
	Debug  string `yaml:"debug"`  // comma-separated debug categories, see pkg/debug
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	Secret           string `yaml:"secret"`
	SecretFile       string `yaml:"secret_file"`        // _file variant for secret
	Algorithm        string `yaml:"algorithm"`          // HS256, HS384, HS512, default: HS256
	AccessTTLMinutes int    `yaml:"access_ttl_minutes"` // default: 15
	RefreshTTLDays   int    `yaml:"refresh_ttl_days"`   // default: 30
}

// StorageConfig holds user-record datastore settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// ObjectsConfig holds object store settings.
type ObjectsConfig struct {
	Type              string `yaml:"type"` // "memory" or "s3", default: "memory"
	Bucket            string `yaml:"bucket"`
	Region            string `yaml:"region"`   // default: "us-east-1"
	Endpoint          string `yaml:"endpoint"` // optional, for MinIO-compatible stores
	AccessKey         string `yaml:"access_key"`
	AccessKeyFile     string `yaml:"access_key_file"` // _file variant for access_key
	SecretKey         string `yaml:"secret_key"`
	SecretKeyFile     string `yaml:"secret_key_file"`     // _file variant for secret_key
	UsePathStyle      bool   `yaml:"use_path_style"`      // required by MinIO
	PresignTTLMinutes int    `yaml:"presign_ttl_minutes"` // default: 15
}

// ProviderConfig holds LLM provider settings.
type ProviderConfig struct {
	BaseURL            string `yaml:"base_url"` // required
	APIKey             string `yaml:"api_key"`
	APIKeyFile         string `yaml:"api_key_file"`          // _file variant for api_key
	Model              string `yaml:"model"`                 // default: "gpt-4o-mini"
	TimeoutSeconds     int    `yaml:"timeout_seconds"`       // default: 60
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"` // per caller, default: 0 (disabled)
}

// RendererConfig holds document render service settings. When no base URL
// is configured the render route answers 501.
type RendererConfig struct {
	BaseURL        string `yaml:"base_url"`        // optional
	TimeoutSeconds int    `yaml:"timeout_seconds"` // default: 30
}

// BillingConfig holds payment-provider settings. When disabled, the plan
// catalog is served empty and no upstream calls are made.
type BillingConfig struct {
	Enabled        bool   `yaml:"enabled"`  // default: false
	BaseURL        string `yaml:"base_url"` // default: "https://api.stripe.com"
	APIKey         string `yaml:"api_key"`
	APIKeyFile     string `yaml:"api_key_file"`    // _file variant for api_key
	TimeoutSeconds int    `yaml:"timeout_seconds"` // default: 15
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:                   8080,
			ReadTimeoutSeconds:     30,
			WriteTimeoutSeconds:    120,
			ShutdownTimeoutSeconds: 10,
			MaxUploadBytes:         10 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			Algorithm:        "HS256",
			AccessTTLMinutes: 15,
			RefreshTTLDays:   30,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Objects: ObjectsConfig{
			Type:              "memory",
			Region:            "us-east-1",
			PresignTTLMinutes: 15,
		},
		Provider: ProviderConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		Renderer: RendererConfig{
			TimeoutSeconds: 30,
		},
		Billing: BillingConfig{
			BaseURL:        "https://api.stripe.com",
			TimeoutSeconds: 15,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
