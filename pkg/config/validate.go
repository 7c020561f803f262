package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// server.max_upload_bytes must be positive.
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be > 0, got %d", c.Server.MaxUploadBytes))
	}

	// log.level must be a known value.
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.level must be \"trace\", \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Log.Level))
	}

	// log.format must be a known value.
	switch c.Log.Format {
	case "json", "text":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"json\" or \"text\", got %q", c.Log.Format))
	}

	// auth.secret is required; without it no token can be verified.
	if c.Auth.Secret == "" && c.Auth.SecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.secret or auth.secret_file is required"))
	}

	// auth.algorithm must be an HMAC variant.
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.algorithm must be \"HS256\", \"HS384\", or \"HS512\", got %q", c.Auth.Algorithm))
	}

	if c.Auth.AccessTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("auth.access_ttl_minutes must be > 0, got %d", c.Auth.AccessTTLMinutes))
	}
	if c.Auth.RefreshTTLDays <= 0 {
		errs = append(errs, fmt.Errorf("auth.refresh_ttl_days must be > 0, got %d", c.Auth.RefreshTTLDays))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// objects.type must be a known value.
	switch c.Objects.Type {
	case "memory", "s3":
		// valid
	default:
		errs = append(errs, fmt.Errorf("objects.type must be \"memory\" or \"s3\", got %q", c.Objects.Type))
	}

	// If objects.type is "s3", the bucket and credentials must be set.
	if c.Objects.Type == "s3" {
		if c.Objects.Bucket == "" {
			errs = append(errs, fmt.Errorf("objects.bucket is required when objects.type is \"s3\""))
		}
		if c.Objects.AccessKey == "" && c.Objects.AccessKeyFile == "" {
			errs = append(errs, fmt.Errorf("objects.access_key or objects.access_key_file is required when objects.type is \"s3\""))
		}
		if c.Objects.SecretKey == "" && c.Objects.SecretKeyFile == "" {
			errs = append(errs, fmt.Errorf("objects.secret_key or objects.secret_key_file is required when objects.type is \"s3\""))
		}
	}

	if c.Objects.PresignTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("objects.presign_ttl_minutes must be > 0, got %d", c.Objects.PresignTTLMinutes))
	}

	// provider.base_url is required.
	if c.Provider.BaseURL == "" {
		errs = append(errs, fmt.Errorf("provider.base_url is required"))
	}

	if c.Provider.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("provider.rate_limit_per_minute must be >= 0, got %d", c.Provider.RateLimitPerMinute))
	}

	// Billing credentials are only needed when the catalog is live.
	if c.Billing.Enabled {
		if c.Billing.APIKey == "" && c.Billing.APIKeyFile == "" {
			errs = append(errs, fmt.Errorf("billing.api_key or billing.api_key_file is required when billing.enabled is true"))
		}
		if c.Billing.BaseURL == "" {
			errs = append(errs, fmt.Errorf("billing.base_url is required when billing.enabled is true"))
		}
	}

	return errors.Join(errs...)
}
