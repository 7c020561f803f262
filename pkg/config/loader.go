package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, COVERLY_CONFIG env, ./config.yaml, /etc/coverly/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. COVERLY_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/coverly/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check COVERLY_CONFIG env var.
	if envPath := os.Getenv("COVERLY_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/coverly/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The set is
// hand-mapped, not reflective: only the knobs a deployment realistically
// flips from the environment are covered.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COVERLY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COVERLY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("COVERLY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("COVERLY_AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("COVERLY_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("COVERLY_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("COVERLY_OBJECTS"); v != "" {
		cfg.Objects.Type = v
	}
	if v := os.Getenv("COVERLY_S3_BUCKET"); v != "" {
		cfg.Objects.Bucket = v
	}
	if v := os.Getenv("COVERLY_S3_REGION"); v != "" {
		cfg.Objects.Region = v
	}
	if v := os.Getenv("COVERLY_S3_ENDPOINT"); v != "" {
		cfg.Objects.Endpoint = v
	}
	if v := os.Getenv("COVERLY_S3_ACCESS_KEY"); v != "" {
		cfg.Objects.AccessKey = v
	}
	if v := os.Getenv("COVERLY_S3_SECRET_KEY"); v != "" {
		cfg.Objects.SecretKey = v
	}
	if v := os.Getenv("COVERLY_PROVIDER_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("COVERLY_PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("COVERLY_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("COVERLY_RATE_LIMIT"); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			cfg.Provider.RateLimitPerMinute = rpm
		}
	}
	if v := os.Getenv("COVERLY_RENDERER_URL"); v != "" {
		cfg.Renderer.BaseURL = v
	}
	if v := os.Getenv("COVERLY_BILLING_API_KEY"); v != "" {
		cfg.Billing.APIKey = v
	}
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// auth.secret_file -> auth.secret
	if cfg.Auth.SecretFile != "" && cfg.Auth.Secret == "" {
		val, err := readSecretFile(cfg.Auth.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.secret_file: %w", err)
		}
		cfg.Auth.Secret = val
	}

	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// objects.access_key_file -> objects.access_key
	if cfg.Objects.AccessKeyFile != "" && cfg.Objects.AccessKey == "" {
		val, err := readSecretFile(cfg.Objects.AccessKeyFile)
		if err != nil {
			return fmt.Errorf("objects.access_key_file: %w", err)
		}
		cfg.Objects.AccessKey = val
	}

	// objects.secret_key_file -> objects.secret_key
	if cfg.Objects.SecretKeyFile != "" && cfg.Objects.SecretKey == "" {
		val, err := readSecretFile(cfg.Objects.SecretKeyFile)
		if err != nil {
			return fmt.Errorf("objects.secret_key_file: %w", err)
		}
		cfg.Objects.SecretKey = val
	}

	// provider.api_key_file -> provider.api_key
	if cfg.Provider.APIKeyFile != "" && cfg.Provider.APIKey == "" {
		val, err := readSecretFile(cfg.Provider.APIKeyFile)
		if err != nil {
			return fmt.Errorf("provider.api_key_file: %w", err)
		}
		cfg.Provider.APIKey = val
	}

	// billing.api_key_file -> billing.api_key
	if cfg.Billing.APIKeyFile != "" && cfg.Billing.APIKey == "" {
		val, err := readSecretFile(cfg.Billing.APIKeyFile)
		if err != nil {
			return fmt.Errorf("billing.api_key_file: %w", err)
		}
		cfg.Billing.APIKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
