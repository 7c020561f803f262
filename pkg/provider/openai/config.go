package openai

import "time"

// Config holds configuration for the openai provider adapter.
type Config struct {
	// BaseURL is the backend URL (e.g., "https://api.openai.com").
	BaseURL string

	// APIKey for backend authentication (optional for local backends).
	APIKey string

	// Timeout for individual HTTP requests. Defaults to 120s; letter
	// generation on a slow model can take a while.
	Timeout time.Duration
}
