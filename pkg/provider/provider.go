package provider

import "context"

// Provider abstracts an LLM inference backend. The letter flows are
// strictly request/response, so the interface carries no streaming.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai").
	Name() string

	// Complete performs one chat completion.
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
