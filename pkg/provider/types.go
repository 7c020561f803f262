package provider

// Chat roles understood by every Chat Completions backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// ChatRequest describes one completion call.
type ChatRequest struct {
	// Model is the backend model name. Always set by the caller; the
	// adapter sends it through unchanged.
	Model string

	// Messages is the conversation so far, system prompt first.
	Messages []Message

	// Temperature overrides the backend default when non-nil.
	Temperature *float64

	// MaxTokens caps the completion length. Zero means backend default.
	MaxTokens int

	// JSONOnly constrains the backend to emit a single JSON object.
	// Backends without response_format support ignore it, so callers
	// must still tolerate prose around the JSON.
	JSONOnly bool
}

// ChatResponse is the completed message plus accounting.
type ChatResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage holds token counts reported by the backend. All zero when the
// backend does not report usage.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}
