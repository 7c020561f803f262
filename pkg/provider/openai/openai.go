package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/debug"
	"github.com/coverly/coverly/pkg/provider"
)

// Client implements provider.Provider against a Chat Completions backend.
type Client struct {
	cfg    Config
	client *http.Client
}

// Ensure Client implements provider.Provider at compile time.
var _ provider.Provider = (*Client)(nil)

// New creates a new Client with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai: BaseURL is required")
	}

	// Normalize: remove trailing slash from base URL.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "openai"
}

// Complete performs one chat completion against the backend.
func (c *Client) Complete(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	chatReq := translateRequest(req)

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := c.cfg.BaseURL + "/v1/chat/completions"
	debug.Log("provider", "chat completion request",
		"url", url, "model", chatReq.Model, "messages", len(chatReq.Messages), "json_only", req.JSONOnly)
	debug.Raw("provider", string(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var chatResp chatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewProviderError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	out, err := translateResponse(&chatResp)
	if err != nil {
		return nil, err
	}
	debug.Log("provider", "chat completion response",
		"model", out.Model, "content_chars", len(out.Content), "total_tokens", out.Usage.Total)
	return out, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// translateRequest converts a ChatRequest to the Chat Completions wire format.
func translateRequest(req *provider.ChatRequest) *chatCompletionRequest {
	out := &chatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		N:           1,
	}

	for _, m := range req.Messages {
		out.Messages = append(out.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		out.MaxTokens = &maxTokens
	}

	if req.JSONOnly {
		out.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	return out
}

// translateResponse converts a Chat Completions response to a ChatResponse.
func translateResponse(resp *chatCompletionResponse) (*provider.ChatResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, api.NewProviderError("backend returned no choices")
	}

	out := &provider.ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}

	if resp.Usage != nil {
		out.Usage = provider.Usage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		}
	}

	return out, nil
}
