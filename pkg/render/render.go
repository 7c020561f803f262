// Package render turns letter markdown into downloadable documents by
// calling a remote render service. The service is an opaque
// collaborator; this package only speaks its one-endpoint protocol.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Formats the render service can produce.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// ValidFormat reports whether format names a supported output format.
func ValidFormat(format string) bool {
	return format == FormatPDF || format == FormatDOCX
}

// RenderRequest is the render service's request body.
type RenderRequest struct {
	// Content is the letter body in Markdown.
	Content string `json:"content"`

	// Format is the output format, pdf or docx.
	Format string `json:"format"`

	// Title becomes the document title metadata. Optional.
	Title string `json:"title,omitempty"`
}

// Renderer produces a document from letter content. Implementations
// must be safe for concurrent use by multiple goroutines.
type Renderer interface {
	// Render returns the document bytes and their content type.
	Render(ctx context.Context, req RenderRequest) ([]byte, string, error)
}

// Client calls the render service's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Ensure Client implements Renderer at compile time.
var _ Renderer = (*Client)(nil)

// NewClient creates a render service client.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("render: baseURL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}, nil
}

// Render posts the request and returns the rendered document.
func (c *Client) Render(ctx context.Context, req RenderRequest) ([]byte, string, error) {
	if !ValidFormat(req.Format) {
		return nil, "", fmt.Errorf("render: unsupported format %q", req.Format)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("render service returned HTTP %d: %s", resp.StatusCode, string(excerpt))
	}

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeForFormat(req.Format)
	}

	return doc, contentType, nil
}

func contentTypeForFormat(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
