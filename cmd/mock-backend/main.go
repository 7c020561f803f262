// Command mock-backend runs deterministic stand-ins for the two upstream
// services the backend calls: a Chat Completions endpoint and a document
// render endpoint. It makes local development work without API keys or a
// real render service:
//
//	MOCK_PORT=9090 go run ./cmd/mock-backend &
//	COVERLY_AUTH_SECRET=dev-secret \
//	COVERLY_PROVIDER_URL=http://localhost:9090 \
//	COVERLY_RENDERER_URL=http://localhost:9090 \
//	go run ./cmd/server
//
// The rendered bytes are placeholders, not valid documents.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("POST /render", handleRender)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Chat Completions types ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Chat Completions handler ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	// Analysis requests ask for a JSON object, letter requests for prose.
	var resp chatResponse
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
		resp = analysisResponse(&req)
	} else {
		resp = letterResponse(&req)
	}

	resp.Model = req.Model
	if resp.Model == "" {
		resp.Model = "mock-model"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func letterResponse(req *chatRequest) chatResponse {
	greeting := "Dear Hiring Team,"
	if company := extractCompany(req); company != "" {
		greeting = fmt.Sprintf("Dear %s team,", company)
	}

	text := greeting + "\n\n" +
		"I am writing to apply for the role described in your posting. " +
		"My background matches the requirements listed, and I would welcome " +
		"the chance to contribute.\n\n" +
		"Sincerely,\nA Candidate"

	return makeTextResponse(req, text)
}

func analysisResponse(req *chatRequest) chatResponse {
	analysis := `{
  "title": "Backend Engineer",
  "company": "Mock Industries",
  "seniority": "mid",
  "skills": ["Go", "PostgreSQL", "AWS"],
  "requirements": ["3+ years of backend experience"],
  "keywords": ["api", "cloud", "microservices"],
  "summary": "A backend engineering role at a company that ships software."
}`
	return makeTextResponse(req, analysis)
}

func makeTextResponse(req *chatRequest, text string) chatResponse {
	promptChars := 0
	for _, m := range req.Messages {
		promptChars += len(m.Content)
	}
	promptTokens := promptChars/4 + 1
	completionTokens := len(text)/4 + 1

	return chatResponse{
		ID:     "chatcmpl-mock",
		Object: "chat.completion",
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMessage{Role: "assistant", Content: text},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

// --- Render handler ---

type renderRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
	Title   string `json:"title,omitempty"`
}

func handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	switch req.Format {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprintf(w, "%%PDF-1.4\n%% mock render of %d content bytes, title %q\n", len(req.Content), req.Title)
	case "docx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		fmt.Fprintf(w, "PK mock render of %d content bytes, title %q\n", len(req.Content), req.Title)
	default:
		http.Error(w, fmt.Sprintf(`{"error":"unsupported format %q"}`, req.Format), http.StatusBadRequest)
	}
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-model", "object": "model", "owned_by": "coverly-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

// extractCompany pulls the company the letter prompt names, if any. The
// prompt builder appends it as a "Company: <name>" line.
func extractCompany(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != "user" {
			continue
		}
		for _, line := range strings.Split(req.Messages[i].Content, "\n") {
			if name, ok := strings.CutPrefix(line, "Company: "); ok {
				return strings.TrimSpace(name)
			}
		}
	}
	return ""
}
