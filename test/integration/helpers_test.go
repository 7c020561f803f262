// Package integration provides integration tests for the Coverly API.
//
// Tests run against a real Coverly HTTP server with in-memory stores,
// backed by a mock Chat Completions backend and a mock render service,
// all started in-process using net/http/httptest. The token codec is
// wired to a movable clock so expiry scenarios can advance time without
// sleeping.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/billing"
	"github.com/coverly/coverly/pkg/letters"
	objmem "github.com/coverly/coverly/pkg/objstore/memory"
	"github.com/coverly/coverly/pkg/provider/openai"
	"github.com/coverly/coverly/pkg/render"
	storemem "github.com/coverly/coverly/pkg/store/memory"
	"github.com/coverly/coverly/pkg/transport"
)

// testEnv holds the shared servers for all integration tests.
var testEnv *TestEnvironment

// accessTTL matches the production default. Expiry tests advance the
// clock past it instead of sleeping.
const accessTTL = 15 * time.Minute

// TestEnvironment holds the Coverly server and its mock collaborators.
type TestEnvironment struct {
	Server   *httptest.Server
	Backend  *httptest.Server
	Renderer *httptest.Server

	Users   *storemem.Store
	Objects *objmem.Store
	Clock   *testClock
}

// TestMain starts the mock collaborators and the Coverly server before
// running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

// setupTestEnvironment wires a full server the way cmd/server does,
// with memory stores and mock upstreams.
func setupTestEnvironment() *TestEnvironment {
	backend := startMockBackend()
	renderSrv := startMockRenderer()

	clock := &testClock{}

	codec, err := token.New(token.Config{
		Secret:     []byte("integration-test-secret"),
		Algorithm:  "HS256",
		AccessTTL:  accessTTL,
		RefreshTTL: 30 * 24 * time.Hour,
		Now:        clock.Now,
	})
	if err != nil {
		panic(fmt.Sprintf("creating token codec: %v", err))
	}

	users := storemem.New()
	objects := objmem.New()

	prov, err := openai.New(openai.Config{
		BaseURL: backend.URL,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		panic(fmt.Sprintf("creating provider: %v", err))
	}

	renderer, err := render.NewClient(renderSrv.URL, 10*time.Second)
	if err != nil {
		panic(fmt.Sprintf("creating render client: %v", err))
	}

	catalog := billing.NewStatic(billing.Plan{
		ID:         "prod_starter",
		Name:       "Starter",
		PriceID:    "price_starter_monthly",
		UnitAmount: 900,
		Currency:   "usd",
		Interval:   "month",
	})

	router := transport.NewRouter(transport.Deps{
		Users:    users,
		Objects:  objects,
		Codec:    codec,
		Letters:  letters.NewService(prov, objects, "mock-model"),
		Renderer: renderer,
		Catalog:  catalog,
	}, transport.DefaultConfig())

	// Same middleware stack transport.NewServer installs.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := transport.Chain(
		transport.RequestID(),
		transport.Recovery(logger),
		transport.Logging(logger),
	)(router.Handler())

	return &TestEnvironment{
		Server:   httptest.NewServer(handler),
		Backend:  backend,
		Renderer: renderSrv,
		Users:    users,
		Objects:  objects,
		Clock:    clock,
	}
}

// Teardown stops all servers.
func (env *TestEnvironment) Teardown() {
	if env.Server != nil {
		env.Server.Close()
	}
	if env.Backend != nil {
		env.Backend.Close()
	}
	if env.Renderer != nil {
		env.Renderer.Close()
	}
}

// BaseURL returns the Coverly server base URL.
func (env *TestEnvironment) BaseURL() string {
	return env.Server.URL
}

// --- Movable clock ---

// testClock reports real time shifted by an adjustable offset. The
// token codec stamps and verifies claims through it.
type testClock struct {
	mu     sync.Mutex
	offset time.Duration
}

// Now returns the shifted current time.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Add(c.offset)
}

// Advance moves the clock forward by d.
func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// Reset returns the clock to real time.
func (c *testClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
}

// --- HTTP helpers ---

// doJSON sends a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, testEnv.BaseURL()+path, reader)
	if err != nil {
		t.Fatalf("creating %s request: %v", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// getURL sends a GET request without authentication.
func getURL(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(testEnv.BaseURL() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(body)
}

// decodeJSON reads the response body and decodes it into the target.
func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
}

// decodeAPIError decodes an error envelope and fails on an empty one.
func decodeAPIError(t *testing.T, resp *http.Response) *api.APIError {
	t.Helper()
	var envelope api.ErrorResponse
	decodeJSON(t, resp, &envelope)
	if envelope.Error == nil {
		t.Fatal("error object is nil")
	}
	return envelope.Error
}

// registerUser registers an account and returns the auth response with
// its token pair.
func registerUser(t *testing.T, name, email, password string) api.AuthResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, "/v1/auth/register", "", api.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var auth api.AuthResponse
	decodeJSON(t, resp, &auth)
	if auth.User == nil || auth.AccessToken == "" || auth.RefreshToken == "" {
		t.Fatalf("register response incomplete: %+v", auth)
	}
	return auth
}

// uploadFile uploads content as a multipart file and returns the
// stored file info.
func uploadFile(t *testing.T, bearer, filename, category, content string) api.FileInfo {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if category != "" {
		if err := mw.WriteField("category", category); err != nil {
			t.Fatalf("writing category field: %v", err)
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing file content: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, testEnv.BaseURL()+"/v1/files", &buf)
	if err != nil {
		t.Fatalf("creating upload request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /v1/files: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload returned %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var out api.UploadResponse
	decodeJSON(t, resp, &out)
	if out.File == nil {
		t.Fatalf("upload response has no file: %+v", out)
	}
	return *out.File
}

// --- Mock Chat Completions backend ---

// startMockBackend creates an httptest server that mimics a Chat
// Completions API. Completion requests asking for JSON output get a
// job analysis document; everything else gets deterministic letter
// prose.
func startMockBackend() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleMockChatCompletions)
	return httptest.NewServer(mux)
}

const mockLetterContent = "Dear Hiring Team,\n\nI bring the experience your posting asks for and would welcome the chance to prove it.\n\nSincerely,\nA. Candidate"

const mockAnalysisContent = `{"title":"Backend Engineer","company":"Initech","seniority":"senior","skills":["Go","PostgreSQL","AWS"],"keywords":["distributed systems"],"summary":"Senior backend role building Go services."}`

func handleMockChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat *struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	content := mockLetterContent
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
		content = mockAnalysisContent
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-mock",
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     42,
			"completion_tokens": 58,
			"total_tokens":      100,
		},
	})
}

// --- Mock render service ---

// startMockRenderer creates an httptest server that mimics the render
// service's one-endpoint protocol.
func startMockRenderer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /render", func(w http.ResponseWriter, r *http.Request) {
		var req render.RenderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		switch req.Format {
		case render.FormatPDF:
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprintf(w, "%%PDF-1.4 mock render of %d bytes", len(req.Content))
		case render.FormatDOCX:
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
			fmt.Fprintf(w, "PK mock render of %d bytes", len(req.Content))
		default:
			http.Error(w, "unsupported format", http.StatusBadRequest)
		}
	})
	return httptest.NewServer(mux)
}
