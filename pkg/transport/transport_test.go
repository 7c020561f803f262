package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/letters"
	objmem "github.com/coverly/coverly/pkg/objstore/memory"
	"github.com/coverly/coverly/pkg/provider"
	"github.com/coverly/coverly/pkg/render"
	storemem "github.com/coverly/coverly/pkg/store/memory"
)

// fakeProvider returns a canned completion for every request.
type fakeProvider struct {
	resp  *provider.ChatResponse
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, _ *provider.ChatRequest) (*provider.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) Close() error { return nil }

// fakeRenderer returns canned bytes for every render call.
type fakeRenderer struct {
	data        []byte
	contentType string
	err         error
	lastReq     render.RenderRequest
}

func (f *fakeRenderer) Render(_ context.Context, req render.RenderRequest) ([]byte, string, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.contentType, nil
}

// testEnv bundles a router with its collaborators for handler tests.
type testEnv struct {
	router   *Router
	users    *storemem.Store
	objects  *objmem.Store
	codec    *token.Codec
	provider *fakeProvider
	renderer *fakeRenderer
	srv      *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, DefaultConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	codec, err := token.New(token.Config{
		Secret:     []byte("transport-test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("token.New() error: %v", err)
	}

	env := &testEnv{
		users:   storemem.New(),
		objects: objmem.New(),
		codec:   codec,
		provider: &fakeProvider{
			resp: &provider.ChatResponse{
				Content: "Dear hiring team,\n\nI am a strong fit.",
				Model:   "test-model",
				Usage:   provider.Usage{Prompt: 10, Completion: 5, Total: 15},
			},
		},
		renderer: &fakeRenderer{
			data:        []byte("%PDF-1.4 rendered"),
			contentType: "application/pdf",
		},
	}

	env.router = NewRouter(Deps{
		Users:    env.users,
		Objects:  env.objects,
		Codec:    codec,
		Letters:  letters.NewService(env.provider, env.objects, "test-model"),
		Renderer: env.renderer,
	}, cfg)

	env.srv = httptest.NewServer(env.router.Handler())
	t.Cleanup(env.srv.Close)

	return env
}

// register creates an account through the API and returns the auth
// envelope with its token pair.
func (e *testEnv) register(t *testing.T, name, email, password string) api.AuthResponse {
	t.Helper()

	resp := e.doJSON(t, http.MethodPost, "/v1/auth/register", "", api.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("register status = %d, want %d (body %s)", resp.StatusCode, http.StatusCreated, body)
	}

	var out api.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return out
}

// doJSON sends a request with an optional JSON body and bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request error: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error: %v", method, path, err)
	}
	return resp
}

// upload sends a multipart file upload.
func (e *testEnv) upload(t *testing.T, bearer, filename, category, content string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if category != "" {
		if err := mw.WriteField("category", category); err != nil {
			t.Fatalf("write category field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/files", &buf)
	if err != nil {
		t.Fatalf("new request error: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /v1/files error: %v", err)
	}
	return resp
}

// seedObject stores an object directly in the test object store.
func (e *testEnv) seedObject(t *testing.T, key, contentType, content string) {
	t.Helper()
	err := e.objects.Put(context.Background(), key, contentType, bytes.NewReader([]byte(content)), int64(len(content)))
	if err != nil {
		t.Fatalf("seeding object %q: %v", key, err)
	}
}

// decodeError reads the error envelope from a response body.
func decodeError(t *testing.T, resp *http.Response) *api.APIError {
	t.Helper()
	var envelope api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error == nil {
		t.Fatal("error envelope carries no error")
	}
	return envelope.Error
}
