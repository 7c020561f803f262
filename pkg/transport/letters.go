package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth"
	"github.com/coverly/coverly/pkg/letters"
	"github.com/coverly/coverly/pkg/objstore"
	"github.com/coverly/coverly/pkg/render"
)

// allowCompletion applies the rate limit to a completion-backed route.
// Authenticated callers are keyed by user id, anonymous callers by
// client address. On rejection the 429 response is already written.
func (rt *Router) allowCompletion(w http.ResponseWriter, r *http.Request, id *auth.Identity) bool {
	if rt.limiter == nil {
		return true
	}

	key := completionKey(id, r)
	if err := rt.limiter.Allow(r.Context(), key); err != nil {
		slog.Warn("generation rate limit hit", "key", key, "path", r.URL.Path)
		WriteAPIError(w, api.NewRateLimitError("generation rate limit exceeded, retry later"))
		return false
	}
	return true
}

func completionKey(id *auth.Identity, r *http.Request) string {
	if id != nil {
		return "user:" + id.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// handleGenerateLetter handles POST /v1/letters. Anonymous callers get
// a one-shot letter; authenticated callers additionally get it stored
// under their letters prefix. A resume_key is only usable by its owner.
func (rt *Router) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	owner := auth.IdentityFromContext(r.Context())

	var req api.GenerateLetterRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if verr := api.ValidateGenerateLetter(&req, rt.cfg.Validation); verr != nil {
		WriteAPIError(w, verr)
		return
	}
	if !rt.allowCompletion(w, r, owner) {
		return
	}

	if req.ResumeKey != "" {
		if owner == nil {
			WriteAPIError(w, api.NewUnauthorizedError())
			return
		}
		if err := auth.AuthorizeMutation(owner, req.ResumeKey); err != nil {
			WriteAPIError(w, api.NewForbiddenError("access denied"))
			return
		}
	}

	letter, err := rt.letters.Generate(r.Context(), owner, letters.GenerateInput{
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		ResumeKey:      req.ResumeKey,
		Tone:           req.Tone,
		Recipient:      req.Recipient,
		Company:        req.Company,
	})
	if err != nil {
		slog.Error("letter generation failed", "error", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.Letter{
		ID:        letter.ID,
		Content:   letter.Content,
		Model:     letter.Model,
		CreatedAt: letter.CreatedAt,
		Key:       letter.Key,
	})
}

// handleRenderLetter handles POST /v1/letters/render. The source text
// comes from a stored letter under the caller's prefix or inline
// content; the rendered artifact is stored next to the caller's other
// letters and answered as a presigned link.
func (rt *Router) handleRenderLetter(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req api.RenderLetterRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if verr := api.ValidateRenderLetter(&req, rt.cfg.Validation); verr != nil {
		WriteAPIError(w, verr)
		return
	}

	if rt.renderer == nil {
		WriteErrorResponse(w,
			api.NewInvalidRequestError("", "letter rendering is not available (no renderer configured)"),
			http.StatusNotImplemented,
		)
		return
	}

	content := req.Content
	base := "cover-letter"
	if req.Key != "" {
		if err := auth.AuthorizeMutation(id, req.Key); err != nil {
			WriteAPIError(w, api.NewForbiddenError("access denied"))
			return
		}
		text, err := rt.loadLetterSource(r.Context(), req.Key)
		if err != nil {
			WriteError(w, err)
			return
		}
		content = text
		base = strings.TrimSuffix(path.Base(req.Key), path.Ext(req.Key))
	} else if req.Title != "" {
		base = req.Title
	}

	data, contentType, err := rt.renderer.Render(r.Context(), render.RenderRequest{
		Content: content,
		Format:  req.Format,
		Title:   req.Title,
	})
	if err != nil {
		slog.Error("rendering letter failed", "format", req.Format, "error", err)
		WriteAPIError(w, api.NewProviderError("letter rendering failed"))
		return
	}

	name, err := objstore.SanitizeFilename(objstore.NewArtifactName(base, "."+req.Format))
	if err != nil {
		slog.Error("building artifact filename failed", "error", err)
		WriteAPIError(w, api.NewServerError("letter rendering failed"))
		return
	}
	key := objstore.ObjectKey(id.ID, objstore.CategoryLetters, name)

	err = rt.objects.Put(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data)))
	recordObjectOp("put", err)
	if err != nil {
		slog.Error("storing rendered letter failed", "key", key, "error", err)
		WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
		return
	}

	url, err := rt.objects.PresignGet(r.Context(), key, rt.cfg.PresignTTL)
	recordObjectOp("presign", err)
	if err != nil {
		slog.Error("presigning rendered letter failed", "key", key, "error", err)
		WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, api.RenderResponse{
		Key:       key,
		URL:       url,
		ExpiresAt: time.Now().Add(rt.cfg.PresignTTL).UTC(),
	})
}

// loadLetterSource reads a stored letter for rendering. Only text
// objects qualify as a render source.
func (rt *Router) loadLetterSource(ctx context.Context, key string) (string, error) {
	rc, info, err := rt.objects.Get(ctx, key)
	recordObjectOp("get", err)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return "", api.NewNotFoundError("letter not found")
		}
		slog.Error("reading letter failed", "key", key, "error", err)
		return "", api.NewUnavailableError("file storage unavailable")
	}
	defer rc.Close()

	if !strings.HasPrefix(info.ContentType, "text/") {
		return "", api.NewInvalidRequestError("key", "only text letters can be rendered")
	}

	max := rt.cfg.Validation.MaxLetterSize
	data, err := io.ReadAll(io.LimitReader(rc, int64(max)+1))
	if err != nil {
		slog.Error("reading letter failed", "key", key, "error", err)
		return "", api.NewUnavailableError("file storage unavailable")
	}
	if len(data) > max {
		return "", api.NewInvalidRequestError("key", "letter is too large to render")
	}

	return string(data), nil
}

// handleAnalyzeJob handles POST /v1/jobs/analyze. The analysis is never
// persisted, so anonymous and authenticated callers behave identically.
func (rt *Router) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeJobRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if verr := api.ValidateAnalyzeJob(&req, rt.cfg.Validation); verr != nil {
		WriteAPIError(w, verr)
		return
	}
	if !rt.allowCompletion(w, r, auth.IdentityFromContext(r.Context())) {
		return
	}

	analysis, err := rt.letters.AnalyzeJob(r.Context(), req.Description)
	if err != nil {
		slog.Error("job analysis failed", "error", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.JobAnalysis{
		Title:        analysis.Title,
		Company:      analysis.Company,
		Seniority:    analysis.Seniority,
		Skills:       analysis.Skills,
		Requirements: analysis.Requirements,
		Keywords:     analysis.Keywords,
		Summary:      analysis.Summary,
	})
}
