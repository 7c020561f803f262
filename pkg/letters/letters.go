package letters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth"
	"github.com/coverly/coverly/pkg/debug"
	"github.com/coverly/coverly/pkg/objstore"
	"github.com/coverly/coverly/pkg/observability"
	"github.com/coverly/coverly/pkg/provider"
)

// maxResumePromptBytes caps how much resume text is inlined into a
// prompt. Larger files are rejected rather than silently truncated.
const maxResumePromptBytes = 200 << 10

// Service generates cover letters and job analyses.
type Service struct {
	provider provider.Provider
	objects  objstore.ObjectStore
	model    string
}

// NewService creates a letter service. The model is the backend model
// name used for every completion.
func NewService(p provider.Provider, objects objstore.ObjectStore, model string) *Service {
	return &Service{provider: p, objects: objects, model: model}
}

// GenerateInput carries one letter request after transport validation.
type GenerateInput struct {
	// JobDescription is the posting text. Required.
	JobDescription string

	// ResumeText is inline resume content. Mutually exclusive with
	// ResumeKey.
	ResumeText string

	// ResumeKey names a stored resume to inline. The handler has
	// already verified the key belongs to the caller.
	ResumeKey string

	// Tone, Recipient and Company steer the letter. All optional.
	Tone      string
	Recipient string
	Company   string
}

// Letter is one generated cover letter.
type Letter struct {
	ID        string
	Content   string
	Model     string
	CreatedAt time.Time

	// Key is where the letter was stored, empty for anonymous calls.
	Key string
}

// Generate produces a cover letter. When owner is non-nil the letter is
// persisted under the owner's letters prefix and Key reports where.
func (s *Service) Generate(ctx context.Context, owner *auth.Identity, in GenerateInput) (*Letter, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, api.NewInvalidRequestError("job_description", "job description is required")
	}
	if in.ResumeText != "" && in.ResumeKey != "" {
		return nil, api.NewInvalidRequestError("resume_key", "provide resume_text or resume_key, not both")
	}

	resumeText := in.ResumeText
	if in.ResumeKey != "" {
		text, err := s.loadResume(ctx, in.ResumeKey)
		if err != nil {
			return nil, err
		}
		resumeText = text
	}

	req := &provider.ChatRequest{
		Model:    s.model,
		Messages: buildLetterMessages(in, resumeText),
	}
	debug.Log("letters", "letter prompt built",
		"resume_chars", len(resumeText), "company", in.Company, "tone", in.Tone)

	resp, err := s.complete(ctx, "letter", req)
	if err != nil {
		return nil, err
	}

	letter := &Letter{
		ID:        api.NewLetterID(),
		Content:   resp.Content,
		Model:     resp.Model,
		CreatedAt: time.Now().UTC(),
	}
	if letter.Model == "" {
		letter.Model = s.model
	}

	if owner != nil {
		key, err := s.persist(ctx, owner.ID, in.Company, letter.Content)
		if err != nil {
			return nil, err
		}
		letter.Key = key
	}

	return letter, nil
}

// complete runs one provider call with generation metrics attached.
func (s *Service) complete(ctx context.Context, kind string, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	start := time.Now()
	resp, err := s.provider.Complete(ctx, req)
	observability.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.GenerationTotal.WithLabelValues(kind, "error").Inc()
		return nil, err
	}

	observability.GenerationTotal.WithLabelValues(kind, "success").Inc()
	observability.ProviderTokensTotal.WithLabelValues("input").Add(float64(resp.Usage.Prompt))
	observability.ProviderTokensTotal.WithLabelValues("output").Add(float64(resp.Usage.Completion))

	return resp, nil
}

// loadResume inlines a stored resume into prompt text. Only text files
// qualify; a PDF cannot be pasted into a prompt.
func (s *Service) loadResume(ctx context.Context, key string) (string, error) {
	rc, info, err := s.objects.Get(ctx, key)
	if err != nil {
		observability.ObjectStoreOperationsTotal.WithLabelValues("get", "error").Inc()
		if errors.Is(err, objstore.ErrNotFound) {
			return "", api.NewNotFoundError("resume not found")
		}
		return "", api.NewUnavailableError("object store unavailable")
	}
	defer rc.Close()
	observability.ObjectStoreOperationsTotal.WithLabelValues("get", "success").Inc()

	if !strings.HasPrefix(info.ContentType, "text/") {
		return "", api.NewInvalidRequestError("resume_key", "resume file must be plain text (.txt or .md)")
	}
	if info.Size > maxResumePromptBytes {
		return "", api.NewInvalidRequestError("resume_key", fmt.Sprintf("resume file exceeds %d bytes", maxResumePromptBytes))
	}

	data, err := io.ReadAll(io.LimitReader(rc, maxResumePromptBytes+1))
	if err != nil {
		return "", api.NewUnavailableError("object store unavailable")
	}
	if len(data) > maxResumePromptBytes {
		return "", api.NewInvalidRequestError("resume_key", fmt.Sprintf("resume file exceeds %d bytes", maxResumePromptBytes))
	}

	return string(data), nil
}

// persist writes letter content under the owner's letters prefix and
// returns the stored key.
func (s *Service) persist(ctx context.Context, ownerID, company, content string) (string, error) {
	base := "cover-letter"
	if company != "" {
		base += "-" + company
	}

	name, err := objstore.SanitizeFilename(objstore.NewArtifactName(base, ".md"))
	if err != nil {
		return "", api.NewServerError(fmt.Sprintf("building letter filename: %s", err.Error()))
	}

	key := objstore.ObjectKey(ownerID, objstore.CategoryLetters, name)
	err = s.objects.Put(ctx, key, "text/markdown", strings.NewReader(content), int64(len(content)))
	if err != nil {
		observability.ObjectStoreOperationsTotal.WithLabelValues("put", "error").Inc()
		return "", api.NewUnavailableError("letter storage unavailable")
	}
	observability.ObjectStoreOperationsTotal.WithLabelValues("put", "success").Inc()

	return key, nil
}
