package letters

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/debug"
	"github.com/coverly/coverly/pkg/provider"
)

// JobAnalysis is the structured read of one job posting.
type JobAnalysis struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Seniority    string   `json:"seniority"`
	Skills       []string `json:"skills"`
	Requirements []string `json:"requirements"`
	Keywords     []string `json:"keywords"`
	Summary      string   `json:"summary"`
}

// AnalyzeJob extracts structured facts from a job posting.
func (s *Service) AnalyzeJob(ctx context.Context, description string) (*JobAnalysis, error) {
	if strings.TrimSpace(description) == "" {
		return nil, api.NewInvalidRequestError("description", "job description is required")
	}

	req := &provider.ChatRequest{
		Model:    s.model,
		Messages: buildAnalysisMessages(description),
		JSONOnly: true,
	}

	resp, err := s.complete(ctx, "analysis", req)
	if err != nil {
		return nil, err
	}
	debug.Trace("letters", "analysis raw reply", "content", debug.Truncate(resp.Content, 2000))

	var analysis JobAnalysis
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &analysis); err != nil {
		return nil, api.NewProviderError("backend returned an unparseable analysis")
	}

	return &analysis, nil
}

// extractJSON returns the JSON object embedded in a completion. Models
// that ignore response_format tend to wrap JSON in code fences or
// prose; both are stripped.
func extractJSON(s string) string {
	t := strings.TrimSpace(s)

	if strings.HasPrefix(t, "```") {
		if i := strings.IndexByte(t, '\n'); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.IndexByte(t, '{')
	end := strings.LastIndexByte(t, '}')
	if start >= 0 && end > start {
		return t[start : end+1]
	}

	return t
}
