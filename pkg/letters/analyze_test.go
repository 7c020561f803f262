package letters

import (
	"context"
	"errors"
	"testing"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/objstore/memory"
	"github.com/coverly/coverly/pkg/provider"
)

const analysisJSON = `{
	"title": "Backend Engineer",
	"company": "Acme",
	"seniority": "senior",
	"skills": ["go", "postgres"],
	"requirements": ["5+ years backend experience"],
	"keywords": ["backend", "api"],
	"summary": "Senior backend role at Acme."
}`

func analysisResponse(content string) *provider.ChatResponse {
	return &provider.ChatResponse{Content: content, Model: "fake-model"}
}

func TestAnalyzeJob(t *testing.T) {
	fake := &fakeProvider{resp: analysisResponse(analysisJSON)}
	svc := NewService(fake, memory.New(), "analysis-model")

	analysis, err := svc.AnalyzeJob(context.Background(), "We need a senior backend engineer.")
	if err != nil {
		t.Fatalf("AnalyzeJob() error: %v", err)
	}

	if analysis.Title != "Backend Engineer" {
		t.Errorf("Title = %q, want %q", analysis.Title, "Backend Engineer")
	}
	if analysis.Company != "Acme" {
		t.Errorf("Company = %q, want %q", analysis.Company, "Acme")
	}
	if analysis.Seniority != "senior" {
		t.Errorf("Seniority = %q, want %q", analysis.Seniority, "senior")
	}
	if len(analysis.Skills) != 2 || analysis.Skills[0] != "go" {
		t.Errorf("Skills = %v, want [go postgres]", analysis.Skills)
	}
	if len(analysis.Requirements) != 1 {
		t.Errorf("Requirements = %v, want one entry", analysis.Requirements)
	}
	if analysis.Summary == "" {
		t.Error("Summary is empty")
	}

	if !fake.lastReq.JSONOnly {
		t.Error("analysis request must set JSONOnly")
	}
	if fake.lastReq.Model != "analysis-model" {
		t.Errorf("request model = %q, want %q", fake.lastReq.Model, "analysis-model")
	}
}

func TestAnalyzeJobCodeFence(t *testing.T) {
	fake := &fakeProvider{resp: analysisResponse("```json\n" + analysisJSON + "\n```")}
	svc := NewService(fake, memory.New(), "m")

	analysis, err := svc.AnalyzeJob(context.Background(), "posting")
	if err != nil {
		t.Fatalf("AnalyzeJob() error: %v", err)
	}
	if analysis.Title != "Backend Engineer" {
		t.Errorf("Title = %q, want %q", analysis.Title, "Backend Engineer")
	}
}

func TestAnalyzeJobProseWrapped(t *testing.T) {
	fake := &fakeProvider{resp: analysisResponse("Here is the analysis:\n" + analysisJSON + "\nHope that helps!")}
	svc := NewService(fake, memory.New(), "m")

	analysis, err := svc.AnalyzeJob(context.Background(), "posting")
	if err != nil {
		t.Fatalf("AnalyzeJob() error: %v", err)
	}
	if analysis.Company != "Acme" {
		t.Errorf("Company = %q, want %q", analysis.Company, "Acme")
	}
}

func TestAnalyzeJobUnparseable(t *testing.T) {
	fake := &fakeProvider{resp: analysisResponse("I cannot analyze this posting.")}
	svc := NewService(fake, memory.New(), "m")

	_, err := svc.AnalyzeJob(context.Background(), "posting")

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("AnalyzeJob() error = %v, want *api.APIError", err)
	}
	if apiErr.Type != api.ErrorTypeProviderError {
		t.Errorf("error type = %q, want %q", apiErr.Type, api.ErrorTypeProviderError)
	}
}

func TestAnalyzeJobEmptyDescription(t *testing.T) {
	svc := NewService(&fakeProvider{resp: analysisResponse("{}")}, memory.New(), "m")

	_, err := svc.AnalyzeJob(context.Background(), "  ")

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("AnalyzeJob() error = %v, want *api.APIError", err)
	}
	if apiErr.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want %q", apiErr.Type, api.ErrorTypeInvalidRequest)
	}
}

func TestAnalyzeJobProviderFailure(t *testing.T) {
	fake := &fakeProvider{err: api.NewProviderError("rate limited")}
	svc := NewService(fake, memory.New(), "m")

	_, err := svc.AnalyzeJob(context.Background(), "posting")

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("AnalyzeJob() error = %v, want *api.APIError", err)
	}
	if apiErr.Type != api.ErrorTypeProviderError {
		t.Errorf("error type = %q, want %q", apiErr.Type, api.ErrorTypeProviderError)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced with language", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapped", `The result: {"a":1} done.`, `{"a":1}`},
		{"leading whitespace", "\n\n  {\"a\":1}", `{"a":1}`},
		{"no json", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
