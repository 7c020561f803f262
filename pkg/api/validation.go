package api

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the minimum accepted password length, in bytes.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxNameLength         int
	MaxJobDescriptionSize int
	MaxResumeSize         int
	MaxLetterSize         int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxNameLength:         200,
		MaxJobDescriptionSize: 64 * 1024,
		MaxResumeSize:         256 * 1024,
		MaxLetterSize:         256 * 1024,
	}
}

// ValidEmail reports whether s looks like an email address. The check is
// deliberately shallow; deliverability is not this backend's problem.
func ValidEmail(s string) bool {
	return len(s) <= 320 && emailPattern.MatchString(s)
}

// ValidateRegister checks a RegisterRequest. It returns an *APIError
// describing the first validation failure, or nil if the request is valid.
func ValidateRegister(req *RegisterRequest) *APIError {
	if strings.TrimSpace(req.Name) == "" {
		return NewInvalidRequestError("name", "name is required")
	}
	if utf8.RuneCountInString(req.Name) > 200 {
		return NewInvalidRequestError("name", "name exceeds 200 characters")
	}
	if req.Email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if !ValidEmail(req.Email) {
		return NewInvalidRequestError("email", "email is not a valid address")
	}
	if len(req.Password) < MinPasswordLength {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// ValidateLogin checks a LoginRequest.
func ValidateLogin(req *LoginRequest) *APIError {
	if req.Email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if req.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	return nil
}

// ValidateRefresh checks a RefreshRequest.
func ValidateRefresh(req *RefreshRequest) *APIError {
	if req.RefreshToken == "" {
		return NewInvalidRequestError("refresh_token", "refresh_token is required")
	}
	return nil
}

// ValidateUpdateUser checks an UpdateUserRequest. An empty update is
// rejected so a malformed body does not silently no-op.
func ValidateUpdateUser(req *UpdateUserRequest) *APIError {
	if req.Name == nil && req.Preferences == nil && req.Password == nil {
		return NewInvalidRequestError("", "at least one of name, preferences, password must be set")
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return NewInvalidRequestError("name", "name cannot be empty")
		}
		if utf8.RuneCountInString(*req.Name) > 200 {
			return NewInvalidRequestError("name", "name exceeds 200 characters")
		}
	}
	if req.Password != nil && len(*req.Password) < MinPasswordLength {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// ValidateGenerateLetter checks a GenerateLetterRequest against the
// configured size limits.
func ValidateGenerateLetter(req *GenerateLetterRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.JobDescription) == "" {
		return NewInvalidRequestError("job_description", "job_description is required")
	}
	if cfg.MaxJobDescriptionSize > 0 && len(req.JobDescription) > cfg.MaxJobDescriptionSize {
		return NewInvalidRequestError("job_description",
			fmt.Sprintf("job_description exceeds maximum of %d bytes", cfg.MaxJobDescriptionSize))
	}
	if req.ResumeText != "" && req.ResumeKey != "" {
		return NewInvalidRequestError("resume_key", "resume_text and resume_key are mutually exclusive")
	}
	if cfg.MaxResumeSize > 0 && len(req.ResumeText) > cfg.MaxResumeSize {
		return NewInvalidRequestError("resume_text",
			fmt.Sprintf("resume_text exceeds maximum of %d bytes", cfg.MaxResumeSize))
	}
	return nil
}

// ValidateRenderLetter checks a RenderLetterRequest. Exactly one of key and
// content must supply the source text, and the format must be renderable.
func ValidateRenderLetter(req *RenderLetterRequest, cfg ValidationConfig) *APIError {
	if req.Key == "" && req.Content == "" {
		return NewInvalidRequestError("content", "one of key or content is required")
	}
	if req.Key != "" && req.Content != "" {
		return NewInvalidRequestError("key", "key and content are mutually exclusive")
	}
	if cfg.MaxLetterSize > 0 && len(req.Content) > cfg.MaxLetterSize {
		return NewInvalidRequestError("content",
			fmt.Sprintf("content exceeds maximum of %d bytes", cfg.MaxLetterSize))
	}
	switch req.Format {
	case "pdf", "docx":
	case "":
		return NewInvalidRequestError("format", "format is required")
	default:
		return NewInvalidRequestError("format",
			fmt.Sprintf("unsupported format %q: must be 'pdf' or 'docx'", req.Format))
	}
	return nil
}

// ValidateAnalyzeJob checks an AnalyzeJobRequest.
func ValidateAnalyzeJob(req *AnalyzeJobRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.Description) == "" {
		return NewInvalidRequestError("description", "description is required")
	}
	if cfg.MaxJobDescriptionSize > 0 && len(req.Description) > cfg.MaxJobDescriptionSize {
		return NewInvalidRequestError("description",
			fmt.Sprintf("description exceeds maximum of %d bytes", cfg.MaxJobDescriptionSize))
	}
	return nil
}
