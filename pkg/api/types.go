package api

import "time"

// TokenTypeBearer is the token_type value returned with every issued token.
const TokenTypeBearer = "Bearer"

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /v1/auth/refresh. The refresh token is
// carried in the body, not the Authorization header, so that expired access
// tokens never interfere with the exchange.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by register and login. On success it carries the
// created or authenticated user together with a fresh token pair.
type AuthResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	User         *UserView `json:"user,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
}

// RefreshResponse is returned by the refresh exchange. Only a new access
// token is minted; the presented refresh token stays valid until it expires.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// UserView is the public projection of a user record. The password hash
// never appears here.
type UserView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Active      bool           `json:"active"`
	Roles       []string       `json:"roles"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UpdateUserRequest is the body of PATCH /v1/users/me. Nil fields are left
// untouched; preferences replace the stored map wholesale. The active flag
// is deliberately absent: accounts are never deactivated through this route.
type UpdateUserRequest struct {
	Name        *string        `json:"name,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
	Password    *string        `json:"password,omitempty"`
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// FileInfo describes a single stored object.
type FileInfo struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
}

// FileListResponse is returned by GET /v1/files.
type FileListResponse struct {
	Files []FileInfo `json:"files"`
}

// UploadResponse is returned by POST /v1/files.
type UploadResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	File    *FileInfo `json:"file,omitempty"`
}

// RenameFileRequest is the body of POST /v1/files/rename. NewName is a bare
// filename; the renamed object stays in the same directory as Key.
type RenameFileRequest struct {
	Key     string `json:"key"`
	NewName string `json:"new_name"`
}

// RenameFileResponse reports where a renamed object now lives.
type RenameFileResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	Name    string `json:"name"`
}

// DownloadLinkResponse carries a short-lived presigned URL for one object.
type DownloadLinkResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ---------------------------------------------------------------------------
// Letters and job analysis
// ---------------------------------------------------------------------------

// GenerateLetterRequest is the body of POST /v1/letters. Exactly one of
// ResumeText and ResumeKey should be set; ResumeKey requires authentication
// since it names an object under the caller's prefix.
type GenerateLetterRequest struct {
	JobDescription string `json:"job_description"`
	ResumeText     string `json:"resume_text,omitempty"`
	ResumeKey      string `json:"resume_key,omitempty"`
	Tone           string `json:"tone,omitempty"`
	Recipient      string `json:"recipient,omitempty"`
	Company        string `json:"company,omitempty"`
}

// Letter is a generated cover letter. Key is set only when the letter was
// persisted, which happens for authenticated callers.
type Letter struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Key       string    `json:"key,omitempty"`
}

// RenderLetterRequest is the body of POST /v1/letters/render. Either Key
// (a stored letter under the caller's prefix) or Content (inline markdown)
// supplies the source text.
type RenderLetterRequest struct {
	Key     string `json:"key,omitempty"`
	Content string `json:"content,omitempty"`
	Format  string `json:"format"`
	Title   string `json:"title,omitempty"`
}

// RenderResponse points at the rendered artifact stored under the caller's
// prefix.
type RenderResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AnalyzeJobRequest is the body of POST /v1/jobs/analyze.
type AnalyzeJobRequest struct {
	Description string `json:"description"`
}

// JobAnalysis is the structured readout of a job posting.
type JobAnalysis struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Seniority    string   `json:"seniority"`
	Skills       []string `json:"skills"`
	Requirements []string `json:"requirements"`
	Keywords     []string `json:"keywords"`
	Summary      string   `json:"summary"`
}

// ---------------------------------------------------------------------------
// Billing
// ---------------------------------------------------------------------------

// Plan is one purchasable subscription plan from the payment provider.
type Plan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceID     string `json:"price_id"`
	UnitAmount  int64  `json:"unit_amount"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
}

// PlanListResponse is returned by GET /v1/plans.
type PlanListResponse struct {
	Plans []Plan `json:"plans"`
}
