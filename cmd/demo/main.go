package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/objstore"
)

func main() {
	fmt.Println("=== coverly core demo ===")
	fmt.Println()

	// 1. Build and validate a registration request
	reg := &api.RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse battery",
	}
	if err := api.ValidateRegister(reg); err != nil {
		fmt.Printf("Validation FAILED: %v\n", err)
		return
	}
	fmt.Println("[1] Registration request validated")

	// 2. Serialize request to JSON
	data, _ := json.MarshalIndent(reg, "", "  ")
	fmt.Printf("\n[2] Register JSON:\n%s\n", data)

	// 3. Mint a token pair and verify the access token
	codec, err := token.New(token.Config{
		Secret:     []byte("demo-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	})
	if err != nil {
		fmt.Printf("Codec FAILED: %v\n", err)
		return
	}

	userID := api.NewUserID()
	access, _ := codec.Issue(userID, reg.Email, token.KindAccess)
	refresh, _ := codec.Issue(userID, reg.Email, token.KindRefresh)
	fmt.Printf("\n[3] Token pair for %s:\n", userID)
	fmt.Printf("    access:  %s\n", head(access))
	fmt.Printf("    refresh: %s\n", head(refresh))

	claims, err := codec.Verify(access, token.KindAccess)
	if err != nil {
		fmt.Printf("Verify FAILED: %v\n", err)
		return
	}
	fmt.Printf("    verified: subject=%s email=%s type=%s\n", claims.Subject, claims.Email, claims.TokenType)

	// 4. Kind separation: a refresh token never authenticates a request
	if _, err := codec.Verify(refresh, token.KindAccess); err != nil {
		fmt.Printf("\n[4] Refresh-as-access: REJECTED (%v)\n", err)
	}

	// 5. Key layout and ownership
	mine := objstore.ObjectKey(userID, objstore.CategoryResumes, "resume.pdf")
	foreign := objstore.ObjectKey(api.NewUserID(), objstore.CategoryResumes, "resume.pdf")
	prefix := objstore.OwnerPrefix(userID)
	fmt.Println("\n[5] Object key ownership:")
	fmt.Printf("    key:     %s\n", mine)
	fmt.Printf("    own key under caller prefix:     %v\n", strings.HasPrefix(mine, prefix))
	fmt.Printf("    foreign key under caller prefix: %v\n", strings.HasPrefix(foreign, prefix))

	// 6. Filename sanitizing
	fmt.Println("\n[6] Filename sanitizing:")
	names := []string{
		"resume.pdf",
		"my resume (final).pdf",
		`..\..\windows\cv.docx`,
		"../../../etc/passwd",
		"???",
	}
	for _, n := range names {
		clean, err := objstore.SanitizeFilename(n)
		if err != nil {
			fmt.Printf("    %-28q REJECTED (%v)\n", n, err)
			continue
		}
		fmt.Printf("    %-28q -> %q\n", n, clean)
	}

	// 7. Upload content types
	fmt.Println("\n[7] Upload content types:")
	for _, n := range []string{"resume.pdf", "notes.md", "cv.docx", "tool.exe"} {
		ct, err := objstore.ContentTypeFor(n)
		if err != nil {
			fmt.Printf("    %-12s REJECTED (%v)\n", n, err)
			continue
		}
		fmt.Printf("    %-12s %s\n", n, ct)
	}

	// 8. Validation error examples
	fmt.Println("\n[8] Validation error examples:")
	badReg := &api.RegisterRequest{Name: "Ada", Email: "not-an-email", Password: "short"}
	if err := api.ValidateRegister(badReg); err != nil {
		fmt.Printf("    Bad email: %v\n", err)
	}

	badGen := &api.GenerateLetterRequest{
		JobDescription: "Backend engineer, Go.",
		ResumeText:     "inline text",
		ResumeKey:      mine,
	}
	if err := api.ValidateGenerateLetter(badGen, api.DefaultValidationConfig()); err != nil {
		fmt.Printf("    Conflicting resume sources: %v\n", err)
	}

	badRender := &api.RenderLetterRequest{Content: "Dear team,", Format: "xlsx"}
	if err := api.ValidateRenderLetter(badRender, api.DefaultValidationConfig()); err != nil {
		fmt.Printf("    Unsupported format: %v\n", err)
	}

	// 9. Wire error envelope
	fmt.Println("\n[9] Wire error envelope:")
	envelope, _ := json.MarshalIndent(api.ErrorResponse{
		Error: api.NewForbiddenError("key belongs to another user"),
	}, "", "  ")
	fmt.Printf("%s\n", envelope)

	fmt.Println("\n=== demo complete ===")
}

func head(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
