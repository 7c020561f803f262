package objstore

import (
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Categories under a user's namespace.
const (
	CategoryResumes = "resumes"
	CategoryLetters = "letters"
)

// maxFilenameRunes caps sanitized filenames, extension included.
const maxFilenameRunes = 128

// reservedChars never survive sanitizing. The slash family is already
// gone after the directory strip; the rest are Windows reserved.
const reservedChars = `<>:"/\|?*`

// contentTypes maps accepted upload extensions to the content type an
// object is stored with. The extension decides: a client-declared type
// that disagrees loses.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".md":   "text/markdown",
}

// OwnerPrefix returns the key prefix all of a user's objects live under.
func OwnerPrefix(userID string) string {
	return userID + "/"
}

// ObjectKey assembles "<user-id>/<category>/<filename>".
func ObjectKey(userID, category, filename string) string {
	return userID + "/" + category + "/" + filename
}

// SanitizeFilename reduces a client-supplied filename to a safe key
// segment: directory components and reserved or control characters are
// stripped, whitespace runs collapse to "_", and the result is capped
// at 128 runes with the extension preserved.
func SanitizeFilename(name string) (string, error) {
	// Directory components, Windows-style ones included, never survive.
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)

	var b strings.Builder
	pendingSpace := false
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			// control characters are dropped
		case strings.ContainsRune(reservedChars, r):
			// reserved characters are dropped
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if strings.Trim(cleaned, ".") == "" {
		return "", fmt.Errorf("filename %q has no usable characters", name)
	}

	if utf8.RuneCountInString(cleaned) > maxFilenameRunes {
		ext := path.Ext(cleaned)
		keep := maxFilenameRunes - utf8.RuneCountInString(ext)
		if keep < 1 {
			return "", fmt.Errorf("filename extension too long")
		}
		base := []rune(strings.TrimSuffix(cleaned, ext))
		if len(base) > keep {
			base = base[:keep]
		}
		cleaned = string(base) + ext
	}

	return cleaned, nil
}

// ContentTypeFor returns the content type an object with this filename
// is stored and served with. Unknown extensions are rejected.
func ContentTypeFor(filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	ct, ok := contentTypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file extension %q", ext)
	}
	return ct, nil
}

// NewArtifactName builds a collision-free filename for server-generated
// artifacts, e.g. NewArtifactName("acme-corp", ".md").
func NewArtifactName(base, ext string) string {
	return base + "-" + uuid.NewString() + ext
}
