package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	userIDPrefix   = "usr_"
	letterIDPrefix = "ltr_"
)

var (
	userIDPattern   = regexp.MustCompile(`^usr_[a-zA-Z0-9]{24}$`)
	letterIDPattern = regexp.MustCompile(`^ltr_[a-zA-Z0-9]{24}$`)
)

// NewUserID generates a new user ID with the "usr_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewUserID() string {
	return userIDPrefix + randomAlphanumeric(idLength)
}

// NewLetterID generates a new letter ID with the "ltr_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewLetterID() string {
	return letterIDPrefix + randomAlphanumeric(idLength)
}

// ValidateUserID checks whether the given string is a valid user ID
// (matches "usr_" + 24 alphanumeric characters).
func ValidateUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// ValidateLetterID checks whether the given string is a valid letter ID
// (matches "ltr_" + 24 alphanumeric characters).
func ValidateLetterID(id string) bool {
	return letterIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
