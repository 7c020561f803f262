package api

import (
	"testing"
)

func TestNewUserID(t *testing.T) {
	id := NewUserID()
	if !ValidateUserID(id) {
		t.Errorf("NewUserID() = %q, want valid user ID", id)
	}
}

func TestNewLetterID(t *testing.T) {
	id := NewLetterID()
	if !ValidateLetterID(id) {
		t.Errorf("NewLetterID() = %q, want valid letter ID", id)
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "usr_abcdefghijklmnopqrstuvwx", true},
		{"valid mixed case", "usr_AbCdEfGhIjKlMnOpQrStUvWx", true},
		{"valid digits", "usr_123456789012345678901234", true},
		{"wrong prefix", "ltr_abcdefghijklmnopqrstuvwx", false},
		{"no prefix", "abcdefghijklmnopqrstuvwxyz12", false},
		{"too short", "usr_abc", false},
		{"too long", "usr_abcdefghijklmnopqrstuvwxy", false},
		{"special chars", "usr_abcdefghijklmnopqrstuv!@", false},
		{"empty", "", false},
		{"prefix only", "usr_", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateUserID(tt.id); got != tt.want {
				t.Errorf("ValidateUserID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidateLetterID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "ltr_abcdefghijklmnopqrstuvwx", true},
		{"valid mixed case", "ltr_AbCdEfGhIjKlMnOpQrStUvWx", true},
		{"valid digits", "ltr_123456789012345678901234", true},
		{"wrong prefix", "usr_abcdefghijklmnopqrstuvwx", false},
		{"no prefix", "abcdefghijklmnopqrstuvwxyz12", false},
		{"too short", "ltr_abc", false},
		{"too long", "ltr_abcdefghijklmnopqrstuvwxy", false},
		{"special chars", "ltr_abcdefghijklmnopqrstuv!@", false},
		{"empty", "", false},
		{"prefix only", "ltr_", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateLetterID(tt.id); got != tt.want {
				t.Errorf("ValidateLetterID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIDUniqueness(t *testing.T) {
	const count = 1000
	seen := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		id := NewUserID()
		if seen[id] {
			t.Fatalf("duplicate user ID after %d generations: %s", i, id)
		}
		seen[id] = true
	}

	seen = make(map[string]bool, count)
	for i := 0; i < count; i++ {
		id := NewLetterID()
		if seen[id] {
			t.Fatalf("duplicate letter ID after %d generations: %s", i, id)
		}
		seen[id] = true
	}
}
