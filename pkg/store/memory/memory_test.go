package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/coverly/coverly/pkg/store"
)

func makeUser(id, email string) *store.User {
	return &store.User{
		ID:           id,
		Name:         "Ada Lovelace",
		Email:        email,
		PasswordHash: []byte("$2a$10$fakehashfortesting"),
		Active:       true,
		Roles:        []string{"user"},
		Preferences:  map[string]any{"tone": "formal"},
	}
}

func TestCreateAndGetByID(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := makeUser("usr_a", "ada@example.com")
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("Create should stamp CreatedAt and UpdatedAt")
	}

	got, err := s.GetByID(ctx, "usr_a")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want %q", got.Name, "Ada Lovelace")
	}
	if got.Email != "ada@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "ada@example.com")
	}
	if !got.Active {
		t.Error("Active = false, want true")
	}
	if len(got.Roles) != 1 || got.Roles[0] != "user" {
		t.Errorf("Roles = %v, want [user]", got.Roles)
	}
	if got.Preferences["tone"] != "formal" {
		t.Errorf("Preferences[tone] = %v, want formal", got.Preferences["tone"])
	}
}

func TestGetByEmailCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Create(ctx, makeUser("usr_b", "Ada@Example.COM"))

	for _, email := range []string{"ada@example.com", "ADA@EXAMPLE.COM", "Ada@Example.COM"} {
		got, err := s.GetByEmail(ctx, email)
		if err != nil {
			t.Fatalf("GetByEmail(%q) failed: %v", email, err)
		}
		if got.ID != "usr_b" {
			t.Errorf("GetByEmail(%q).ID = %q, want %q", email, got.ID, "usr_b")
		}
		// The stored spelling is preserved.
		if got.Email != "Ada@Example.COM" {
			t.Errorf("Email = %q, want original spelling preserved", got.Email)
		}
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Create(ctx, makeUser("usr_c1", "taken@example.com"))

	err := s.Create(ctx, makeUser("usr_c2", "TAKEN@example.com"))
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken for duplicate email, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetByID(ctx, "usr_missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByEmail: expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := makeUser("usr_d", "update@example.com")
	s.Create(ctx, u)
	created := u.CreatedAt

	u.Name = "Ada King"
	u.Active = false
	u.Roles = []string{"user", "admin"}
	u.Preferences = map[string]any{"tone": "casual"}
	u.PasswordHash = []byte("$2a$10$differenthash")
	u.Email = "changed@example.com" // must be ignored

	if err := s.Update(ctx, u); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := s.GetByID(ctx, "usr_d")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.Name != "Ada King" {
		t.Errorf("Name = %q, want %q", got.Name, "Ada King")
	}
	if got.Active {
		t.Error("Active = true, want false after update")
	}
	if len(got.Roles) != 2 {
		t.Errorf("Roles = %v, want two entries", got.Roles)
	}
	if got.Preferences["tone"] != "casual" {
		t.Errorf("Preferences[tone] = %v, want casual", got.Preferences["tone"])
	}
	if got.Email != "update@example.com" {
		t.Errorf("Email = %q, update must not change the email", got.Email)
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("Update must not change CreatedAt")
	}
	if !got.UpdatedAt.After(created) && !got.UpdatedAt.Equal(created) {
		t.Error("Update should advance UpdatedAt")
	}

	// The old email still resolves, the never-stored one does not.
	if _, err := s.GetByEmail(ctx, "update@example.com"); err != nil {
		t.Errorf("original email should still resolve: %v", err)
	}
	if _, err := s.GetByEmail(ctx, "changed@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Error("ignored email change must not be indexed")
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := New()

	err := s.Update(context.Background(), makeUser("usr_missing", "x@example.com"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNoAliasing(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := makeUser("usr_e", "alias@example.com")
	s.Create(ctx, u)

	// Mutating the source record must not change stored state.
	u.Name = "Mutated"
	u.Roles[0] = "mutated"
	u.Preferences["tone"] = "mutated"

	got, _ := s.GetByID(ctx, "usr_e")
	if got.Name != "Ada Lovelace" {
		t.Error("stored name aliased the caller's struct")
	}
	if got.Roles[0] != "user" {
		t.Error("stored roles aliased the caller's slice")
	}
	if got.Preferences["tone"] != "formal" {
		t.Error("stored preferences aliased the caller's map")
	}

	// Mutating a returned record must not change stored state either.
	got.Roles[0] = "mutated"
	got.Preferences["tone"] = "mutated"

	again, _ := s.GetByID(ctx, "usr_e")
	if again.Roles[0] != "user" || again.Preferences["tone"] != "formal" {
		t.Error("returned record aliased stored state")
	}
}

func TestHealthCheck(t *testing.T) {
	s := New()
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
