package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/store"
)

// fakeUsers is a UserGetter backed by a map that counts reads.
type fakeUsers struct {
	users map[string]*store.User
	err   error
	calls int
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*store.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func activeUser(id string) *store.User {
	return &store.User{
		ID:          id,
		Name:        "Grace Hopper",
		Email:       "grace@example.com",
		Active:      true,
		Roles:       []string{"user"},
		Preferences: map[string]any{"tone": "formal"},
	}
}

func newTestResolver(t *testing.T, users *fakeUsers) (*Resolver, *token.Codec) {
	t.Helper()

	codec, err := token.New(token.Config{
		Secret:     []byte("resolver-test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("creating codec: %v", err)
	}

	return NewResolver(codec, users), codec
}

func TestResolve(t *testing.T) {
	users := &fakeUsers{users: map[string]*store.User{"usr_1": activeUser("usr_1")}}
	r, codec := newTestResolver(t, users)

	tok, err := codec.Issue("usr_1", "grace@example.com", token.KindAccess)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	id, err := r.Resolve(context.Background(), tok)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if id.ID != "usr_1" {
		t.Errorf("ID = %q, want %q", id.ID, "usr_1")
	}
	if id.Name != "Grace Hopper" {
		t.Errorf("Name = %q, want %q", id.Name, "Grace Hopper")
	}
	if id.Email != "grace@example.com" {
		t.Errorf("Email = %q, want %q", id.Email, "grace@example.com")
	}
	if !id.Active {
		t.Error("Active = false, want true")
	}
	if id.Preferences["tone"] != "formal" {
		t.Errorf("Preferences[tone] = %v, want formal", id.Preferences["tone"])
	}
	if users.calls != 1 {
		t.Errorf("store reads = %d, want exactly 1", users.calls)
	}
}

func TestResolveRejectsRefreshToken(t *testing.T) {
	users := &fakeUsers{users: map[string]*store.User{"usr_1": activeUser("usr_1")}}
	r, codec := newTestResolver(t, users)

	tok, _ := codec.Issue("usr_1", "grace@example.com", token.KindRefresh)

	_, err := r.Resolve(context.Background(), tok)
	if !errors.Is(err, token.ErrWrongKind) {
		t.Errorf("expected ErrWrongKind, got %v", err)
	}
	if users.calls != 0 {
		t.Errorf("store reads = %d, credential failures must not hit the store", users.calls)
	}
}

func TestResolveMalformed(t *testing.T) {
	users := &fakeUsers{}
	r, _ := newTestResolver(t, users)

	_, err := r.Resolve(context.Background(), "not-a-token")
	if !errors.Is(err, token.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
	if users.calls != 0 {
		t.Errorf("store reads = %d, want 0", users.calls)
	}
}

func TestResolveMissingSubject(t *testing.T) {
	users := &fakeUsers{}
	r, codec := newTestResolver(t, users)

	tok, _ := codec.Issue("", "nobody@example.com", token.KindAccess)

	_, err := r.Resolve(context.Background(), tok)
	if !errors.Is(err, ErrMissingSubject) {
		t.Errorf("expected ErrMissingSubject, got %v", err)
	}
	if users.calls != 0 {
		t.Errorf("store reads = %d, want 0", users.calls)
	}
}

func TestResolveUnknownSubject(t *testing.T) {
	users := &fakeUsers{users: map[string]*store.User{}}
	r, codec := newTestResolver(t, users)

	tok, _ := codec.Issue("usr_ghost", "", token.KindAccess)

	_, err := r.Resolve(context.Background(), tok)
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("expected ErrUnknownSubject, got %v", err)
	}
}

func TestResolveInactive(t *testing.T) {
	u := activeUser("usr_gone")
	u.Active = false
	users := &fakeUsers{users: map[string]*store.User{"usr_gone": u}}
	r, codec := newTestResolver(t, users)

	tok, _ := codec.Issue("usr_gone", "", token.KindAccess)

	_, err := r.Resolve(context.Background(), tok)
	if !errors.Is(err, ErrInactive) {
		t.Errorf("expected ErrInactive, got %v", err)
	}
}

func TestResolveStoreOutage(t *testing.T) {
	users := &fakeUsers{err: errors.New("connection refused")}
	r, codec := newTestResolver(t, users)

	tok, _ := codec.Issue("usr_1", "", token.KindAccess)

	_, err := r.Resolve(context.Background(), tok)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestResolveReadsStoreEveryCall(t *testing.T) {
	users := &fakeUsers{users: map[string]*store.User{"usr_1": activeUser("usr_1")}}
	r, codec := newTestResolver(t, users)

	tok, _ := codec.Issue("usr_1", "", token.KindAccess)
	ctx := context.Background()

	if _, err := r.Resolve(ctx, tok); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	// Deactivation takes effect on the very next request; the resolver
	// must not cache.
	users.users["usr_1"].Active = false

	if _, err := r.Resolve(ctx, tok); !errors.Is(err, ErrInactive) {
		t.Errorf("expected ErrInactive after deactivation, got %v", err)
	}
	if users.calls != 2 {
		t.Errorf("store reads = %d, want 2", users.calls)
	}
}

func TestResolveOptional(t *testing.T) {
	users := &fakeUsers{users: map[string]*store.User{"usr_1": activeUser("usr_1")}}
	r, codec := newTestResolver(t, users)
	ctx := context.Background()

	// Absent token: anonymous, no store read.
	id, err := r.ResolveOptional(ctx, "")
	if err != nil || id != nil {
		t.Errorf("empty token: got (%v, %v), want (nil, nil)", id, err)
	}
	if users.calls != 0 {
		t.Errorf("store reads = %d, want 0 for absent token", users.calls)
	}

	// Valid token: identity.
	tok, _ := codec.Issue("usr_1", "", token.KindAccess)
	id, err = r.ResolveOptional(ctx, tok)
	if err != nil {
		t.Fatalf("ResolveOptional failed: %v", err)
	}
	if id == nil || id.ID != "usr_1" {
		t.Errorf("identity = %v, want usr_1", id)
	}

	// Bad credentials: anonymous, not an error.
	id, err = r.ResolveOptional(ctx, "garbage")
	if err != nil || id != nil {
		t.Errorf("garbage token: got (%v, %v), want (nil, nil)", id, err)
	}

	refreshTok, _ := codec.Issue("usr_1", "", token.KindRefresh)
	id, err = r.ResolveOptional(ctx, refreshTok)
	if err != nil || id != nil {
		t.Errorf("refresh token: got (%v, %v), want (nil, nil)", id, err)
	}
}

func TestResolveOptionalStoreOutage(t *testing.T) {
	users := &fakeUsers{err: errors.New("connection refused")}
	r, codec := newTestResolver(t, users)

	tok, _ := codec.Issue("usr_1", "", token.KindAccess)

	_, err := r.ResolveOptional(context.Background(), tok)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable to propagate, got %v", err)
	}
}
