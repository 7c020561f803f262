// Package postgres provides a PostgreSQL implementation of store.UserStore.
// It uses pgx/v5 for connection pooling and JSONB for preference storage.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coverly/coverly/pkg/store"
)

// Store is a PostgreSQL-backed UserStore.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements store.UserStore at compile time.
var _ store.UserStore = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied before the
// store is returned.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Create persists a new user and stamps its timestamps.
func (s *Store) Create(ctx context.Context, u *store.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt

	prefsJSON, err := marshalPreferences(u.Preferences)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (
			id, name, email, password_hash, active, roles, preferences,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Active, nonNilRoles(u.Roles),
		nullJSON(prefsJSON), u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		if isDuplicateKey(err) {
			// The lower(email) unique index is the only constraint a
			// well-formed insert can trip; ids are generated random.
			return store.ErrEmailTaken
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID. Inactive accounts are returned too;
// the caller decides how to treat them.
func (s *Store) GetByID(ctx context.Context, id string) (*store.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by email address, compared
// case-insensitively.
func (s *Store) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.getUser(ctx, "lower(email) = lower($1)", email)
}

// getUser is the shared retrieval implementation.
func (s *Store) getUser(ctx context.Context, where string, arg any) (*store.User, error) {
	var u store.User
	var prefsJSON *[]byte

	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, active, roles, preferences,
		       created_at, updated_at
		FROM users
		WHERE `+where,
		arg,
	).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Active, &u.Roles,
		&prefsJSON, &u.CreatedAt, &u.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if prefsJSON != nil {
		if err := json.Unmarshal(*prefsJSON, &u.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshaling preferences: %w", err)
		}
	}

	return &u, nil
}

// Update persists the mutable fields of an existing user. The email
// column is deliberately absent from the SET list; the address is
// immutable.
func (s *Store) Update(ctx context.Context, u *store.User) error {
	u.UpdatedAt = time.Now().UTC()

	prefsJSON, err := marshalPreferences(u.Preferences)
	if err != nil {
		return err
	}

	result, err := s.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, active = $2, roles = $3, preferences = $4,
		    password_hash = $5, updated_at = $6
		WHERE id = $7
	`,
		u.Name, u.Active, nonNilRoles(u.Roles), nullJSON(prefsJSON),
		u.PasswordHash, u.UpdatedAt, u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// marshalPreferences encodes a preference map for JSONB storage. A nil
// map becomes a SQL NULL rather than the JSON literal "null".
func marshalPreferences(prefs map[string]any) ([]byte, error) {
	if prefs == nil {
		return nil, nil
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("marshaling preferences: %w", err)
	}
	return b, nil
}

// nonNilRoles substitutes an empty slice for nil so the NOT NULL roles
// column never receives a NULL array.
func nonNilRoles(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}

// nullJSON converts nil/empty byte slices to nil for nullable JSONB columns.
func nullJSON(b []byte) *[]byte {
	if len(b) == 0 {
		return nil
	}
	return &b
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
