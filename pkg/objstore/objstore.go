// Package objstore defines the object storage interface behind resume
// uploads and saved letters, plus the key discipline every stored
// object follows.
//
// Storage backends (memory, s3) implement the ObjectStore interface.
// Keys are always "<user-id>/<category>/<filename>"; the helpers in
// keys.go build and police that shape so backends stay dumb.
package objstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when no object exists at the given key.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes a stored object. ContentType may be empty in
// List results; the s3 backend does not return it per key there.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStore is the persistence interface for user files.
// Implementations live in the memory and s3 subpackages.
type ObjectStore interface {
	// Put stores an object at key, replacing any previous content.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error

	// Get opens the object at key. The caller closes the reader.
	// Returns ErrNotFound when no object exists there.
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// List returns the objects under the given key prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Copy duplicates the object at src to dst. Returns ErrNotFound
	// when src does not exist.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes the object at key. Returns ErrNotFound when no
	// object exists there.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL for the object.
	// Returns ErrNotFound when no object exists at key.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error
}
