// Package memory provides an in-memory implementation of
// objstore.ObjectStore for tests and single-node dev deployments.
// Objects live in process memory; presigned links are pseudo-URLs that
// only tests dereference.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coverly/coverly/pkg/objstore"
)

// object holds stored bytes and metadata.
type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Store is an in-memory ObjectStore.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*object
}

// Ensure Store implements objstore.ObjectStore at compile time.
var _ objstore.ObjectStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string]*object)}
}

// Put stores an object, replacing any previous content at the key.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading object body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("object size mismatch: read %d bytes, declared %d", len(data), size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = &object{
		data:        data,
		contentType: contentType,
		modified:    time.Now().UTC(),
	}

	return nil
}

// Get opens the object at key.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *objstore.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[key]
	if !ok {
		return nil, nil, objstore.ErrNotFound
	}

	info := &objstore.ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		ContentType:  o.contentType,
		LastModified: o.modified,
	}

	return io.NopCloser(bytes.NewReader(o.data)), info, nil
}

// List returns the objects under the given key prefix, sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]objstore.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var infos []objstore.ObjectInfo
	for key, o := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, objstore.ObjectInfo{
			Key:          key,
			Size:         int64(len(o.data)),
			ContentType:  o.contentType,
			LastModified: o.modified,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Key < infos[j].Key
	})

	return infos, nil
}

// Copy duplicates the object at src to dst.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.objects[src]
	if !ok {
		return objstore.ErrNotFound
	}

	s.objects[dst] = &object{
		data:        append([]byte(nil), o.data...),
		contentType: o.contentType,
		modified:    time.Now().UTC(),
	}

	return nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return objstore.ErrNotFound
	}

	delete(s.objects, key)
	return nil
}

// PresignGet fabricates a pseudo-URL carrying the key and expiry. The
// link is not dereferenceable; real links come from the s3 backend.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.objects[key]; !ok {
		return "", objstore.ErrNotFound
	}

	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory://%s?expires=%d", key, expires), nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}
