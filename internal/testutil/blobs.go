package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/anonto42/snapgram/backend/internal/apperr"
)

// MemoryBlobStore keeps blobs in a map
type MemoryBlobStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	types     map[string]string
	deleteErr error
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte), types: make(map[string]string)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, ref, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = data
	s.types[ref] = contentType
	return int64(len(data)), nil
}

func (s *MemoryBlobStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, apperr.MediaNotFound(ref)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.blobs, ref)
	delete(s.types, ref)
	return nil
}

// FailDeletes makes every later Delete return err
func (s *MemoryBlobStore) FailDeletes(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

// Has reports whether bytes are stored under ref
func (s *MemoryBlobStore) Has(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[ref]
	return ok
}

// MemoryPresenceCache mirrors the redis presence keys without expiry
type MemoryPresenceCache struct {
	mu     sync.Mutex
	online map[string]bool
}

func NewMemoryPresenceCache() *MemoryPresenceCache {
	return &MemoryPresenceCache{online: make(map[string]bool)}
}

func (c *MemoryPresenceCache) Touch(ctx context.Context, userID string, online bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if online {
		c.online[userID] = true
	} else {
		delete(c.online, userID)
	}
	return nil
}

// Expire drops the key as if its TTL had lapsed
func (c *MemoryPresenceCache) Expire(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.online, userID)
}

func (c *MemoryPresenceCache) Online(ctx context.Context, userID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online[userID], nil
}
