package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

type blob struct {
	data        []byte
	contentType string
}

// MemoryStore keeps images in process and previews them as data URLs, so
// development needs no storage server.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]blob)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrMissingKey
	}
	s.mu.Lock()
	s.blobs[key] = blob{data: append([]byte(nil), data...), contentType: contentType}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) PreviewURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrMissingKey
	}
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, fmt.Errorf("image %q not stored", key)
	}
	return "data:" + b.contentType + ";base64," + base64.StdEncoding.EncodeToString(b.data), time.Now().Add(ttl), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrMissingKey
	}
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok, nil
}
