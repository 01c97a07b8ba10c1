package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage keeps objects in a map. Used by tests and local runs without
// a real bucket.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	url := "mem://" + name
	s.mu.Lock()
	s.objects[url] = append([]byte(nil), data...)
	s.mu.Unlock()
	return url, nil
}

func (s *MemoryStorage) Read(ctx context.Context, url string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.objects[url]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object %s not found", url)
	}
	return append([]byte(nil), data...), nil
}

// Len reports how many objects have been written.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
