package storage

import (
	"context"
	"sync"
	"time"
)

var _ ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in memory. It backs development runs
// without a bucket and tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

// NewMemoryObjectStorage creates an empty store. URLs are built from baseURL.
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &MemoryObjectStorage{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *MemoryObjectStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return ErrKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryObjectStorage) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if key == "" {
		return "", ErrKeyRequired
	}
	return m.baseURL + "/" + key, nil
}

// Object returns a stored object
func (m *MemoryObjectStorage) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
