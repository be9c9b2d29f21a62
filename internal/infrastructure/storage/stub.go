package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/sheetflow/listener/internal/application/listener"
)

// StubArchiver keeps archived payloads in memory. Used when archival is
// disabled and in tests.
type StubArchiver struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubArchiver creates an empty in-memory archiver
func NewStubArchiver() *StubArchiver {
	return &StubArchiver{objects: make(map[string][]byte)}
}

// Archive stores the payload in memory
func (a *StubArchiver) Archive(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("archive key is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = append([]byte(nil), data...)
	return nil
}

// Get returns an archived payload, if present
func (a *StubArchiver) Get(key string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[key]
	return data, ok
}

// Len returns the number of archived payloads
func (a *StubArchiver) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

// Ensure StubArchiver implements the application-layer port
var _ listener.Archiver = (*StubArchiver)(nil)
