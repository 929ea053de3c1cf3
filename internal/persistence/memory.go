package persistence

import (
	"context"
	"sync"
)

// MemoryDocument is a process-local backend for development and tests.
type MemoryDocument struct {
	mu       sync.Mutex
	data     []byte
	readErr  error
	writeErr error
	writes   int
}

// NewMemoryDocument returns an empty in-memory backend.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{}
}

func (m *MemoryDocument) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.data == nil {
		return nil, ErrDocumentNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryDocument) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Ping fails while a read failure is injected.
func (m *MemoryDocument) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readErr
}

// SetFailures injects errors returned by subsequent reads and writes.
func (m *MemoryDocument) SetFailures(readErr, writeErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = readErr
	m.writeErr = writeErr
}

// Put replaces the stored bytes without counting a write.
func (m *MemoryDocument) Put(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}

// Writes reports how many successful writes happened.
func (m *MemoryDocument) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
