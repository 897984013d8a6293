package db

import (
	"context"
	"sync"
)

// MemoryDocumentStore is an in-memory DocumentStore used in tests and
// when running without a database.
type MemoryDocumentStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemoryDocumentStore creates an empty in-memory store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[string][]byte)}
}

// Get returns the document stored under key.
func (s *MemoryDocumentStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put stores the document under key.
func (s *MemoryDocumentStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.docs[key] = stored
	return nil
}

// Delete removes the document under key.
func (s *MemoryDocumentStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return nil
}

// Len reports the number of stored documents.
func (s *MemoryDocumentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
