package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore keeps a single index in memory. Nothing survives the process.
type VectorStore struct {
	mu    sync.RWMutex
	index *Index
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// Location returns a description of where the index lives.
func (s *VectorStore) Location() string {
	return ":memory:"
}

// Exists reports whether an index has been built.
func (s *VectorStore) Exists(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil, nil
}

// Build replaces the stored index with records.
// On failure the previous index is discarded.
func (s *VectorStore) Build(
	ctx context.Context,
	records []domain.EmbeddingRecord,
	meta domain.IndexMeta,
) (driven.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = nil

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = time.Now().UTC()
	}
	idx, err := NewIndex(records, meta)
	if err != nil {
		return nil, err
	}

	s.index = idx
	return idx, nil
}

// Open returns the built index, or domain.ErrIndexNotFound.
func (s *VectorStore) Open(_ context.Context) (driven.VectorIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return nil, domain.ErrIndexNotFound
	}
	return s.index, nil
}

// Remove discards the index.
func (s *VectorStore) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
	return nil
}
