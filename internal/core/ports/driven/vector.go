package driven

import (
	"context"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

// VectorStore manages the persisted vector index at one storage location.
type VectorStore interface {
	// Location describes where the index lives, for logs and errors.
	Location() string

	// Exists reports whether a completed index is present.
	// Partially written indexes report false.
	Exists(ctx context.Context) (bool, error)

	// Build replaces any existing index with the given records and returns it opened.
	// Records are kept in the order given; that order breaks search ties.
	Build(ctx context.Context, records []domain.EmbeddingRecord, meta domain.IndexMeta) (VectorIndex, error)

	// Open reattaches to a previously built index without re-embedding.
	// Returns domain.ErrIndexNotFound if Exists would report false.
	Open(ctx context.Context) (VectorIndex, error)

	// Remove deletes the index. Removing a missing index is not an error.
	Remove(ctx context.Context) error
}

// VectorIndex is an opened, read-only set of embedding records.
type VectorIndex interface {
	// Search returns the k records most similar to query, best first.
	// Ties keep insertion order. k larger than Count returns every record.
	// k <= 0 returns domain.ErrInvalidInput.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchHit, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Meta returns the parameters the index was built with.
	Meta() domain.IndexMeta

	// Close releases resources.
	Close() error
}
