package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/vectormath"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact, in-memory vector index. Search scores every record.
type Index struct {
	chunks  []domain.Chunk
	vectors [][]float32
	meta    domain.IndexMeta
}

// NewIndex creates an index over records, keeping their order.
// All vectors must be non-empty and of equal length.
func NewIndex(records []domain.EmbeddingRecord, meta domain.IndexMeta) (*Index, error) {
	dims, err := ValidateRecords(records)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		chunks:  make([]domain.Chunk, len(records)),
		vectors: make([][]float32, len(records)),
		meta:    meta,
	}
	for i, r := range records {
		idx.chunks[i] = r.Chunk
		idx.vectors[i] = slices.Clone(r.Vector)
	}
	idx.meta.Dimensions = dims
	idx.meta.Records = len(records)

	return idx, nil
}

// Search returns the k records most similar to query, best first.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]domain.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored, err := vectormath.TopK(query, i.vectors, k)
	if err != nil {
		return nil, err
	}
	return vectormath.Hits(scored, i.chunks), nil
}

// Count returns the number of stored records.
func (i *Index) Count(_ context.Context) (int, error) {
	return len(i.chunks), nil
}

// Meta returns the parameters the index was built with.
func (i *Index) Meta() domain.IndexMeta {
	return i.meta
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// ValidateRecords checks that records is non-empty and every vector has the
// same non-zero length, and returns that length.
func ValidateRecords(records []domain.EmbeddingRecord) (int, error) {
	if len(records) == 0 {
		return 0, domain.ErrEmptyIndex
	}

	dims := len(records[0].Vector)
	if dims == 0 {
		return 0, fmt.Errorf("%w: record %s has an empty vector", domain.ErrInvalidInput, records[0].Chunk.ID)
	}
	for _, r := range records[1:] {
		if len(r.Vector) != dims {
			return 0, fmt.Errorf("%w: record %s has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, r.Chunk.ID, len(r.Vector), dims)
		}
	}
	return dims, nil
}
