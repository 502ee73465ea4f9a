// Package vectormath provides the similarity and ranking functions shared by
// the vector store adapters.
package vectormath

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

// DotProduct computes the dot product of two vectors of equal length.
func DotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Norm computes the L2 norm (magnitude) of a vector.
func Norm(v []float32) float64 {
	return math.Sqrt(DotProduct(v, v))
}

// CosineSimilarity computes cosine similarity between two vectors of equal length.
// Returns 1 for identical directions, 0 for perpendicular, -1 for opposite.
// A zero vector has similarity 0 with everything.
func CosineSimilarity(a, b []float32) float64 {
	normA := Norm(a)
	normB := Norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	return DotProduct(a, b) / (normA * normB)
}

// Scored is the score of the vector at Index in the ranked slice.
type Scored struct {
	Index int
	Score float64
}

// TopK ranks vectors by cosine similarity to query and returns at most k
// entries, best first. Equal scores keep the order of vectors.
// Every vector must have the length of query.
func TopK(query []float32, vectors [][]float32, k int) ([]Scored, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	scored := make([]Scored, 0, len(vectors))
	for i, v := range vectors {
		if len(v) != len(query) {
			return nil, fmt.Errorf("%w: query has %d dimensions, record %d has %d",
				domain.ErrDimensionMismatch, len(query), i, len(v))
		}
		scored = append(scored, Scored{Index: i, Score: CosineSimilarity(query, v)})
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

// Hits converts ranked scores into search hits over chunks, which must be
// indexed in the same order as the vectors passed to TopK.
func Hits(scored []Scored, chunks []domain.Chunk) []domain.SearchHit {
	hits := make([]domain.SearchHit, len(scored))
	for rank, s := range scored {
		hits[rank] = domain.SearchHit{
			Chunk: chunks[s.Index],
			Score: s.Score,
			Rank:  rank,
		}
	}
	return hits
}
