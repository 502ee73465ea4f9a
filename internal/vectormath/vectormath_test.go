package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expected: 1},
		{name: "scaled", a: []float32{1, 0}, b: []float32{5, 0}, expected: 1},
		{name: "perpendicular", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0},
		{name: "opposite", a: []float32{1, 1}, b: []float32{-1, -1}, expected: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5.0, Norm([]float32{3, 4}), 1e-9)
	assert.InDelta(t, math.Sqrt(3), Norm([]float32{1, 1, 1}), 1e-6)
}

func TestTopK_OrdersBestFirst(t *testing.T) {
	vectors := [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
	}

	scored, err := TopK([]float32{1, 0}, vectors, 3)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, 1, scored[0].Index)
	assert.Equal(t, 2, scored[1].Index)
	assert.Equal(t, 0, scored[2].Index)
}

func TestTopK_TiesKeepInsertionOrder(t *testing.T) {
	vectors := [][]float32{
		{0, 1},
		{2, 0},
		{1, 0},
		{3, 0},
	}

	scored, err := TopK([]float32{1, 0}, vectors, 4)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 0}, []int{scored[0].Index, scored[1].Index, scored[2].Index, scored[3].Index})
}

func TestTopK_KLargerThanRecords(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}}

	scored, err := TopK([]float32{1, 0}, vectors, 10)
	require.NoError(t, err)
	assert.Len(t, scored, 2)
}

func TestTopK_Truncates(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}

	scored, err := TopK([]float32{1, 0}, vectors, 1)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, 0, scored[0].Index)
}

func TestTopK_InvalidK(t *testing.T) {
	_, err := TopK([]float32{1}, [][]float32{{1}}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTopK_DimensionMismatch(t *testing.T) {
	_, err := TopK([]float32{1, 0}, [][]float32{{1, 0, 0}}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestTopK_Empty(t *testing.T) {
	scored, err := TopK([]float32{1, 0}, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestHits(t *testing.T) {
	chunks := []domain.Chunk{{ID: "a"}, {ID: "b"}}
	hits := Hits([]Scored{{Index: 1, Score: 0.9}, {Index: 0, Score: 0.1}}, chunks)

	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].Chunk.ID)
	assert.Equal(t, 0, hits[0].Rank)
	assert.Equal(t, "a", hits[1].Chunk.ID)
	assert.Equal(t, 1, hits[1].Rank)
	assert.InDelta(t, 0.9, hits[0].Score, 1e-9)
}
