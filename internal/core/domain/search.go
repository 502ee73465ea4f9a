package domain

import "time"

// IndexMeta describes the parameters an index was built with.
// It is persisted alongside the records and checked when an index is reopened.
type IndexMeta struct {
	// EmbeddingModel is the model that produced the vectors.
	EmbeddingModel string

	// Dimensions is the length of every stored vector.
	Dimensions int

	// ChunkSize is the chunk size used at build time.
	ChunkSize int

	// ChunkOverlap is the chunk overlap used at build time.
	ChunkOverlap int

	// Records is the number of stored records.
	Records int

	// BuiltAt is when the build completed.
	BuiltAt time.Time
}

// SearchHit is a single retrieval result.
type SearchHit struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query, higher is better.
	Score float64

	// Rank is the 0-based position in the result list.
	Rank int
}

// Answer is the synthesized response to a question.
type Answer struct {
	// Question is the question as asked.
	Question string

	// Text is the language model output, unmodified.
	Text string

	// Sources are the chunks the answer was grounded on, best first.
	Sources []SearchHit
}
