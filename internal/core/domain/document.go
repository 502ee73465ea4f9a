package domain

// Document represents a loaded source file.
// It is immutable once produced by the loader.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the provenance of the document, the path of the source file.
	URI string

	// Title is the human-readable title derived from the file name.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}

// Chunk represents a bounded slice of a document's content.
// Chunks are the unit of embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent document.
	DocumentID string

	// URI is the provenance inherited from the parent document.
	URI string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal of this chunk within its document, starting at 0.
	Position int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// EmbeddingRecord pairs a chunk with its embedding vector.
type EmbeddingRecord struct {
	// Chunk is the embedded chunk.
	Chunk Chunk

	// Vector is the embedding of the chunk content.
	Vector []float32
}
