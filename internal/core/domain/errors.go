package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors, which are wrapped by them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates settings that cannot produce a working pipeline.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedType indicates an unknown provider or processor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrNoDocumentsFound indicates the loader matched zero files.
	ErrNoDocumentsFound = errors.New("no documents found in the specified folder")

	// ErrEmptySplitResult indicates the chunker produced zero chunks.
	ErrEmptySplitResult = errors.New("failed to split the documents into chunks")

	// ErrEmptyIndex indicates zero records were stored after embedding.
	ErrEmptyIndex = errors.New("failed to store the documents in the vector store")

	// ErrIndexNotFound indicates no valid index exists at the storage location.
	ErrIndexNotFound = errors.New("index not found")

	// Model Errors.

	// ErrEmbedding indicates the embedding service call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the language model call failed or timed out.
	ErrGeneration = errors.New("generation failed")

	// ErrDimensionMismatch indicates a query vector and the indexed vectors differ in length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service could not be reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// IsIngestFatal reports whether err aborts ingestion.
// These errors are never retried; the process exits with them.
func IsIngestFatal(err error) bool {
	return errors.Is(err, ErrNoDocumentsFound) ||
		errors.Is(err, ErrEmptySplitResult) ||
		errors.Is(err, ErrEmptyIndex) ||
		errors.Is(err, ErrIndexNotFound)
}
