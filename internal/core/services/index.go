package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/logger"
)

// progressEvery controls how often embedding progress is logged.
const progressEvery = 50

// IndexService embeds chunks and persists them through a VectorStore.
type IndexService struct {
	store        driven.VectorStore
	embedder     driven.EmbeddingService
	chunkSize    int
	chunkOverlap int
}

// NewIndexService creates an index service. chunkSize and chunkOverlap are
// recorded with every build so that a later Open can detect drift.
func NewIndexService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	chunkSize, chunkOverlap int,
) *IndexService {
	return &IndexService{
		store:        store,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Exists reports whether a completed index is present.
func (s *IndexService) Exists(ctx context.Context) (bool, error) {
	return s.store.Exists(ctx)
}

// Remove deletes the persisted index.
func (s *IndexService) Remove(ctx context.Context) error {
	return s.store.Remove(ctx)
}

// Location returns where the index is stored.
func (s *IndexService) Location() string {
	return s.store.Location()
}

// Build embeds every chunk, one call per chunk in order, and persists the records.
func (s *IndexService) Build(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	logger.Info("embedding %d chunks with %s", len(chunks), s.embedder.ModelName())

	records := make([]domain.EmbeddingRecord, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: chunk %d of %s: %w", domain.ErrEmbedding, chunk.Position, chunk.URI, err)
		}
		records = append(records, domain.EmbeddingRecord{Chunk: chunk, Vector: vector})

		if (i+1)%progressEvery == 0 {
			logger.Debug("embedded %d/%d chunks", i+1, len(chunks))
		}
	}

	meta := domain.IndexMeta{
		EmbeddingModel: s.embedder.ModelName(),
		ChunkSize:      s.chunkSize,
		ChunkOverlap:   s.chunkOverlap,
	}

	index, err := s.store.Build(ctx, records, meta)
	if err != nil {
		return nil, fmt.Errorf("build index at %s: %w", s.store.Location(), err)
	}

	count, err := index.Count(ctx)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("count index records: %w", err)
	}
	if count == 0 {
		index.Close()
		return nil, domain.ErrEmptyIndex
	}

	logger.Info("stored %d records in %s", count, s.store.Location())
	return index, nil
}

// Open reattaches to a persisted index without re-embedding.
// Differences between the stored build parameters and the current ones are
// logged as warnings.
func (s *IndexService) Open(ctx context.Context) (driven.VectorIndex, error) {
	index, err := s.store.Open(ctx)
	if err != nil {
		return nil, err
	}

	meta := index.Meta()
	if meta.EmbeddingModel != "" && meta.EmbeddingModel != s.embedder.ModelName() {
		logger.Warn("index at %s was built with embedding model %q but %q is configured; "+
			"run 'tfask ingest --rebuild' if answers look wrong",
			s.store.Location(), meta.EmbeddingModel, s.embedder.ModelName())
	}
	if dims := s.embedder.Dimensions(); dims > 0 && meta.Dimensions > 0 && dims != meta.Dimensions {
		logger.Warn("index at %s has %d dimensions but the embedding model produces %d",
			s.store.Location(), meta.Dimensions, dims)
	}
	if meta.ChunkSize != s.chunkSize || meta.ChunkOverlap != s.chunkOverlap {
		logger.Warn("index at %s was chunked with size %d overlap %d, settings say size %d overlap %d",
			s.store.Location(), meta.ChunkSize, meta.ChunkOverlap, s.chunkSize, s.chunkOverlap)
	}

	logger.Debug("opened index %s with %d records", s.store.Location(), meta.Records)
	return index, nil
}
