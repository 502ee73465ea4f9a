// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// separators are the natural boundaries a cut prefers, strongest first.
var separators = []string{"\n\n", "\n", " "}

// Processor splits document content into chunks of at most chunkSize
// characters. Consecutive chunks of a document share exactly overlap
// characters. It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't reach chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Lengths are counted in characters (runes), not bytes.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		// Blank content produces no chunks
		return nil, nil
	}

	runes := []rune(doc.Content)
	n := len(runes)

	estimatedChunks := (n / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + p.chunkSize
		if end >= n {
			end = n
		} else {
			end = p.cut(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			URI:        doc.URI,
			Content:    string(runes[start:end]),
			Position:   position,
			Metadata: map[string]any{
				"start_index": start,
			},
		})
		position++

		if end == n {
			break
		}

		// The next window re-reads the last overlap characters.
		start = end - p.overlap
	}

	return chunks, nil
}

// cut returns where the window [start, end) should end. It moves back to
// just after the last separator in the window, trying stronger separators
// first, as long as the chunk keeps at least half the window and stays
// longer than the overlap. Otherwise the window is cut hard at end.
func (p *Processor) cut(runes []rune, start, end int) int {
	minEnd := max(start+p.chunkSize/2, start+p.overlap+1)

	for _, sep := range separators {
		sepRunes := []rune(sep)
		for i := end - len(sepRunes); i+len(sepRunes) >= minEnd && i >= start; i-- {
			if hasPrefixAt(runes, i, sepRunes) {
				return i + len(sepRunes)
			}
		}
	}

	return end
}

// hasPrefixAt reports whether runes[i:] begins with sep.
func hasPrefixAt(runes []rune, i int, sep []rune) bool {
	if i+len(sep) > len(runes) {
		return false
	}
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}
