// Package domain defines the core entities of the tfask pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Bytes read from a source file
//   - Document: A loaded source file with provenance
//   - Chunk: A bounded slice of a document
//   - EmbeddingRecord: A chunk paired with its vector
//   - IndexMeta: Build parameters persisted with an index
//   - Settings: Effective configuration for a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
