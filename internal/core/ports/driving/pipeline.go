package driving

import (
	"context"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

// PipelineService drives the ingest-then-serve lifecycle.
type PipelineService interface {
	// Start evaluates the index guard once. Without a persisted index it runs
	// ingestion, otherwise it opens the existing index. Either way the
	// pipeline ends in StateServe on success. Ingestion errors are fatal.
	Start(ctx context.Context) (domain.PipelineState, error)

	// Ingest loads, splits and indexes the source tree.
	// With rebuild set, an existing index is removed first.
	Ingest(ctx context.Context, rebuild bool) (domain.IndexMeta, error)

	// Ask answers a single question. Requires StateServe.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Retrieve returns the k chunks most relevant to question. Requires StateServe.
	Retrieve(ctx context.Context, question string, k int) ([]domain.SearchHit, error)

	// Serve answers questions from source until it is exhausted, the exit
	// command is entered, or ctx is cancelled. Per-question failures are
	// logged and do not end the session.
	Serve(ctx context.Context, source QuestionSource, sink AnswerSink) error

	// State returns the current lifecycle state.
	State() domain.PipelineState

	// Close releases the opened index.
	Close() error
}

// ChatService answers questions directly from the language model, without retrieval.
type ChatService interface {
	// Serve streams an answer for every question from source until it is
	// exhausted, the exit command is entered, or ctx is cancelled.
	Serve(ctx context.Context, source QuestionSource, sink AnswerSink) error
}
