package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
	"github.com/custodia-labs/tfask/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineService = (*Pipeline)(nil)

// PipelineDeps are the adapters a Pipeline drives.
type PipelineDeps struct {
	Loader   driven.DocumentLoader
	Splitter driven.PostProcessorPipeline
	Store    driven.VectorStore
	Embedder driven.EmbeddingService
	LLM      driven.LLMService
	Prompts  driven.PromptStore
}

func (d PipelineDeps) validate() error {
	var missing []string
	if d.Loader == nil {
		missing = append(missing, "loader")
	}
	if d.Splitter == nil {
		missing = append(missing, "splitter")
	}
	if d.Store == nil {
		missing = append(missing, "vector store")
	}
	if d.Embedder == nil {
		missing = append(missing, "embedding service")
	}
	if d.LLM == nil {
		missing = append(missing, "llm service")
	}
	if d.Prompts == nil {
		missing = append(missing, "prompt store")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: pipeline is missing %v", domain.ErrInvalidConfig, missing)
	}
	return nil
}

// Pipeline runs ingestion once when no index exists, then answers questions
// against the index.
type Pipeline struct {
	settings    domain.Settings
	deps        PipelineDeps
	indexer     *IndexService
	synthesizer *Synthesizer

	mu        sync.RWMutex
	state     domain.PipelineState
	index     driven.VectorIndex
	retriever *Retriever
}

// NewPipeline creates a pipeline in StateIdle.
func NewPipeline(settings domain.Settings, deps PipelineDeps) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		settings:    settings,
		deps:        deps,
		indexer:     NewIndexService(deps.Store, deps.Embedder, settings.ChunkSize, settings.ChunkOverlap),
		synthesizer: NewSynthesizer(deps.LLM, deps.Prompts),
		state:       domain.StateIdle,
	}, nil
}

// Start evaluates the index guard once. Without a persisted index it ingests
// the source tree; with one it opens it and the loader is never called.
func (p *Pipeline) Start(ctx context.Context) (domain.PipelineState, error) {
	if state := p.State(); state != domain.StateIdle {
		return state, fmt.Errorf("%w: pipeline already started (%s)", domain.ErrInvalidInput, state)
	}

	exists, err := p.indexer.Exists(ctx)
	if err != nil {
		p.setState(domain.StateStopped)
		return domain.StateStopped, fmt.Errorf("check index: %w", err)
	}

	var index driven.VectorIndex
	if exists {
		logger.Info("using existing index at %s", p.indexer.Location())
		index, err = p.indexer.Open(ctx)
		if err != nil {
			p.setState(domain.StateStopped)
			return domain.StateStopped, fmt.Errorf("open index: %w", err)
		}
	} else {
		logger.Info("no index at %s, ingesting %s", p.indexer.Location(), p.settings.SourceDir)
		index, err = p.ingest(ctx)
		if err != nil {
			p.setState(domain.StateStopped)
			return domain.StateStopped, err
		}
	}

	p.serveWith(index)
	return domain.StateServe, nil
}

// Ingest builds the index. With rebuild set the existing index is removed
// first; otherwise an existing index is opened and returned as is.
func (p *Pipeline) Ingest(ctx context.Context, rebuild bool) (domain.IndexMeta, error) {
	if rebuild {
		p.closeIndex()
		if err := p.indexer.Remove(ctx); err != nil {
			return domain.IndexMeta{}, fmt.Errorf("remove index: %w", err)
		}
		logger.Info("removed index at %s", p.indexer.Location())
	}

	exists, err := p.indexer.Exists(ctx)
	if err != nil {
		return domain.IndexMeta{}, fmt.Errorf("check index: %w", err)
	}

	var index driven.VectorIndex
	if exists {
		index, err = p.indexer.Open(ctx)
		if err != nil {
			return domain.IndexMeta{}, fmt.Errorf("open index: %w", err)
		}
	} else {
		index, err = p.ingest(ctx)
		if err != nil {
			p.setState(domain.StateStopped)
			return domain.IndexMeta{}, err
		}
	}

	p.serveWith(index)
	return index.Meta(), nil
}

// ingest runs loader, splitter and index build in sequence. Any failure is fatal.
func (p *Pipeline) ingest(ctx context.Context) (driven.VectorIndex, error) {
	p.setState(domain.StateIngest)

	logger.Section("Ingest")
	defer logger.Timed("ingest")()

	docs, err := p.deps.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	logger.Info("loaded %d documents", len(docs))

	chunks, err := p.deps.Splitter.Split(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("split documents: %w", err)
	}
	logger.Info("split into %d chunks", len(chunks))

	done := logger.Timed("embed and store")
	index, err := p.indexer.Build(ctx, chunks)
	if err != nil {
		return nil, err
	}
	done()
	return index, nil
}

// serveWith swaps in index and enters StateServe.
func (p *Pipeline) serveWith(index driven.VectorIndex) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index != nil && p.index != index {
		if err := p.index.Close(); err != nil {
			logger.Warn("close previous index: %v", err)
		}
	}
	p.index = index
	p.retriever = NewRetriever(p.deps.Embedder, index, p.settings.TopK)
	p.state = domain.StateServe
}

// Retrieve returns the k chunks most relevant to question.
func (p *Pipeline) Retrieve(ctx context.Context, question string, k int) ([]domain.SearchHit, error) {
	retriever, err := p.serving()
	if err != nil {
		return nil, err
	}
	return retriever.Retrieve(ctx, question, k)
}

// Ask answers a single question.
func (p *Pipeline) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	retriever, err := p.serving()
	if err != nil {
		return nil, err
	}

	hits, err := retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return nil, err
	}

	text, err := p.synthesizer.Synthesize(ctx, question, hits)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Question: question,
		Text:     text,
		Sources:  hits,
	}, nil
}

// Serve answers questions from source, streaming when configured.
func (p *Pipeline) Serve(ctx context.Context, source driving.QuestionSource, sink driving.AnswerSink) error {
	if _, err := p.serving(); err != nil {
		return err
	}

	logger.Section("Serve")
	err := serveQuestions(ctx, source, sink, p.answer)
	p.setState(domain.StateStopped)
	return err
}

// answer handles one question inside Serve.
func (p *Pipeline) answer(ctx context.Context, question string, sink driving.AnswerSink) error {
	retriever, err := p.serving()
	if err != nil {
		return err
	}

	hits, err := retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return err
	}
	logger.Debug("retrieved %d chunks for %q", len(hits), question)

	if p.settings.Stream {
		return writeStream(question, p.synthesizer.SynthesizeStream(ctx, question, hits), sink)
	}

	text, err := p.synthesizer.Synthesize(ctx, question, hits)
	if err != nil {
		return err
	}
	return writeWhole(question, text, sink)
}

// serving returns the retriever when the pipeline is in StateServe.
func (p *Pipeline) serving() (*Retriever, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != domain.StateServe || p.retriever == nil {
		return nil, fmt.Errorf("%w: pipeline is %s, not serving", domain.ErrInvalidInput, p.state)
	}
	return p.retriever, nil
}

// State returns the current lifecycle state.
func (p *Pipeline) State() domain.PipelineState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(state domain.PipelineState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

func (p *Pipeline) closeIndex() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index != nil {
		if err := p.index.Close(); err != nil {
			logger.Warn("close index: %v", err)
		}
	}
	p.index = nil
	p.retriever = nil
}

// Close releases the opened index and stops the pipeline.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.index != nil {
		err = p.index.Close()
		p.index = nil
	}
	p.retriever = nil
	p.state = domain.StateStopped
	return err
}
