package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/tfask/internal/adapters/driven/ai"
	"github.com/custodia-labs/tfask/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tfask/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tfask/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tfask/internal/connectors/filesystem"
	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
	"github.com/custodia-labs/tfask/internal/core/services"
	"github.com/custodia-labs/tfask/internal/normalisers/plaintext"
	"github.com/custodia-labs/tfask/internal/postprocessors"
)

// pipelineOptions select how a pipeline is assembled.
type pipelineOptions struct {
	// Ephemeral keeps the index in memory.
	Ephemeral bool

	// SkipLLMCheck creates the LLM client without pinging it, for commands
	// that never generate.
	SkipLLMCheck bool
}

// Constructors used by the commands. Tests replace them.
var (
	openSettings = defaultOpenSettings
	openPipeline = defaultOpenPipeline
	openChat     = defaultOpenChat
)

func defaultOpenSettings(path string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// defaultOpenPipeline connects to the configured providers and assembles a
// pipeline. The returned close function releases the index and the clients.
func defaultOpenPipeline(
	ctx context.Context,
	settings domain.Settings,
	opts pipelineOptions,
) (driving.PipelineService, func() error, error) {
	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, nil, err
	}
	if embedder == nil {
		return nil, nil, fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrInvalidConfig, settings.Embedding.Provider)
	}

	var llm driven.LLMService
	if opts.SkipLLMCheck {
		llm, err = ai.CreateLLMService(&settings.LLM)
	} else {
		llm, err = ai.CreateAndValidateLLMService(ctx, &settings.LLM)
	}
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}
	if llm == nil {
		embedder.Close()
		return nil, nil, fmt.Errorf("%w: llm provider %s is not configured",
			domain.ErrInvalidConfig, settings.LLM.Provider)
	}
	clients := &ai.InitResult{EmbeddingService: embedder, LLMService: llm}

	splitter, err := postprocessors.NewDefaultPipeline(settings)
	if err != nil {
		clients.Close()
		return nil, nil, err
	}

	var store driven.VectorStore = sqlite.NewStore(settings.StoragePath)
	if opts.Ephemeral {
		store = memory.NewVectorStore()
	}

	pipeline, err := services.NewPipeline(settings, services.PipelineDeps{
		Loader:   filesystem.NewLoader(settings.SourceDir, settings.Glob, plaintext.New()),
		Splitter: splitter,
		Store:    store,
		Embedder: embedder,
		LLM:      llm,
		Prompts:  file.NewPromptStore(settings.PromptDir),
	})
	if err != nil {
		clients.Close()
		return nil, nil, err
	}

	closeFn := func() error {
		return errors.Join(pipeline.Close(), clients.Close())
	}
	return pipeline, closeFn, nil
}

// defaultOpenChat connects to the configured LLM for a chat-only session.
func defaultOpenChat(ctx context.Context, settings domain.Settings) (driving.ChatService, func() error, error) {
	llm, err := ai.CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		return nil, nil, err
	}
	if llm == nil {
		return nil, nil, fmt.Errorf("%w: llm provider %s is not configured",
			domain.ErrInvalidConfig, settings.LLM.Provider)
	}
	return services.NewChatService(llm), llm.Close, nil
}

// startPipeline opens a pipeline and runs its start-up guard.
func startPipeline(
	ctx context.Context,
	settings domain.Settings,
	opts pipelineOptions,
) (driving.PipelineService, func() error, error) {
	pipeline, closeFn, err := openPipeline(ctx, settings, opts)
	if err != nil {
		return nil, nil, err
	}

	if _, err := pipeline.Start(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return pipeline, closeFn, nil
}
