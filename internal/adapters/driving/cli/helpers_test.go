package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/tfask/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
	"github.com/custodia-labs/tfask/internal/core/services"
)

// mockPipeline answers every question with "answer to <question>".
type mockPipeline struct {
	startErr  error
	ingestErr error
	askErr    error
	meta      domain.IndexMeta
	sources   []domain.SearchHit

	started  bool
	rebuild  bool
	asked    []string
	closed   bool
	serveErr error
}

func (m *mockPipeline) Start(_ context.Context) (domain.PipelineState, error) {
	if m.startErr != nil {
		return domain.StateStopped, m.startErr
	}
	m.started = true
	return domain.StateServe, nil
}

func (m *mockPipeline) Ingest(_ context.Context, rebuild bool) (domain.IndexMeta, error) {
	m.rebuild = rebuild
	return m.meta, m.ingestErr
}

func (m *mockPipeline) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if m.askErr != nil {
		return nil, m.askErr
	}
	return &domain.Answer{Question: question, Text: "answer to " + question, Sources: m.sources}, nil
}

func (m *mockPipeline) Retrieve(_ context.Context, _ string, _ int) ([]domain.SearchHit, error) {
	return m.sources, nil
}

func (m *mockPipeline) Serve(ctx context.Context, source driving.QuestionSource, sink driving.AnswerSink) error {
	if m.serveErr != nil {
		return m.serveErr
	}
	for {
		q, err := source.ReadQuestion(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if domain.IsExitCommand(q) {
			return nil
		}
		m.asked = append(m.asked, q)
		_ = sink.BeginAnswer(q)
		_ = sink.WriteFragment("answer to " + q)
		_ = sink.EndAnswer()
	}
}

func (m *mockPipeline) State() domain.PipelineState {
	if m.started {
		return domain.StateServe
	}
	return domain.StateIdle
}

func (m *mockPipeline) Close() error {
	m.closed = true
	return nil
}

// mockChat replies "chat: <question>" to every question.
type mockChat struct{}

func (mockChat) Serve(ctx context.Context, source driving.QuestionSource, sink driving.AnswerSink) error {
	for {
		q, err := source.ReadQuestion(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		_ = sink.BeginAnswer(q)
		_ = sink.WriteFragment("chat: " + q)
		_ = sink.EndAnswer()
	}
}

// mockValidator stands in for provider pings.
type mockValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return m.embedErr }

func (m *mockValidator) ValidateLLM(_ *domain.LLMSettings) error { return m.llmErr }

// testEnv holds what the stubbed constructors received.
type testEnv struct {
	settings  *services.SettingsService
	validator *mockValidator
	pipeline  *mockPipeline
	openErr   error

	gotSettings domain.Settings
	gotOptions  pipelineOptions
	opened      int
	closed      int
}

// setupTestServices replaces the command constructors with in-memory
// stand-ins configured from values.
func setupTestServices(t *testing.T, values map[string]any) *testEnv {
	t.Helper()

	env := &testEnv{
		validator: &mockValidator{},
		pipeline:  &mockPipeline{},
	}
	env.settings = services.NewSettingsService(memory.NewConfigStoreFrom(values), env.validator)

	origSettings, origPipeline, origChat := openSettings, openPipeline, openChat
	openSettings = func(string) (driving.SettingsService, error) {
		return env.settings, nil
	}
	openPipeline = func(
		_ context.Context,
		settings domain.Settings,
		opts pipelineOptions,
	) (driving.PipelineService, func() error, error) {
		env.opened++
		env.gotSettings = settings
		env.gotOptions = opts
		if env.openErr != nil {
			return nil, nil, env.openErr
		}
		return env.pipeline, func() error { env.closed++; return env.pipeline.Close() }, nil
	}
	openChat = func(_ context.Context, settings domain.Settings) (driving.ChatService, func() error, error) {
		env.gotSettings = settings
		return mockChat{}, func() error { return nil }, nil
	}

	t.Cleanup(func() {
		openSettings, openPipeline, openChat = origSettings, origPipeline, origChat
	})
	return env
}

// execute runs rootCmd with args and input, returning everything written.
// Flags are reset afterwards because cobra keeps them between runs.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
