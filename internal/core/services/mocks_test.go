package services

import (
	"bytes"
	"context"
	"io"
	"iter"
	"os"
	"strings"
	"testing"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/logger"
)

// --- Mock implementations ---

// mockEmbeddingService maps known texts to fixed vectors.
// Unknown texts embed to fallback.
type mockEmbeddingService struct {
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	model    string
	dims     int
	texts    []string
}

func newMockEmbedder() *mockEmbeddingService {
	return &mockEmbeddingService{
		vectors:  map[string][]float32{},
		fallback: []float32{1, 1, 1},
		model:    "mock-embed",
	}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.texts = append(m.texts, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }
func (m *mockEmbeddingService) ModelName() string { return m.model }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService returns a fixed answer, or streams fragments.
type mockLLMService struct {
	answer      string
	fragments   []string
	generateErr error

	// streamErrAfter fails the stream after that many fragments when >= 0.
	streamErrAfter int
	streamErr      error
	prompts        []string
	messages       [][]driven.ChatMessage
}

func newMockLLM() *mockLLMService {
	return &mockLLMService{streamErrAfter: -1}
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.answer, nil
}

func (m *mockLLMService) GenerateStream(
	_ context.Context,
	prompt string,
	_ driven.GenerateOptions,
) iter.Seq2[string, error] {
	m.prompts = append(m.prompts, prompt)
	return m.stream()
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.messages = append(m.messages, messages)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.answer, nil
}

func (m *mockLLMService) ChatStream(
	_ context.Context,
	messages []driven.ChatMessage,
	_ driven.ChatOptions,
) iter.Seq2[string, error] {
	m.messages = append(m.messages, messages)
	return m.stream()
}

func (m *mockLLMService) stream() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if m.generateErr != nil {
			yield("", m.generateErr)
			return
		}
		for i, f := range m.fragments {
			if i == m.streamErrAfter {
				yield("", m.streamErr)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockLoader returns fixed documents and counts calls.
type mockLoader struct {
	docs  []domain.Document
	err   error
	calls int
}

func (m *mockLoader) Load(_ context.Context) ([]domain.Document, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

// mockSplitter turns every document into one chunk per paragraph.
type mockSplitter struct {
	err error
}

func (m *mockSplitter) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i, part := range strings.Split(doc.Content, "\n\n") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         doc.ID + "#" + string(rune('a'+i)),
			DocumentID: doc.ID,
			URI:        doc.URI,
			Content:    part,
			Position:   len(chunks),
		})
	}
	return chunks, nil
}

func (m *mockSplitter) Split(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var all []domain.Chunk
	for i := range docs {
		chunks, _ := m.Process(ctx, &docs[i])
		all = append(all, chunks...)
	}
	if len(all) == 0 {
		return nil, domain.ErrEmptySplitResult
	}
	return all, nil
}

// mockPromptStore serves one template.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.template, nil
}

func (m *mockPromptStore) Reload() {}

// sliceSource yields questions in order, then io.EOF.
type sliceSource struct {
	questions []string
	read      int
}

func (s *sliceSource) ReadQuestion(_ context.Context) (string, error) {
	if s.read >= len(s.questions) {
		return "", io.EOF
	}
	q := s.questions[s.read]
	s.read++
	return q, nil
}

// recordingSink records every answer it receives.
type recordingSink struct {
	questions []string
	answers   []string
	current   strings.Builder
	ends      int
	beginErr  error
}

func (s *recordingSink) BeginAnswer(question string) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	s.questions = append(s.questions, question)
	s.current.Reset()
	return nil
}

func (s *recordingSink) WriteFragment(fragment string) error {
	s.current.WriteString(fragment)
	return nil
}

func (s *recordingSink) EndAnswer() error {
	s.ends++
	s.answers = append(s.answers, s.current.String())
	return nil
}

// captureLog redirects logger output for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return &buf
}

const testTemplate = "Q={question}\nC={context}"

func terraformDocs() []domain.Document {
	return []domain.Document{
		{
			ID:      "vpc",
			URI:     "network/vpc.tf",
			Content: "resource \"aws_vpc\" \"main\" {}\n\nresource \"aws_subnet\" \"a\" {}",
		},
		{
			ID:      "s3",
			URI:     "storage/s3.tf",
			Content: "resource \"aws_s3_bucket\" \"logs\" {}",
		},
	}
}
