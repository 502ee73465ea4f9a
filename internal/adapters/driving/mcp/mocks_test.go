package mcp

import (
	"context"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
)

// mockPipelineService is a mock implementation of driving.PipelineService.
type mockPipelineService struct {
	answer *domain.Answer
	hits   []domain.SearchHit
	state  domain.PipelineState
	err    error

	question string
	limit    int
}

func (m *mockPipelineService) Start(_ context.Context) (domain.PipelineState, error) {
	return m.state, m.err
}

func (m *mockPipelineService) Ingest(_ context.Context, _ bool) (domain.IndexMeta, error) {
	return domain.IndexMeta{}, m.err
}

func (m *mockPipelineService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockPipelineService) Retrieve(_ context.Context, question string, k int) ([]domain.SearchHit, error) {
	m.question = question
	m.limit = k
	return m.hits, m.err
}

func (m *mockPipelineService) Serve(_ context.Context, _ driving.QuestionSource, _ driving.AnswerSink) error {
	return m.err
}

func (m *mockPipelineService) State() domain.PipelineState {
	return m.state
}

func (m *mockPipelineService) Close() error {
	return nil
}
