package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService sends each question straight to the language model.
// Nothing is retrieved and no index is needed.
type ChatService struct {
	llm driven.LLMService
}

// NewChatService creates a chat service.
func NewChatService(llm driven.LLMService) *ChatService {
	return &ChatService{llm: llm}
}

// Serve streams a reply to every question from source.
func (s *ChatService) Serve(ctx context.Context, source driving.QuestionSource, sink driving.AnswerSink) error {
	return serveQuestions(ctx, source, sink, s.answer)
}

func (s *ChatService) answer(ctx context.Context, question string, sink driving.AnswerSink) error {
	messages := []driven.ChatMessage{{Role: "user", Content: question}}

	fragments := func(yield func(string, error) bool) {
		for fragment, err := range s.llm.ChatStream(ctx, messages, driven.ChatOptions{}) {
			if err != nil {
				yield("", fmt.Errorf("%w: %w", domain.ErrGeneration, err))
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
	return writeStream(question, fragments, sink)
}
