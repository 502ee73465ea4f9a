package services

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
)

// Template placeholders.
const (
	placeholderQuestion = "{question}"
	placeholderContext  = "{context}"
)

// contextSeparator joins retrieved chunks.
const contextSeparator = "\n\n"

// Synthesizer answers a question from retrieved chunks with a language model.
type Synthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewSynthesizer creates a synthesizer using the rag_answer prompt from prompts.
func NewSynthesizer(llm driven.LLMService, prompts driven.PromptStore) *Synthesizer {
	return &Synthesizer{
		llm:     llm,
		prompts: prompts,
	}
}

// Synthesize returns the model's answer, unmodified.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, hits []domain.SearchHit) (string, error) {
	prompt, err := s.Prompt(question, hits)
	if err != nil {
		return "", err
	}

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return answer, nil
}

// SynthesizeStream yields the answer as it is generated. Concatenating the
// fragments gives the same text as Synthesize.
func (s *Synthesizer) SynthesizeStream(
	ctx context.Context,
	question string,
	hits []domain.SearchHit,
) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		prompt, err := s.Prompt(question, hits)
		if err != nil {
			yield("", err)
			return
		}

		for fragment, err := range s.llm.GenerateStream(ctx, prompt, driven.GenerateOptions{}) {
			if err != nil {
				yield("", fmt.Errorf("%w: %w", domain.ErrGeneration, err))
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// Prompt renders the answer template for question and hits.
func (s *Synthesizer) Prompt(question string, hits []domain.SearchHit) (string, error) {
	template, err := s.prompts.Load(driven.PromptRAGAnswer)
	if err != nil {
		return "", fmt.Errorf("%w: load prompt: %w", domain.ErrGeneration, err)
	}
	return RenderPrompt(template, question, FormatContext(hits)), nil
}

// FormatContext joins chunk contents in the given order.
func FormatContext(hits []domain.SearchHit) string {
	parts := make([]string, len(hits))
	for i, hit := range hits {
		parts[i] = hit.Chunk.Content
	}
	return strings.Join(parts, contextSeparator)
}

// RenderPrompt substitutes both placeholders in a single pass, so text in the
// question is never expanded.
func RenderPrompt(template, question, retrieved string) string {
	return strings.NewReplacer(
		placeholderQuestion, question,
		placeholderContext, retrieved,
	).Replace(template)
}
