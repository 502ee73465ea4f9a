package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

func hitsFor(contents ...string) []domain.SearchHit {
	hits := make([]domain.SearchHit, len(contents))
	for i, c := range contents {
		hits[i] = domain.SearchHit{Chunk: domain.Chunk{Content: c}, Rank: i}
	}
	return hits
}

func TestRenderPrompt(t *testing.T) {
	got := RenderPrompt(testTemplate, "Which region?", "provider \"aws\" {}")
	assert.Equal(t, "Q=Which region?\nC=provider \"aws\" {}", got)
}

func TestRenderPrompt_SinglePass(t *testing.T) {
	// Placeholders inside the substituted text are left alone.
	got := RenderPrompt(testTemplate, "what is {context}?", "uses {question}")
	assert.Equal(t, "Q=what is {context}?\nC=uses {question}", got)
}

func TestRenderPrompt_RepeatedPlaceholders(t *testing.T) {
	got := RenderPrompt("{question} / {question}", "q", "c")
	assert.Equal(t, "q / q", got)
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, "", FormatContext(nil))
	assert.Equal(t, "a", FormatContext(hitsFor("a")))
	assert.Equal(t, "a\n\nb\n\nc", FormatContext(hitsFor("a", "b", "c")))
}

func TestSynthesizer_Synthesize(t *testing.T) {
	llm := newMockLLM()
	llm.answer = "  The VPC is named main.\n"
	s := NewSynthesizer(llm, &mockPromptStore{template: testTemplate})

	answer, err := s.Synthesize(context.Background(), "Which VPC?", hitsFor("vpc", "subnet"))
	require.NoError(t, err)
	assert.Equal(t, "  The VPC is named main.\n", answer, "model output is returned unmodified")

	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "Q=Which VPC?\nC=vpc\n\nsubnet", llm.prompts[0])
}

func TestSynthesizer_Synthesize_Error(t *testing.T) {
	llm := newMockLLM()
	llm.generateErr = errors.New("context deadline exceeded")
	s := NewSynthesizer(llm, &mockPromptStore{template: testTemplate})

	_, err := s.Synthesize(context.Background(), "q", nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestSynthesizer_Synthesize_PromptError(t *testing.T) {
	llm := newMockLLM()
	s := NewSynthesizer(llm, &mockPromptStore{err: errors.New("permission denied")})

	_, err := s.Synthesize(context.Background(), "q", nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Empty(t, llm.prompts, "the model is not called without a prompt")
}

func TestSynthesizer_SynthesizeStream_Concatenates(t *testing.T) {
	llm := newMockLLM()
	llm.fragments = []string{"The ", "VPC ", "is ", "main."}
	s := NewSynthesizer(llm, &mockPromptStore{template: testTemplate})

	var b strings.Builder
	for fragment, err := range s.SynthesizeStream(context.Background(), "q", hitsFor("vpc")) {
		require.NoError(t, err)
		b.WriteString(fragment)
	}
	assert.Equal(t, "The VPC is main.", b.String())
}

func TestSynthesizer_SynthesizeStream_Error(t *testing.T) {
	llm := newMockLLM()
	llm.fragments = []string{"The ", "VPC"}
	llm.streamErrAfter = 1
	llm.streamErr = errors.New("connection reset")
	s := NewSynthesizer(llm, &mockPromptStore{template: testTemplate})

	var fragments []string
	var streamErr error
	for fragment, err := range s.SynthesizeStream(context.Background(), "q", nil) {
		if err != nil {
			streamErr = err
			break
		}
		fragments = append(fragments, fragment)
	}
	assert.Equal(t, []string{"The "}, fragments)
	assert.ErrorIs(t, streamErr, domain.ErrGeneration)
}
