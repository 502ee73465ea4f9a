package driving

import "context"

// QuestionSource supplies questions to an interactive session.
type QuestionSource interface {
	// ReadQuestion blocks until the next question is available.
	// Returns io.EOF when no more questions will arrive.
	ReadQuestion(ctx context.Context) (string, error)
}

// AnswerSink receives answers, whole or in fragments.
// For every answered question BeginAnswer is called once, WriteFragment zero
// or more times, and EndAnswer once. A question that fails before its first
// fragment produces no calls.
type AnswerSink interface {
	// BeginAnswer starts the answer to question.
	BeginAnswer(question string) error

	// WriteFragment appends text to the current answer.
	WriteFragment(fragment string) error

	// EndAnswer completes the current answer.
	EndAnswer() error
}
