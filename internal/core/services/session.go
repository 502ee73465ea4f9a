package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
	"github.com/custodia-labs/tfask/internal/logger"
)

// errSink marks failures writing to the answer sink. These end the session.
var errSink = errors.New("answer sink")

// answerFunc answers one question into sink.
type answerFunc func(ctx context.Context, question string, sink driving.AnswerSink) error

// serveQuestions reads questions until source is exhausted, the exit command
// is entered, or ctx is cancelled. Blank lines are skipped. A failed question
// is logged and the loop moves on; only sink and source failures end it.
func serveQuestions(
	ctx context.Context,
	source driving.QuestionSource,
	sink driving.AnswerSink,
	answer answerFunc,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := source.ReadQuestion(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("question source exhausted")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read question: %w", err)
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if domain.IsExitCommand(question) {
			logger.Debug("exit command received")
			return nil
		}

		if err := answer(ctx, question, sink); err != nil {
			if errors.Is(err, errSink) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("question %q: %v", question, err)
		}
	}
}

// writeStream copies fragments to sink between BeginAnswer and EndAnswer.
// BeginAnswer is deferred until the first fragment so that a request that
// fails outright prints nothing.
func writeStream(question string, fragments func(func(string, error) bool), sink driving.AnswerSink) error {
	begun := false
	for fragment, err := range fragments {
		if err != nil {
			if begun {
				// Finish the partial line before the error is logged.
				_ = sink.EndAnswer()
			}
			return err
		}
		if !begun {
			if err := sink.BeginAnswer(question); err != nil {
				return fmt.Errorf("%w: %w", errSink, err)
			}
			begun = true
		}
		if err := sink.WriteFragment(fragment); err != nil {
			return fmt.Errorf("%w: %w", errSink, err)
		}
	}

	if !begun {
		if err := sink.BeginAnswer(question); err != nil {
			return fmt.Errorf("%w: %w", errSink, err)
		}
	}
	if err := sink.EndAnswer(); err != nil {
		return fmt.Errorf("%w: %w", errSink, err)
	}
	return nil
}

// writeWhole writes a complete answer to sink.
func writeWhole(question, text string, sink driving.AnswerSink) error {
	if err := sink.BeginAnswer(question); err != nil {
		return fmt.Errorf("%w: %w", errSink, err)
	}
	if err := sink.WriteFragment(text); err != nil {
		return fmt.Errorf("%w: %w", errSink, err)
	}
	if err := sink.EndAnswer(); err != nil {
		return fmt.Errorf("%w: %w", errSink, err)
	}
	return nil
}
