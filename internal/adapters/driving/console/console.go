// Package console reads questions from and writes answers to a terminal or pipe.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/custodia-labs/tfask/internal/core/ports/driving"
)

// Ensure Console implements the interfaces.
var (
	_ driving.QuestionSource = (*Console)(nil)
	_ driving.AnswerSink     = (*Console)(nil)
)

// Prompt is printed before each question on an interactive terminal.
const Prompt = "Question: "

const answerPrefix = "\nAnswer: "

type line struct {
	text string
	err  error
}

// Console is a line-oriented question source and answer sink.
type Console struct {
	in     io.Reader
	out    io.Writer
	prompt bool

	once      sync.Once
	lines     chan line
	stop      chan struct{}
	stopOnce  sync.Once
	pumpDone  chan struct{}
	exhausted bool
}

// New creates a console over in and out. The prompt is printed only when
// interactive is set.
func New(in io.Reader, out io.Writer, interactive bool) *Console {
	return &Console{
		in:       in,
		out:      out,
		prompt:   interactive,
		stop:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
}

// IsTerminal reports whether r is a file attached to a terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ReadQuestion returns the next input line without its line ending.
// A final line without a newline is returned before io.EOF.
// After Close it always returns io.EOF.
func (c *Console) ReadQuestion(ctx context.Context) (string, error) {
	if c.exhausted || c.closed() {
		return "", io.EOF
	}
	if c.prompt {
		if _, err := io.WriteString(c.out, Prompt); err != nil {
			return "", fmt.Errorf("write prompt: %w", err)
		}
	}

	c.once.Do(c.startReading)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.stop:
		return "", io.EOF
	case l, ok := <-c.lines:
		if !ok {
			c.exhausted = true
			return "", io.EOF
		}
		if l.err != nil {
			c.exhausted = true
			return "", l.err
		}
		return l.text, nil
	}
}

// Close stops the background reader. A read already blocked on the
// underlying reader finishes first, then the reader exits without
// delivering its line. Close is safe to call more than once.
func (c *Console) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *Console) closed() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

// startReading pumps lines from in so that ReadQuestion can honour
// cancellation while the read blocks.
func (c *Console) startReading() {
	c.lines = make(chan line)
	go func() {
		defer close(c.pumpDone)
		defer close(c.lines)
		reader := bufio.NewReader(c.in)
		for {
			text, err := reader.ReadString('\n')
			if text != "" && !c.send(line{text: strings.TrimRight(text, "\r\n")}) {
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					c.send(line{err: fmt.Errorf("read input: %w", err)})
				}
				return
			}
		}
	}()
}

// send hands l to ReadQuestion, giving up once the console is closed.
func (c *Console) send(l line) bool {
	select {
	case c.lines <- l:
		return true
	case <-c.stop:
		return false
	}
}

// BeginAnswer starts an answer block.
func (c *Console) BeginAnswer(_ string) error {
	_, err := io.WriteString(c.out, answerPrefix)
	return err
}

// WriteFragment writes answer text as it arrives.
func (c *Console) WriteFragment(fragment string) error {
	_, err := io.WriteString(c.out, fragment)
	return err
}

// EndAnswer terminates the answer block.
func (c *Console) EndAnswer() error {
	_, err := io.WriteString(c.out, "\n\n")
	return err
}
