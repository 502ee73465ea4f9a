package domain

import "strings"

// PipelineState is the lifecycle state of the orchestrator.
type PipelineState string

// Pipeline states.
const (
	// StateIdle is the state before Start.
	StateIdle PipelineState = "idle"

	// StateIngest is active while documents are loaded, split and indexed.
	StateIngest PipelineState = "ingest"

	// StateServe is active while questions are answered against an open index.
	StateServe PipelineState = "serve"

	// StateStopped is terminal: the session ended or ingestion failed.
	StateStopped PipelineState = "stopped"
)

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}

// ExitCommand ends an interactive session when entered as a question.
const ExitCommand = "exit"

// IsExitCommand reports whether input is the exit command, ignoring case and
// surrounding whitespace.
func IsExitCommand(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), ExitCommand)
}
