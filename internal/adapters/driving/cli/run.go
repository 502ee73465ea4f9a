package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tfask/internal/adapters/driving/console"
	"github.com/custodia-labs/tfask/internal/connectors/filesystem"
	"github.com/custodia-labs/tfask/internal/logger"
)

var watch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Index the source tree if needed, then answer questions",
	Long: `Opens the index, building it first if none exists, and answers questions
read from standard input until end of input or 'exit'.

Questions are read one per line, so answers can also be scripted:
  printf 'Which VPCs are defined?\nexit\n' | tfask run`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&watch, "watch", false, "warn when source files change while serving")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pipeline, closeFn, err := startPipeline(ctx, *settings, pipelineOptions{Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	defer closeFn()

	if watch {
		stop := watchSource(ctx, settings.SourceDir, settings.Glob)
		defer stop()
	}

	stdinHint(cmd)
	session := newConsole(cmd)
	defer session.Close()
	return pipeline.Serve(ctx, session, session)
}

// watchSource warns once when a matching file under root changes.
// The returned function stops watching.
func watchSource(ctx context.Context, root, pattern string) func() {
	w := filesystem.NewWatcher(root, pattern)

	ctx, cancel := context.WithCancel(ctx)
	changes, err := w.Watch(ctx)
	if err != nil {
		cancel()
		logger.Warn("cannot watch %s: %v", root, err)
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		warned := false
		for change := range changes {
			logger.Debug("source change: %s %s", change.Type, change.RelativePath)
			if warned {
				continue
			}
			warned = true
			logger.Warn("%s was %s; the index is stale. Run 'tfask ingest --rebuild' to pick up changes",
				change.RelativePath, change.Type)
		}
	}()

	return func() {
		cancel()
		if err := w.Close(); err != nil {
			logger.Debug("close watcher: %v", err)
		}
		<-done
	}
}

func newConsole(cmd *cobra.Command) *console.Console {
	return console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.IsTerminal(cmd.InOrStdin()))
}

// stdinHint is printed when a session starts on a terminal.
func stdinHint(cmd *cobra.Command) {
	if console.IsTerminal(cmd.InOrStdin()) {
		fmt.Fprintln(cmd.OutOrStdout(), "Type a question, or 'exit' to quit.")
	}
}
