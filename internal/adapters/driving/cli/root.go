// Package cli provides the tfask command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tfask/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Persistent flag values.
var (
	configPath   string
	verbose      bool
	sourceDir    string
	glob         string
	storagePath  string
	modelName    string
	baseURL      string
	chunkSize    int
	chunkOverlap int
	topK         int
	stream       bool
	ephemeral    bool
)

var rootCmd = &cobra.Command{
	Use:   "tfask",
	Short: "Ask questions about a Terraform codebase",
	Long: `tfask indexes the Terraform files under a directory and answers
questions about them with a local or hosted language model.

The first run loads, splits and embeds every matching file and stores the
index on disk. Later runs reuse the index without reading the files again.
Run 'tfask ingest --rebuild' after the code changes.

Type a question at the prompt, or 'exit' to quit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", file.DefaultConfigFile, "path to the TOML config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print progress and debug output")
	flags.StringVar(&sourceDir, "source-dir", "", "directory holding the Terraform files")
	flags.StringVar(&glob, "glob", "", "file pattern relative to the source directory (supports **)")
	flags.StringVar(&storagePath, "storage-path", "", "directory holding the index")
	flags.StringVar(&modelName, "model", "", "model used for both embeddings and answers")
	flags.StringVar(&baseURL, "base-url", "", "API base URL for both providers")
	flags.IntVar(&chunkSize, "chunk-size", 0, "maximum characters per chunk")
	flags.IntVar(&chunkOverlap, "chunk-overlap", 0, "characters shared by consecutive chunks")
	flags.IntVar(&topK, "top-k", 0, "chunks retrieved per question")
	flags.BoolVar(&stream, "stream", false, "print answers as they are generated")
	flags.BoolVar(&ephemeral, "ephemeral", false, "keep the index in memory and never touch disk")

	rootCmd.Flags().BoolVar(&watch, "watch", false, "warn when source files change while serving")
}

// Execute runs the root command. Cancelling ctx, e.g. on Ctrl-C, is a clean exit.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadSettings reads the config file and applies flags set on the command line.
func loadSettings(cmd *cobra.Command) (*domain.Settings, error) {
	svc, err := openSettings(configPath)
	if err != nil {
		return nil, err
	}

	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	applyFlags(cmd, settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyFlags overrides settings with flags given explicitly.
func applyFlags(cmd *cobra.Command, s *domain.Settings) {
	changed := cmd.Flags().Changed

	if changed("source-dir") {
		s.SourceDir = sourceDir
	}
	if changed("glob") {
		s.Glob = glob
	}
	if changed("storage-path") {
		s.StoragePath = storagePath
	}
	if changed("model") {
		s.Embedding.Model = modelName
		s.LLM.Model = modelName
	}
	if changed("base-url") {
		s.Embedding.BaseURL = baseURL
		s.LLM.BaseURL = baseURL
	}
	if changed("chunk-size") {
		s.ChunkSize = chunkSize
	}
	if changed("chunk-overlap") {
		s.ChunkOverlap = chunkOverlap
	}
	if changed("top-k") {
		s.TopK = topK
	}
	if changed("stream") {
		s.Stream = stream
	}
}
