package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rebuild bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the index",
	Long: `Loads, splits and embeds the Terraform files and stores the index.
An existing index is kept unless --rebuild is given.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&rebuild, "rebuild", false, "remove the existing index first")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pipeline, closeFn, err := openPipeline(ctx, *settings, pipelineOptions{
		Ephemeral:    ephemeral,
		SkipLLMCheck: true,
	})
	if err != nil {
		return err
	}
	defer closeFn()

	meta, err := pipeline.Ingest(ctx, rebuild)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	location := settings.StoragePath
	if ephemeral {
		location = "memory (discarded on exit)"
	}

	cmd.Printf("Index at %s\n", location)
	cmd.Printf("  Records:    %d\n", meta.Records)
	cmd.Printf("  Model:      %s (%d dimensions)\n", meta.EmbeddingModel, meta.Dimensions)
	cmd.Printf("  Chunking:   size %d, overlap %d\n", meta.ChunkSize, meta.ChunkOverlap)
	if !meta.BuiltAt.IsZero() {
		cmd.Printf("  Built:      %s\n", meta.BuiltAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
