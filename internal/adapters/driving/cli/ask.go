package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

var (
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question",
	Long: `Answers one question against the index, building the index first if
none exists. Words are joined, so quoting is optional:
  tfask ask which security groups allow port 22`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSources, "sources", false, "list the chunks the answer is based on")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and sources as JSON")
	rootCmd.AddCommand(askCmd)
}

// answerJSON is the --json output format.
type answerJSON struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Sources  []sourceJSON `json:"sources"`
}

type sourceJSON struct {
	URI      string  `json:"uri"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

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

	answer, err := pipeline.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	if askSources {
		outputSources(cmd, answer.Sources)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := answerJSON{
		Question: answer.Question,
		Answer:   answer.Text,
		Sources:  make([]sourceJSON, len(answer.Sources)),
	}
	for i, hit := range answer.Sources {
		out.Sources[i] = sourceJSON{
			URI:      hit.Chunk.URI,
			Position: hit.Chunk.Position,
			Score:    hit.Score,
			Content:  hit.Chunk.Content,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSources(cmd *cobra.Command, hits []domain.SearchHit) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Sources:")
	for i, hit := range hits {
		// Format: [N] path#chunk (score)
		fmt.Fprintf(out, "  [%d] %s#%d (%.2f)\n", i+1, hit.Chunk.URI, hit.Chunk.Position, hit.Score)
	}
}
