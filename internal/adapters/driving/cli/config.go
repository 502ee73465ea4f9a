package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Show the effective configuration, change stored values, and check that
the configured model providers are reachable.

Values come from the config file (tfask.toml by default) over built-in
defaults; flags given on the command line override both.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a configuration value",
	Long: `Store a value in the config file. Keys use dots for tables, e.g.

  tfask config set top_k 6
  tfask config set llm.provider openai
  tfask config set llm.api_key          (prompts without echo)

Run 'tfask config keys' for the full list.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the model providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

// configView is the TOML shape of the effective settings. It mirrors the
// config file keys.
type configView struct {
	SourceDir    string        `toml:"source_dir"`
	Glob         string        `toml:"glob"`
	StoragePath  string        `toml:"storage_path"`
	ChunkSize    int           `toml:"chunk_size"`
	ChunkOverlap int           `toml:"chunk_overlap"`
	TopK         int           `toml:"top_k"`
	Stream       bool          `toml:"stream"`
	PromptDir    string        `toml:"prompt_dir,omitempty"`
	Embedding    embeddingView `toml:"embedding"`
	LLM          llmView       `toml:"llm"`
}

type embeddingView struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key,omitempty"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

type llmView struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func newConfigView(s *domain.Settings) configView {
	return configView{
		SourceDir:    s.SourceDir,
		Glob:         s.Glob,
		StoragePath:  s.StoragePath,
		ChunkSize:    s.ChunkSize,
		ChunkOverlap: s.ChunkOverlap,
		TopK:         s.TopK,
		Stream:       s.Stream,
		PromptDir:    s.PromptDir,
		Embedding: embeddingView{
			Provider:          s.Embedding.Provider.String(),
			Model:             s.Embedding.Model,
			BaseURL:           s.Embedding.BaseURL,
			APIKey:            domain.MaskAPIKey(s.Embedding.APIKey),
			RequestsPerSecond: s.Embedding.RequestsPerSecond,
		},
		LLM: llmView{
			Provider:       s.LLM.Provider.String(),
			Model:          s.LLM.Model,
			BaseURL:        s.LLM.BaseURL,
			APIKey:         domain.MaskAPIKey(s.LLM.APIKey),
			TimeoutSeconds: int(s.LLM.Timeout.Seconds()),
		},
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := openSettings(configPath)
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	applyFlags(cmd, settings)

	data, err := toml.Marshal(newConfigView(settings))
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# effective configuration (file: %s)\n", configPath)
	fmt.Fprint(out, string(data))

	if err := settings.Validate(); err != nil {
		cmd.Printf("\nWarning: %v\n", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := openSettings(configPath)
	if err != nil {
		return err
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("Enter %s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
		if value == "" {
			return errors.New("no value entered")
		}
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	if err := svc.Set(key, value); err != nil {
		return err
	}

	if isSecretKey(key) {
		value = domain.MaskAPIKey(value)
	}
	cmd.Printf("Set %s = %s in %s\n", key, value, configPath)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	svc, err := openSettings(configPath)
	if err != nil {
		return err
	}
	for _, key := range svc.Keys() {
		fmt.Fprintln(cmd.OutOrStdout(), key)
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	svc, err := openSettings(configPath)
	if err != nil {
		return err
	}

	if err := svc.Validate(); err != nil {
		cmd.Printf("Settings: FAILED: %v\n", err)
		return err
	}
	cmd.Println("Settings: OK")

	var failed []error

	cmd.Print("Embedding provider... ")
	if err := svc.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = append(failed, err)
	} else {
		cmd.Println("OK")
	}

	cmd.Print("LLM provider... ")
	if err := svc.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = append(failed, err)
	} else {
		cmd.Println("OK")
	}

	if len(failed) > 0 {
		return fmt.Errorf("configuration check failed: %w", errors.Join(failed...))
	}
	return nil
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
