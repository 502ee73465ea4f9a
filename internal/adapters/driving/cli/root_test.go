package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
	"github.com/custodia-labs/tfask/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "tfask", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	for _, name := range []string{"run", "ingest", "ask", "chat", "config", "mcp", "version"} {
		assert.Contains(t, commandNames, name)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{
		"config", "verbose", "source-dir", "glob", "storage-path", "model", "base-url",
		"chunk-size", "chunk-overlap", "top-k", "stream", "ephemeral",
	} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "v", flags.Lookup("verbose").Shorthand)
}

func TestRootCmd_RunsSession(t *testing.T) {
	env := setupTestServices(t, nil)

	out, err := execute(t, "which vpc?\nexit\n")
	require.NoError(t, err)

	assert.True(t, env.pipeline.started)
	assert.Equal(t, []string{"which vpc?"}, env.pipeline.asked)
	assert.Contains(t, out, "\nAnswer: answer to which vpc?\n\n")
}

func TestRootCmd_FlagsOverrideSettings(t *testing.T) {
	env := setupTestServices(t, map[string]any{
		"top_k":     3,
		"llm.model": "from-file",
	})

	_, err := execute(t, "", "run",
		"--source-dir", "infra",
		"--glob", "modules/**/*.tf",
		"--storage-path", "/tmp/idx",
		"--model", "nomic",
		"--base-url", "http://gpu:11434",
		"--chunk-size", "800",
		"--chunk-overlap", "80",
		"--top-k", "7",
		"--stream",
		"--ephemeral",
	)
	require.NoError(t, err)

	s := env.gotSettings
	assert.Equal(t, "infra", s.SourceDir)
	assert.Equal(t, "modules/**/*.tf", s.Glob)
	assert.Equal(t, "/tmp/idx", s.StoragePath)
	assert.Equal(t, "nomic", s.Embedding.Model)
	assert.Equal(t, "nomic", s.LLM.Model)
	assert.Equal(t, "http://gpu:11434", s.Embedding.BaseURL)
	assert.Equal(t, "http://gpu:11434", s.LLM.BaseURL)
	assert.Equal(t, 800, s.ChunkSize)
	assert.Equal(t, 80, s.ChunkOverlap)
	assert.Equal(t, 7, s.TopK)
	assert.True(t, s.Stream)
	assert.True(t, env.gotOptions.Ephemeral)
}

func TestRootCmd_FileSettingsWithoutFlags(t *testing.T) {
	env := setupTestServices(t, map[string]any{
		"top_k":     3,
		"llm.model": "from-file",
	})

	_, err := execute(t, "", "run")
	require.NoError(t, err)

	assert.Equal(t, 3, env.gotSettings.TopK)
	assert.Equal(t, "from-file", env.gotSettings.LLM.Model)
	assert.Equal(t, domain.DefaultModelName, env.gotSettings.Embedding.Model)
	assert.False(t, env.gotOptions.Ephemeral)
}

func TestRootCmd_InvalidSettings(t *testing.T) {
	env := setupTestServices(t, nil)

	_, err := execute(t, "", "run", "--chunk-size", "100", "--chunk-overlap", "100")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Equal(t, 0, env.opened)
}

func TestRootCmd_StartFailureIsFatal(t *testing.T) {
	env := setupTestServices(t, nil)
	env.pipeline.startErr = domain.ErrNoDocumentsFound

	_, err := execute(t, "which vpc?\n", "run")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoDocumentsFound)
	assert.Equal(t, 1, env.closed, "the pipeline is released on failure")
	assert.Empty(t, env.pipeline.asked)
}

func TestRootCmd_ClosesPipeline(t *testing.T) {
	env := setupTestServices(t, nil)

	_, err := execute(t, "", "run")
	require.NoError(t, err)
	assert.Equal(t, 1, env.closed)
	assert.True(t, env.pipeline.closed)
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t, nil)

	_, err := execute(t, "", "run", "extra")
	assert.Error(t, err)
}

func TestExecute_CancelledIsClean(t *testing.T) {
	env := setupTestServices(t, nil)
	env.pipeline.serveErr = context.Canceled

	rootCmd.SetArgs([]string{"run"})
	defer rootCmd.SetArgs(nil)

	assert.NoError(t, Execute(context.Background()))
}

func TestExecute_ReturnsFatalErrors(t *testing.T) {
	env := setupTestServices(t, nil)
	env.openErr = domain.ErrLLMUnavailable

	rootCmd.SetArgs([]string{"run"})
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLoadSettings_ConfigPathFlag(t *testing.T) {
	setupTestServices(t, nil)

	var gotPath string
	openSettings = func(path string) (driving.SettingsService, error) {
		gotPath = path
		return nil, errors.New("stop here")
	}

	_, err := execute(t, "", "run", "--config", "/etc/tfask/tfask.toml")
	require.Error(t, err)
	assert.Equal(t, "/etc/tfask/tfask.toml", gotPath)
}

func TestWatchSource_WarnsOnce(t *testing.T) {
	logs := &syncBuffer{}
	logger.SetOutput(logs)
	defer logger.SetOutput(os.Stderr)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := watchSource(ctx, dir, "**/*.tf")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte("a"), 0o600))
	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "index is stale")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "vars.tf"), []byte("b"), 0o600))
	time.Sleep(200 * time.Millisecond)
	stop()

	assert.Equal(t, 1, strings.Count(logs.String(), "index is stale"))
}

func TestWatchSource_IgnoresOtherFiles(t *testing.T) {
	logs := &syncBuffer{}
	logger.SetOutput(logs)
	defer logger.SetOutput(os.Stderr)

	dir := t.TempDir()
	stop := watchSource(context.Background(), dir, "**/*.tf")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("a"), 0o600))
	time.Sleep(200 * time.Millisecond)
	stop()

	assert.NotContains(t, logs.String(), "index is stale")
}

func TestWatchSource_MissingRoot(t *testing.T) {
	logs := &syncBuffer{}
	logger.SetOutput(logs)
	defer logger.SetOutput(os.Stderr)

	stop := watchSource(context.Background(), filepath.Join(t.TempDir(), "missing"), "**/*.tf")
	stop()

	assert.Contains(t, logs.String(), "[WARN] cannot watch")
}
