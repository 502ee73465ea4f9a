package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvOpenAIAPIKey fills an empty API key for the openai provider.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyModelName      = "model_name"
	keySourceDir      = "source_dir"
	keyGlob           = "glob"
	keyStoragePath    = "storage_path"
	keyChunkSize      = "chunk_size"
	keyChunkOverlap   = "chunk_overlap"
	keyTopK           = "top_k"
	keyStream         = "stream"
	keyPromptDir      = "prompt_dir"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedRate      = "embedding.requests_per_second"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTimeoutSecs = "llm.timeout_seconds"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

// keyKinds lists every recognised key and how Set parses its value.
var keyKinds = map[string]valueKind{
	keyModelName:      kindString,
	keySourceDir:      kindString,
	keyGlob:           kindString,
	keyStoragePath:    kindString,
	keyChunkSize:      kindInt,
	keyChunkOverlap:   kindInt,
	keyTopK:           kindInt,
	keyStream:         kindBool,
	keyPromptDir:      kindString,
	keyEmbedProvider:  kindString,
	keyEmbedModel:     kindString,
	keyEmbedBaseURL:   kindString,
	keyEmbedAPIKey:    kindString,
	keyEmbedRate:      kindFloat,
	keyLLMProvider:    kindString,
	keyLLMModel:       kindString,
	keyLLMBaseURL:     kindString,
	keyLLMAPIKey:      kindString,
	keyLLMTimeoutSecs: kindInt,
}

// SettingsService maps the config store onto domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case connectivity checks are skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves the effective settings: stored values over defaults.
// One model_name drives both embedding and generation unless a section
// names its own model.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()
	model := s.getString(keyModelName, domain.DefaultModelName)

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.Settings{
		SourceDir:    s.getString(keySourceDir, defaults.SourceDir),
		Glob:         s.getString(keyGlob, defaults.Glob),
		StoragePath:  s.getString(keyStoragePath, defaults.StoragePath),
		ChunkSize:    s.getInt(keyChunkSize, defaults.ChunkSize),
		ChunkOverlap: s.getInt(keyChunkOverlap, defaults.ChunkOverlap),
		TopK:         s.getInt(keyTopK, defaults.TopK),
		Stream:       s.getBool(keyStream, defaults.Stream),
		PromptDir:    s.configStore.GetString(keyPromptDir),
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, model),
			BaseURL:           s.getString(keyEmbedBaseURL, embedProvider.DefaultBaseURL()),
			APIKey:            s.apiKey(keyEmbedAPIKey, embedProvider),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRate),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, model),
			BaseURL:  s.getString(keyLLMBaseURL, llmProvider.DefaultBaseURL()),
			APIKey:   s.apiKey(keyLLMAPIKey, llmProvider),
			Timeout:  time.Duration(s.getInt(keyLLMTimeoutSecs, int(defaults.LLM.Timeout/time.Second))) * time.Second,
		},
	}

	return settings, nil
}

// Set parses value according to key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %w", domain.ErrInvalidConfig, key, err)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number: %w", domain.ErrInvalidConfig, key, err)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false: %w", domain.ErrInvalidConfig, key, err)
		}
		parsed = b
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns all recognised configuration keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s needs an API key (set %s or %s)",
			domain.ErrInvalidConfig, settings.Embedding.Provider, keyEmbedAPIKey, EnvOpenAIAPIKey)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %s needs an API key (set %s or %s)",
			domain.ErrInvalidConfig, settings.LLM.Provider, keyLLMAPIKey, EnvOpenAIAPIKey)
	}
	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt honours an explicit zero, which is meaningful for chunk_overlap.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getProvider keeps unknown values so that Validate can report them.
func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := strings.ToLower(strings.TrimSpace(s.configStore.GetString(key)))
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}

func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	if provider == domain.AIProviderOpenAI {
		return s.getenv(EnvOpenAIAPIKey)
	}
	return ""
}
