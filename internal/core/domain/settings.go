package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Default settings values.
const (
	DefaultModelName    = "llama3.1"
	DefaultSourceDir    = "terraform"
	DefaultGlob         = "**/*.tf"
	DefaultStoragePath  = "./tfask_index"
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 50
	DefaultTopK         = 4
	DefaultOllamaURL    = "http://127.0.0.1:11434"
	DefaultOpenAIURL    = "https://api.openai.com/v1"
	DefaultLLMTimeout   = 120 * time.Second
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or any compatible server.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// DefaultBaseURL returns the API endpoint used when none is configured.
func (p AIProvider) DefaultBaseURL() string {
	if p == AIProviderOpenAI {
		return DefaultOpenAIURL
	}
	return DefaultOllamaURL
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Model == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Timeout bounds a single generation request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Model == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Settings holds the effective configuration of a run.
type Settings struct {
	// SourceDir is the root of the Terraform tree to ingest.
	SourceDir string

	// Glob selects files under SourceDir, matched against slash-separated relative paths.
	Glob string

	// StoragePath is the directory holding the persisted index.
	StoragePath string

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved per question.
	TopK int

	// Stream writes answer fragments as they are generated.
	Stream bool

	// PromptDir overrides built-in prompt templates when set.
	PromptDir string

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings
}

// DefaultSettings returns settings that work against a local Ollama
// serving llama3.1 and a ./terraform directory.
func DefaultSettings() Settings {
	return Settings{
		SourceDir:    DefaultSourceDir,
		Glob:         DefaultGlob,
		StoragePath:  DefaultStoragePath,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		TopK:         DefaultTopK,
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultModelName,
			BaseURL:  DefaultOllamaURL,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultModelName,
			BaseURL:  DefaultOllamaURL,
			Timeout:  DefaultLLMTimeout,
		},
	}
}

// Validate checks the settings for values that cannot produce a working pipeline.
// All returned errors wrap ErrInvalidConfig.
func (s Settings) Validate() error {
	switch {
	case s.SourceDir == "":
		return fmt.Errorf("%w: source_dir is empty", ErrInvalidConfig)
	case s.Glob == "":
		return fmt.Errorf("%w: glob is empty", ErrInvalidConfig)
	case s.StoragePath == "":
		return fmt.Errorf("%w: storage_path is empty", ErrInvalidConfig)
	case s.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfig, s.ChunkSize)
	case s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize:
		return fmt.Errorf("%w: chunk_overlap must be in [0, %d), got %d",
			ErrInvalidConfig, s.ChunkSize, s.ChunkOverlap)
	case s.TopK <= 0:
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfig, s.TopK)
	case !s.Embedding.Provider.IsValid():
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfig, s.Embedding.Provider)
	case !s.LLM.Provider.IsValid():
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, s.LLM.Provider)
	case s.Embedding.Model == "":
		return fmt.Errorf("%w: embedding model is empty", ErrInvalidConfig)
	case s.LLM.Model == "":
		return fmt.Errorf("%w: llm model is empty", ErrInvalidConfig)
	case s.Embedding.RequestsPerSecond < 0:
		return fmt.Errorf("%w: embedding requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AllProviders returns providers that support both embeddings and generation.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// MaskAPIKey hides all but the first and last four characters of key.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
