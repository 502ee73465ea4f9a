package driving

import "github.com/custodia-labs/tfask/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves the effective settings: stored values over defaults.
	Get() (*domain.Settings, error)

	// Set stores a single setting by its configuration key, e.g. "top_k" or "llm.model".
	// The value is parsed according to the key's type.
	Set(key, value string) error

	// Keys returns all recognised configuration keys.
	Keys() []string

	// Validate checks the effective settings.
	Validate() error

	// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
