package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building a client and pinging it.
// Clients are closed again straight away.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that gives each provider pingTimeout to answer.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding reports why the embedding provider cannot be used, or nil.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return fmt.Errorf("%w: embedding settings are missing", domain.ErrInvalidConfig)
	}
	if !config.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidConfig, config.Provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	svc, err := CreateAndValidateEmbeddingService(ctx, config)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLM reports why the LLM provider cannot be used, or nil.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return fmt.Errorf("%w: llm settings are missing", domain.ErrInvalidConfig)
	}
	if !config.IsConfigured() {
		return fmt.Errorf("%w: llm provider %q is not configured", domain.ErrInvalidConfig, config.Provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	svc, err := CreateAndValidateLLMService(ctx, config)
	if err != nil {
		return err
	}
	return svc.Close()
}
