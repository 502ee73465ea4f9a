package mcp

import (
	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the MCP server.
type Ports struct {
	// Pipeline answers questions. It must already be serving.
	Pipeline driving.PipelineService

	// Settings are the resolved settings the pipeline was built from, flags
	// included. Optional; tfask://settings is only served when set.
	Settings *domain.Settings
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipelineService
	}
	return nil
}
