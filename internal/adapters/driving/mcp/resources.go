package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for tfask resources.
	uriScheme = "tfask://"

	settingsURI = uriScheme + "settings"
	stateURI    = uriScheme + "state"
)

// settingsInfo is the JSON view of the effective settings. API keys are masked.
type settingsInfo struct {
	SourceDir    string       `json:"source_dir"`
	Glob         string       `json:"glob"`
	StoragePath  string       `json:"storage_path"`
	ChunkSize    int          `json:"chunk_size"`
	ChunkOverlap int          `json:"chunk_overlap"`
	TopK         int          `json:"top_k"`
	Embedding    providerInfo `json:"embedding"`
	LLM          providerInfo `json:"llm"`
}

type providerInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         stateURI,
		Name:        "state",
		Description: "Lifecycle state of the question answering pipeline",
		MIMEType:    "text/plain",
	}, s.handleStateResource)

	if s.ports.Settings == nil {
		return
	}
	s.server.AddResource(&mcp.Resource{
		URI:         settingsURI,
		Name:        "settings",
		Description: "Effective configuration: source tree, chunking and models",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)
}

func (s *Server) handleStateResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     s.ports.Pipeline.State().String(),
		}},
	}, nil
}

func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(newSettingsInfo(s.ports.Settings), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling settings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func newSettingsInfo(s *domain.Settings) settingsInfo {
	return settingsInfo{
		SourceDir:    s.SourceDir,
		Glob:         s.Glob,
		StoragePath:  s.StoragePath,
		ChunkSize:    s.ChunkSize,
		ChunkOverlap: s.ChunkOverlap,
		TopK:         s.TopK,
		Embedding: providerInfo{
			Provider: s.Embedding.Provider.String(),
			Model:    s.Embedding.Model,
			BaseURL:  s.Embedding.BaseURL,
			APIKey:   domain.MaskAPIKey(s.Embedding.APIKey),
		},
		LLM: providerInfo{
			Provider: s.LLM.Provider.String(),
			Model:    s.LLM.Model,
			BaseURL:  s.LLM.BaseURL,
			APIKey:   domain.MaskAPIKey(s.LLM.APIKey),
		},
	}
}
