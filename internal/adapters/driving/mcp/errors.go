// Package mcp provides an MCP (Model Context Protocol) server adapter for tfask.
// It lets AI assistants ask questions about the indexed Terraform tree and
// retrieve the chunks answers are grounded on.
package mcp

import "errors"

// ErrMissingPipelineService is returned when the pipeline service is not provided.
var ErrMissingPipelineService = errors.New("mcp: pipeline service is required")
