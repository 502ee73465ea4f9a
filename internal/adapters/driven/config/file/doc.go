// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration (tfask.toml)
//   - PromptStore: user-editable prompt templates with embedded defaults
package file
