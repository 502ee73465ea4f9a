package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/normalisers/plaintext"
)

// writeTree creates files under root from a map of slash-separated relative paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestLoader_Load(t *testing.T) {
	t.Run("loads matching files recursively in lexical order", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"main.tf":                  `provider "aws" {}`,
			"variables.tf":             `variable "region" {}`,
			"modules/vpc/main.tf":      `resource "aws_vpc" "this" {}`,
			"README.md":                "# infra",
			"terraform.tfvars":         `region = "eu-west-1"`,
			".terraform/modules/x.tf":  `# cached module`,
			"modules/.hidden/skip.tf":  `# hidden`,
			"modules/vpc/outputs.tf":   `output "id" {}`,
			"modules/vpc/versions.txt": "1.0",
		})

		loader := NewLoader(root, "**/*.tf", plaintext.New())
		docs, err := loader.Load(context.Background())
		require.NoError(t, err)

		var rels []string
		for _, doc := range docs {
			rels = append(rels, doc.Metadata["relative_path"].(string))
		}
		assert.Equal(t, []string{
			"main.tf",
			"modules/vpc/main.tf",
			"modules/vpc/outputs.tf",
			"variables.tf",
		}, rels)

		assert.Equal(t, filepath.Join(root, "main.tf"), docs[0].URI)
		assert.Equal(t, `provider "aws" {}`, docs[0].Content)
		assert.Equal(t, "text/x-terraform", docs[0].Metadata["mime_type"])
		assert.NotEmpty(t, docs[0].ID)
	})

	t.Run("single star does not descend", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"main.tf":             "a",
			"modules/vpc/main.tf": "b",
		})

		docs, err := NewLoader(root, "*.tf", plaintext.New()).Load(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "a", docs[0].Content)
	})

	t.Run("no matching files", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"README.md": "# nothing here"})

		docs, err := NewLoader(root, "**/*.tf", plaintext.New()).Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrNoDocumentsFound)
		assert.True(t, domain.IsIngestFatal(err))
		assert.Nil(t, docs)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := NewLoader(t.TempDir(), "**/*.tf", plaintext.New()).Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrNoDocumentsFound)
	})

	t.Run("non-existent root", func(t *testing.T) {
		_, err := NewLoader("/non/existent/path", "**/*.tf", plaintext.New()).Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root path error")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("root is a file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"main.tf": "a"})

		_, err := NewLoader(filepath.Join(root, "main.tf"), "**/*.tf", plaintext.New()).Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewLoader(t.TempDir(), "[", plaintext.New()).Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"main.tf": "a"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewLoader(root, "**/*.tf", plaintext.New()).Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"main.tf", "text/x-terraform"},
		{"MAIN.TF", "text/x-terraform"},
		{"prod.tfvars", "text/x-hcl"},
		{"terragrunt.hcl", "text/x-hcl"},
		{"plan.json", "application/json"},
		{"README", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectMIMEType(tt.path))
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{".hidden", ".hidden", true},
		{"path/to/.hidden", "path/to/.hidden", true},
		{"terraform state dir", ".terraform/modules/vpc/main.tf", true},
		{"dir/.git/config", "dir/.git/config", true},
		{"file.tf", "file.tf", false},
		{"path/to/file.tf", "path/to/file.tf", false},
		{".", ".", false},
		{"..", "..", false},
		{"path/../file", "path/../file", false},
		{"", "", false},
		{"/", "/", false},
		{"dot in name", "file.hidden", false},
		{"directory.name/file", "directory.name/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
