package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader loads every matching file under a root directory.
type Loader struct {
	root       string
	pattern    string
	normaliser driven.Normaliser
}

// NewLoader creates a loader for files under root matching pattern.
func NewLoader(root, pattern string, normaliser driven.Normaliser) *Loader {
	return &Loader{
		root:       root,
		pattern:    pattern,
		normaliser: normaliser,
	}
}

// Root returns the directory the loader walks.
func (l *Loader) Root() string {
	return l.root
}

// Load walks the root in lexical order and returns one document per matching file.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	logger.Section("Load")

	if !doublestar.ValidatePattern(l.pattern) {
		return nil, fmt.Errorf("%w: invalid glob %q", domain.ErrInvalidConfig, l.pattern)
	}

	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", l.root)
	}

	var docs []domain.Document

	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, matched := relativeMatch(l.root, path, l.pattern)
		if rel != "." && isHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !matched {
			return nil
		}

		doc, err := l.loadFile(ctx, path, rel)
		if err != nil {
			return err
		}
		docs = append(docs, *doc)
		logger.Debug("loaded %s (%d bytes)", path, len(doc.Content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s under %s", domain.ErrNoDocumentsFound, l.pattern, l.root)
	}

	logger.Info("loaded %d documents from %s", len(docs), l.root)
	return docs, nil
}

// loadFile reads and normalises a single file.
func (l *Loader) loadFile(ctx context.Context, path, rel string) (*domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	raw := &domain.RawDocument{
		URI:      path,
		MIMEType: detectMIMEType(path),
		Content:  content,
		Metadata: map[string]any{
			"relative_path": rel,
		},
	}

	result, err := l.normaliser.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", path, err)
	}
	return &result.Document, nil
}
