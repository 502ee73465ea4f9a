package driven

import (
	"context"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

// DocumentLoader reads the configured source tree into documents.
type DocumentLoader interface {
	// Load returns one document per matching file, in a stable order.
	// Returns domain.ErrNoDocumentsFound when nothing matches.
	Load(ctx context.Context) ([]domain.Document, error)
}
