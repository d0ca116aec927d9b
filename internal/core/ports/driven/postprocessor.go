package driven

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// PostProcessor splits a reference document into chunks ready for embedding.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns its chunks without embeddings.
	Process(ctx context.Context, doc *domain.ReferenceDocument) ([]domain.ReferenceChunk, error)
}
