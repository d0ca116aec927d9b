package driven

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// ReferenceSource supplies reference documents from outside the local
// docs directory, such as a GitHub repository.
type ReferenceSource interface {
	// Name identifies the source in logs and CLI output.
	Name() string

	// Fetch returns every document the source currently holds.
	Fetch(ctx context.Context) ([]domain.ReferenceDocument, error)
}
