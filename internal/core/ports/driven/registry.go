package driven

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a file.
// It maintains a priority-ordered list of normalisers and dispatches
// based on file type.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when nothing handles the file type.
	Normalise(ctx context.Context, fileType domain.FileType, file *domain.StoredFile) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedFileTypes returns all file types that can be normalised.
	SupportedFileTypes() []domain.FileType
}
