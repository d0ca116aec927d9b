package driven

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// FileStore persists uploaded report files.
type FileStore interface {
	// Save writes data under the given file ID and original filename.
	Save(ctx context.Context, fileID, filename string, data []byte) (*domain.StoredFile, error)

	// Find locates a stored file by ID.
	// Returns domain.ErrNotFound if no file has that ID.
	Find(ctx context.Context, fileID string) (*domain.StoredFile, error)

	// Read returns the bytes of a stored file.
	Read(ctx context.Context, file *domain.StoredFile) ([]byte, error)
}
