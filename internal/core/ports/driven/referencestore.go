package driven

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// ReferenceStore persists embedded reference chunks and searches them by
// vector similarity. Backed by SQLite, or memory for tests.
type ReferenceStore interface {
	// SaveChunks stores or replaces chunks. Chunks must carry embeddings.
	SaveChunks(ctx context.Context, chunks []domain.ReferenceChunk) error

	// DeleteSource removes every chunk ingested from the given source.
	DeleteSource(ctx context.Context, source string) error

	// Search finds the k chunks nearest to the query vector, best first.
	Search(ctx context.Context, query []float32, k int) ([]ReferenceHit, error)

	// Stats summarises what the store holds.
	Stats(ctx context.Context) (*domain.ReferenceStats, error)

	// Close releases resources.
	Close() error
}

// ReferenceHit represents a similarity search result.
type ReferenceHit struct {
	// Chunk is the matched chunk.
	Chunk domain.ReferenceChunk

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
