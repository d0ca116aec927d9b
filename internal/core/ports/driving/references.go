package driving

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// ReferenceService manages the medical reference corpus used to ground analyses.
type ReferenceService interface {
	// Ingest chunks, embeds and stores every markdown document in dir,
	// replacing earlier chunks from the same files.
	// Returns the number of chunks stored.
	Ingest(ctx context.Context, dir string) (int, error)

	// IngestSource is Ingest for documents fetched from a remote source.
	IngestSource(ctx context.Context, source driven.ReferenceSource) (int, error)

	// Query returns up to k reference snippets relevant to text.
	Query(ctx context.Context, text string, k int) ([]domain.ReferenceSnippet, error)

	// Enhance builds the reference context attached to an analysis.
	// Returns an empty string when nothing relevant is found.
	Enhance(ctx context.Context, reportText, summary string) (string, error)

	// Stats summarises the stored corpus.
	Stats(ctx context.Context) (*domain.ReferenceStats, error)
}
