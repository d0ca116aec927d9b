package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/core/ports/driving"
	"github.com/custodia-labs/medreport/internal/logger"
)

// Ensure ReferenceService implements the interface.
var _ driving.ReferenceService = (*ReferenceService)(nil)

// Limits applied when building reference context for an analysis.
const (
	enhanceReportPrefix = 500
	enhanceSnippetLen   = 500
	enhanceSeparator    = "\n\n---\n\n"
	defaultTopK         = 3
)

// ReferenceService retrieves medical reference material by semantic similarity.
type ReferenceService struct {
	embedding driven.EmbeddingService
	store     driven.ReferenceStore
	chunker   driven.PostProcessor
	topK      int
}

// NewReferenceService creates a new reference service.
// The chunker is only needed for Ingest.
func NewReferenceService(
	embedding driven.EmbeddingService,
	store driven.ReferenceStore,
	chunker driven.PostProcessor,
	settings domain.ReferenceSettings,
) *ReferenceService {
	topK := settings.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return &ReferenceService{
		embedding: embedding,
		store:     store,
		chunker:   chunker,
		topK:      topK,
	}
}

// Ingest chunks, embeds and stores every markdown document in dir.
func (s *ReferenceService) Ingest(ctx context.Context, dir string) (int, error) {
	logger.Section("Reference Ingestion")

	if err := s.available(); err != nil {
		return 0, err
	}
	if s.chunker == nil {
		return 0, fmt.Errorf("%w: no chunker configured", domain.ErrReferencesUnavailable)
	}

	fsys := os.DirFS(dir)
	names, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return 0, fmt.Errorf("list reference documents: %w", err)
	}
	sort.Strings(names)
	if len(names) == 0 {
		logger.Info("No markdown documents in %s", dir)
		return 0, nil
	}

	docs := make([]domain.ReferenceDocument, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", name, err)
		}
		docs = append(docs, domain.ReferenceDocument{
			Source:  path.Base(name),
			Path:    filepath.Join(dir, name),
			Content: string(content),
		})
	}

	total, err := s.ingestDocuments(ctx, docs)
	if err != nil {
		return total, err
	}
	logger.Info("Ingested %d documents (%d chunks) from %s", len(docs), total, dir)
	return total, nil
}

// IngestSource fetches documents from source and ingests them.
func (s *ReferenceService) IngestSource(ctx context.Context, source driven.ReferenceSource) (int, error) {
	logger.Section("Reference Ingestion")

	if err := s.available(); err != nil {
		return 0, err
	}
	if s.chunker == nil {
		return 0, fmt.Errorf("%w: no chunker configured", domain.ErrReferencesUnavailable)
	}
	if source == nil {
		return 0, fmt.Errorf("%w: no reference source", domain.ErrInvalidInput)
	}

	docs, err := source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", source.Name(), err)
	}
	if len(docs) == 0 {
		logger.Info("No documents in %s", source.Name())
		return 0, nil
	}

	total, err := s.ingestDocuments(ctx, docs)
	if err != nil {
		return total, err
	}
	logger.Info("Ingested %d documents (%d chunks) from %s", len(docs), total, source.Name())
	return total, nil
}

// ingestDocuments ingests docs in order, stopping at the first failure.
func (s *ReferenceService) ingestDocuments(ctx context.Context, docs []domain.ReferenceDocument) (int, error) {
	total := 0
	for i := range docs {
		n, err := s.ingestDocument(ctx, &docs[i])
		if err != nil {
			return total, err
		}
		total += n
		logger.Debug("Ingested %s: %d chunks", docs[i].Source, n)
	}
	return total, nil
}

func (s *ReferenceService) ingestDocument(ctx context.Context, doc *domain.ReferenceDocument) (int, error) {
	chunks, err := s.chunker.Process(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", doc.Source, err)
	}

	if err := s.store.DeleteSource(ctx, doc.Source); err != nil {
		return 0, fmt.Errorf("replace %s: %w", doc.Source, err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", doc.Source, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed %s: got %d vectors for %d chunks", doc.Source, len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store %s: %w", doc.Source, err)
	}
	return len(chunks), nil
}

// Query returns up to k reference snippets relevant to text.
func (s *ReferenceService) Query(ctx context.Context, text string, k int) ([]domain.ReferenceSnippet, error) {
	if err := s.available(); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.ReferenceSnippet{}, nil
	}
	if k <= 0 {
		k = s.topK
	}

	logger.Debug("Reference query: %d chars, k=%d", len(text), k)

	vector, err := s.embedding.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}

	hits, err := s.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("reference search: %w", err)
	}
	logger.Debug("Reference search: %d hits", len(hits))

	snippets := make([]domain.ReferenceSnippet, len(hits))
	for i, hit := range hits {
		source := hit.Chunk.Source
		if source == "" {
			source = "unknown"
		}
		snippets[i] = domain.ReferenceSnippet{
			Content: hit.Chunk.Content,
			Source:  source,
			Score:   hit.Similarity,
		}
	}
	return snippets, nil
}

// Enhance builds the reference context attached to an analysis.
// The query combines the summary with the start of the report text.
func (s *ReferenceService) Enhance(ctx context.Context, reportText, summary string) (string, error) {
	query := summary + "\n\n" + truncateRunes(reportText, enhanceReportPrefix)

	snippets, err := s.Query(ctx, query, s.topK)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return "", nil
	}

	parts := make([]string, len(snippets))
	for i, snip := range snippets {
		parts[i] = fmt.Sprintf("[Source: %s]\n%s", snip.Source, truncateRunes(snip.Content, enhanceSnippetLen))
	}
	return strings.Join(parts, enhanceSeparator), nil
}

// Stats summarises the stored corpus.
func (s *ReferenceService) Stats(ctx context.Context) (*domain.ReferenceStats, error) {
	if s.store == nil {
		return nil, domain.ErrReferencesUnavailable
	}
	return s.store.Stats(ctx)
}

func (s *ReferenceService) available() error {
	if s.embedding == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return domain.ErrReferencesUnavailable
	}
	return nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
