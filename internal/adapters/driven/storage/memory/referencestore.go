package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure ReferenceStore implements the interface.
var _ driven.ReferenceStore = (*ReferenceStore)(nil)

// ReferenceStore is an in-memory implementation of driven.ReferenceStore.
// Search is a brute-force cosine scan over every stored chunk.
type ReferenceStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.ReferenceChunk
}

// NewReferenceStore creates a new in-memory reference store.
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		chunks: make(map[string]domain.ReferenceChunk),
	}
}

// SaveChunks stores or replaces chunks by ID.
func (s *ReferenceStore) SaveChunks(_ context.Context, chunks []domain.ReferenceChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

// DeleteSource removes every chunk ingested from source.
func (s *ReferenceStore) DeleteSource(_ context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.chunks {
		if c.Source == source {
			delete(s.chunks, id)
		}
	}
	return nil
}

// Search finds the k chunks nearest to query.
func (s *ReferenceStore) Search(_ context.Context, query []float32, k int) ([]driven.ReferenceHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.ReferenceHit, 0, len(s.chunks))
	for _, c := range s.chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		hits = append(hits, driven.ReferenceHit{
			Chunk:      c,
			Similarity: domain.CosineSimilarity(query, c.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Stats summarises the stored chunks.
func (s *ReferenceStore) Stats(_ context.Context) (*domain.ReferenceStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make(map[string]struct{})
	for _, c := range s.chunks {
		sources[c.Source] = struct{}{}
	}
	return &domain.ReferenceStats{
		CollectionName: "medical_references",
		DocumentCount:  len(sources),
		ChunkCount:     len(s.chunks),
		Location:       ":memory:",
	}, nil
}

// Close releases resources (no-op for memory store).
func (s *ReferenceStore) Close() error {
	return nil
}
