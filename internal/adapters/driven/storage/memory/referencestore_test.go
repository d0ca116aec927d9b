package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

func seedReferences(t *testing.T, store *ReferenceStore) {
	t.Helper()
	require.NoError(t, store.SaveChunks(context.Background(), []domain.ReferenceChunk{
		{ID: "a", Source: "cbc.md", Content: "Hemoglobin", Embedding: []float32{1, 0, 0}},
		{ID: "b", Source: "cbc.md", Content: "Platelets", Embedding: []float32{0.8, 0.2, 0}},
		{ID: "c", Source: "lipids.md", Content: "LDL", Embedding: []float32{0, 0, 1}},
		{ID: "d", Source: "lipids.md", Content: "no vector"},
	}))
}

func TestReferenceStore_Search(t *testing.T) {
	store := NewReferenceStore()
	seedReferences(t, store)

	hits, err := store.Search(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Chunk.ID)
	assert.Equal(t, "b", hits[1].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestReferenceStore_SearchSkipsUnembedded(t *testing.T) {
	store := NewReferenceStore()
	seedReferences(t, store)

	hits, err := store.Search(context.Background(), []float32{0, 0, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestReferenceStore_DeleteSource(t *testing.T) {
	store := NewReferenceStore()
	seedReferences(t, store)

	require.NoError(t, store.DeleteSource(context.Background(), "cbc.md"))

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentCount)
	assert.Equal(t, 2, stats.ChunkCount)
}

func TestReferenceStore_Stats(t *testing.T) {
	store := NewReferenceStore()
	seedReferences(t, store)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
	assert.Equal(t, 4, stats.ChunkCount)
	assert.Equal(t, ":memory:", stats.Location)
	assert.NoError(t, store.Close())
}
