package domain

import (
	"math"
	"time"
)

// ReferenceSnippet is one piece of medical reference material returned
// by retrieval.
type ReferenceSnippet struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score,omitempty"`
}

// ReferenceChunk is a stored, embedded fragment of a reference document.
type ReferenceChunk struct {
	// ID uniquely identifies this chunk.
	ID string

	// Source is the filename of the reference document.
	Source string

	// Path is the location the document was ingested from.
	Path string

	// Content is the chunk text.
	Content string

	// Position is the zero-based chunk index within its document.
	Position int

	// Embedding is the chunk's vector, if one has been generated.
	Embedding []float32

	// CreatedAt is when the chunk was ingested.
	CreatedAt time.Time
}

// ReferenceStats summarises the reference collection.
type ReferenceStats struct {
	CollectionName string `json:"collection_name"`
	DocumentCount  int    `json:"document_count"`
	ChunkCount     int    `json:"chunk_count"`
	Location       string `json:"location"`
}

// ReferenceDocument is a reference file read for ingestion.
type ReferenceDocument struct {
	// Source is the document filename, shown alongside retrieved snippets.
	Source string

	// Path is the location the document was read from.
	Path string

	// Content is the full document text.
	Content string
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
