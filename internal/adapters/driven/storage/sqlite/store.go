package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/medreport/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// CollectionName is reported in reference statistics.
const CollectionName = "medical_references"

// Store is a SQLite-backed driven.ReferenceStore.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.ReferenceStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.medreport/data/references.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".medreport", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "references.db")

	// WAL lets the MCP server read while the CLI ingests
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_references.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveChunks stores or replaces chunks in a single transaction.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.ReferenceChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reference_chunks (id, source, path, content, position, embedding, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			path = excluded.path,
			content = excluded.content,
			position = excluded.position,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunk.ID)
		}
		createdAt := chunk.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Source, chunk.Path, chunk.Content,
			chunk.Position, float32SliceToBytes(chunk.Embedding), len(chunk.Embedding),
			createdAt.UTC()); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteSource removes every chunk ingested from source.
func (s *Store) DeleteSource(ctx context.Context, source string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reference_chunks WHERE source = ?", source); err != nil {
		return fmt.Errorf("deleting source %s: %w", source, err)
	}
	return nil
}

// Search scans chunks whose dimensions match the query and returns the k
// most similar, best first. Ties are broken by chunk ID.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.ReferenceHit, error) {
	if len(query) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, path, content, position, embedding, created_at
		FROM reference_chunks WHERE dimensions = ?
	`, len(query))
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.ReferenceHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, driven.ReferenceHit{
			Chunk:      *chunk,
			Similarity: domain.CosineSimilarity(query, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
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
func (s *Store) Stats(ctx context.Context) (*domain.ReferenceStats, error) {
	stats := &domain.ReferenceStats{
		CollectionName: CollectionName,
		Location:       s.path,
	}

	row := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT source), COUNT(*) FROM reference_chunks")
	if err := row.Scan(&stats.DocumentCount, &stats.ChunkCount); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}
	return stats, nil
}

// scanChunk scans one reference_chunks row.
func scanChunk(rows *sql.Rows) (*domain.ReferenceChunk, error) {
	var chunk domain.ReferenceChunk
	var embedding []byte

	if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Path, &chunk.Content,
		&chunk.Position, &embedding, &chunk.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embedding)
	return &chunk, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
