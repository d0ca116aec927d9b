package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is an in-memory implementation of driven.FileStore.
type FileStore struct {
	mu    sync.RWMutex
	files map[string]domain.StoredFile
	data  map[string][]byte
}

// NewFileStore creates a new in-memory file store.
func NewFileStore() *FileStore {
	return &FileStore{
		files: make(map[string]domain.StoredFile),
		data:  make(map[string][]byte),
	}
}

// Save stores a copy of data under fileID.
func (s *FileStore) Save(_ context.Context, fileID, filename string, data []byte) (*domain.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := domain.StoredFile{
		FileID:   fileID,
		Filename: filename,
		Path:     "memory://" + fileID + "_" + filename,
		Size:     int64(len(data)),
	}
	s.files[fileID] = file
	s.data[fileID] = append([]byte(nil), data...)
	return &file, nil
}

// Find locates a stored file by ID.
func (s *FileStore) Find(_ context.Context, fileID string) (*domain.StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.files[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

// Read returns a copy of the stored bytes.
func (s *FileStore) Read(_ context.Context, file *domain.StoredFile) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[file.FileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
