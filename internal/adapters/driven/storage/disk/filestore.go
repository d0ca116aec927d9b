// Package disk provides a filesystem-backed store for uploaded reports.
package disk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore keeps each upload as "<fileID>_<filename>" in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the upload directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: upload directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes data to disk. The filename must already be a bare name.
func (s *FileStore) Save(ctx context.Context, fileID, filename string, data []byte) (*domain.StoredFile, error) {
	if err := validateID(fileID); err != nil {
		return nil, err
	}
	if filename == "" || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("%w: bad filename %q", domain.ErrInvalidInput, filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, fileID+"_"+filename)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	return &domain.StoredFile{
		FileID:   fileID,
		Filename: filename,
		Path:     path,
		Size:     int64(len(data)),
	}, nil
}

// Find locates a stored file by ID.
// Returns domain.ErrNotFound if no file has that ID.
func (s *FileStore) Find(_ context.Context, fileID string) (*domain.StoredFile, error) {
	if err := validateID(fileID); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, fileID+"_*"))
	if err != nil {
		return nil, fmt.Errorf("searching uploads: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, fileID)
	}
	sort.Strings(matches)

	path := matches[0]
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat upload: %w", err)
	}

	return &domain.StoredFile{
		FileID:   fileID,
		Filename: strings.TrimPrefix(filepath.Base(path), fileID+"_"),
		Path:     path,
		Size:     info.Size(),
	}, nil
}

// Read returns the bytes of a stored file.
func (s *FileStore) Read(_ context.Context, file *domain.StoredFile) ([]byte, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, file.FileID)
		}
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return data, nil
}

// validateID rejects IDs that could escape the directory or act as a glob.
func validateID(fileID string) error {
	if fileID == "" || strings.ContainsAny(fileID, `/\*?[]`) || fileID == "." || fileID == ".." {
		return fmt.Errorf("%w: bad file id %q", domain.ErrInvalidInput, fileID)
	}
	return nil
}
