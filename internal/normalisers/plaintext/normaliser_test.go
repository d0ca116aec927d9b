package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

func writeReport(t *testing.T, content []byte) *domain.StoredFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labs.txt")
	require.NoError(t, os.WriteFile(path, content, 0600))
	return &domain.StoredFile{FileID: "f1", Filename: "labs.txt", Path: path, Size: int64(len(content))}
}

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []domain.FileType{domain.FileTypeText}, n.SupportedFileTypes())
	assert.Equal(t, 5, n.Priority())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
		wantErr error
	}{
		{"report", []byte("Hemoglobin: 11.2 g/dL\nWBC: 7.1\n"), "Hemoglobin: 11.2 g/dL\nWBC: 7.1\n", nil},
		{"invalid utf-8", []byte("HGB \xff 11.2"), "HGB � 11.2", nil},
		{"empty", nil, "", domain.ErrNoText},
		{"whitespace", []byte(" \n\t "), "", domain.ErrNoText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Normalise(context.Background(), writeReport(t, tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
		})
	}
}

func TestNormalise_Errors(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Normalise(context.Background(), &domain.StoredFile{Filename: "gone.txt", Path: "/does/not/exist.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.txt")
}
