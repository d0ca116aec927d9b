package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

func TestUploadCmd(t *testing.T) {
	upload := &mockUploadService{}
	setupTestServices(t, Services{Upload: upload})
	path := writeReport(t, "lipids.txt", "LDL 3.1 mmol/L")

	out, err := execute(t, "upload", path)

	require.NoError(t, err)
	assert.Equal(t, "lipids.txt", upload.filename)
	assert.Equal(t, []byte("LDL 3.1 mmol/L"), upload.data)
	assert.Contains(t, out, "File uploaded successfully")
	assert.Contains(t, out, "File ID:   file-1")
	assert.Contains(t, out, "File type: text")
	assert.Contains(t, out, "Size:      14 bytes")
	assert.Contains(t, out, "14 characters extracted")
}

func TestUploadCmd_JSON(t *testing.T) {
	setupTestServices(t, Services{Upload: &mockUploadService{}})

	out, err := execute(t, "upload", "--json", writeReport(t, "lipids.txt", "LDL"))
	require.NoError(t, err)

	var result domain.UploadResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "file-1", result.FileID)
	assert.Equal(t, domain.FileTypeText, result.FileType)
}

func TestUploadCmd_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		setupTestServices(t, Services{})

		_, err := execute(t, "upload", "x.pdf")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload service not configured")
	})

	t.Run("too large", func(t *testing.T) {
		setupTestServices(t, Services{Upload: &mockUploadService{err: domain.ErrFileTooLarge}})

		_, err := execute(t, "upload", writeReport(t, "big.pdf", "x"))

		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})
}
