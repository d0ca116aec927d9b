package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

func writeReport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestAnalyzeCmd_MissingServices(t *testing.T) {
	setupTestServices(t, Services{Warnings: []string{"analysis model: GEMINI_API_KEY not set"}})

	_, err := execute(t, "analyze", "report.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload service not configured")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY not set")
}

func TestAnalyzeCmd_SimplifyRequiresService(t *testing.T) {
	setupTestServices(t, Services{
		Analysis: &mockAnalysisService{},
		Upload:   &mockUploadService{},
	})

	_, err := execute(t, "analyze", "--simplify", "report.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "simplify service not configured")
}

func TestAnalyzeCmd_PrintsAnalysis(t *testing.T) {
	analysis := &mockAnalysisService{result: sampleAnalysis()}
	upload := &mockUploadService{}
	setupTestServices(t, Services{Analysis: analysis, Upload: upload})
	path := writeReport(t, "cbc.txt", "Haemoglobin 10.2 g/dL")

	out, err := execute(t, "analyze", path)

	require.NoError(t, err)
	assert.Equal(t, "cbc.txt", upload.filename)
	assert.Equal(t, "file-1", analysis.fileID)
	assert.Contains(t, out, "Lab Test")
	assert.Contains(t, out, "Overall:  [MEDIUM]")
	assert.Contains(t, out, "[MEDIUM] Haemoglobin: 10.2 g/dL (ref 13.5-17.5)")
	assert.Contains(t, out, "[NORMAL] Platelets: 250")
	assert.Contains(t, out, "Below the reference range")
	assert.Contains(t, out, "- anaemia")
	assert.NotContains(t, out, "In Plain Language")
}

func TestAnalyzeCmd_WithSimplify(t *testing.T) {
	simplify := &mockSimplifyService{report: sampleSimplified()}
	setupTestServices(t, Services{
		Analysis: &mockAnalysisService{result: sampleAnalysis()},
		Upload:   &mockUploadService{},
		Simplify: simplify,
	})
	path := writeReport(t, "cbc.txt", "Haemoglobin 10.2 g/dL")

	out, err := execute(t, "analyze", "-s", path)

	require.NoError(t, err)
	assert.Equal(t, "Haemoglobin is low; other values are normal.", simplify.summary)
	assert.Len(t, simplify.findings, 2)
	assert.Contains(t, out, "In Plain Language")
	assert.Contains(t, out, "-> Ask about iron levels.")
	assert.Contains(t, out, "1. Could I be low on iron?")
	assert.Contains(t, out, "DISCLAIMER")
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	setupTestServices(t, Services{
		Analysis: &mockAnalysisService{result: sampleAnalysis()},
		Upload:   &mockUploadService{},
	})
	path := writeReport(t, "cbc.txt", "Haemoglobin 10.2 g/dL")

	out, err := execute(t, "analyze", "--json", path)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "upload")
	assert.Contains(t, decoded, "analysis")
	assert.NotContains(t, decoded, "simplified")
	assert.Contains(t, string(decoded["analysis"]), `"analysis_time"`)
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	t.Run("unreadable file", func(t *testing.T) {
		setupTestServices(t, Services{Analysis: &mockAnalysisService{}, Upload: &mockUploadService{}})

		_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "missing.pdf"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read report")
	})

	t.Run("upload rejected", func(t *testing.T) {
		setupTestServices(t, Services{
			Analysis: &mockAnalysisService{},
			Upload:   &mockUploadService{err: domain.ErrUnsupportedType},
		})

		_, err := execute(t, "analyze", writeReport(t, "scan.docx", "x"))

		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("analysis failed", func(t *testing.T) {
		setupTestServices(t, Services{
			Analysis: &mockAnalysisService{err: domain.ErrProviderExhausted},
			Upload:   &mockUploadService{},
		})

		_, err := execute(t, "analyze", writeReport(t, "cbc.txt", "x"))

		assert.ErrorIs(t, err, domain.ErrProviderExhausted)
		assert.Contains(t, err.Error(), "analysis failed")
	})

	t.Run("simplification failed", func(t *testing.T) {
		setupTestServices(t, Services{
			Analysis: &mockAnalysisService{result: sampleAnalysis()},
			Upload:   &mockUploadService{},
			Simplify: &mockSimplifyService{err: errors.New("quota")},
		})

		_, err := execute(t, "analyze", "--simplify", writeReport(t, "cbc.txt", "x"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "simplification failed: quota")
	})
}

func TestAnalyzeCmd_RequiresOneArg(t *testing.T) {
	setupTestServices(t, Services{})

	_, err := execute(t, "analyze")

	assert.Error(t, err)
}
