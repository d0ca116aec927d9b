package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result *domain.AnalysisResult
	err    error
	fileID string
}

func (m *mockAnalysisService) AnalyzeText(_ context.Context, _, fileID string) (*domain.AnalysisResult, error) {
	m.fileID = fileID
	return m.result, m.err
}

func (m *mockAnalysisService) AnalyzeImage(_ context.Context, _ []byte, _, fileID string) (*domain.AnalysisResult, error) {
	m.fileID = fileID
	return m.result, m.err
}

func (m *mockAnalysisService) AnalyzeFile(_ context.Context, fileID string) (*domain.AnalysisResult, error) {
	m.fileID = fileID
	return m.result, m.err
}

// mockUploadService is a mock implementation of driving.UploadService.
type mockUploadService struct {
	err      error
	filename string
	data     []byte
}

func (m *mockUploadService) Upload(_ context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.filename = filename
	m.data = data
	text := string(data)
	return &domain.UploadResult{
		FileID:        "file-1",
		Filename:      filename,
		FileType:      domain.FileTypeText,
		FileSizeBytes: int64(len(data)),
		ExtractedText: &text,
		Message:       "File uploaded successfully",
	}, nil
}

// mockSimplifyService is a mock implementation of driving.SimplifyService.
type mockSimplifyService struct {
	report   *domain.SimplifiedReport
	err      error
	summary  string
	findings []domain.Finding
	fileID   string
}

func (m *mockSimplifyService) Simplify(
	_ context.Context,
	summary string,
	findings []domain.Finding,
	fileID string,
) (*domain.SimplifiedReport, error) {
	m.summary = summary
	m.findings = findings
	m.fileID = fileID
	return m.report, m.err
}

// mockReferenceService is a mock implementation of driving.ReferenceService.
type mockReferenceService struct {
	snippets []domain.ReferenceSnippet
	stats    *domain.ReferenceStats
	count    int
	err      error

	dir    string
	source driven.ReferenceSource
	query  string
	k      int
}

func (m *mockReferenceService) Ingest(_ context.Context, dir string) (int, error) {
	m.dir = dir
	return m.count, m.err
}

func (m *mockReferenceService) IngestSource(_ context.Context, source driven.ReferenceSource) (int, error) {
	m.source = source
	return m.count, m.err
}

func (m *mockReferenceService) Query(_ context.Context, text string, k int) ([]domain.ReferenceSnippet, error) {
	m.query = text
	m.k = k
	return m.snippets, m.err
}

func (m *mockReferenceService) Enhance(_ context.Context, _, _ string) (string, error) {
	return "", m.err
}

func (m *mockReferenceService) Stats(_ context.Context) (*domain.ReferenceStats, error) {
	return m.stats, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	validateErr error
	pingErr     error

	analysisSet  []string
	simplifySet  []string
	embeddingSet []string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetAnalysisProvider(provider domain.AIProvider, model, apiKey string) error {
	m.analysisSet = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetSimplifyProvider(provider domain.AIProvider, model, apiKey string) error {
	m.simplifySet = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embeddingSet = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateAnalysisConfig() error { return m.pingErr }

// stubSource is a driven.ReferenceSource that fetches nothing.
type stubSource struct {
	name string
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context) ([]domain.ReferenceDocument, error) { return nil, nil }

// setupTestServices installs s for the duration of the test and resets flags.
func setupTestServices(t *testing.T, s Services) {
	t.Helper()

	Configure(s)
	resetFlags()
	stdin = strings.NewReader("")

	t.Cleanup(func() {
		Configure(Services{})
		resetFlags()
		stdin = os.Stdin
	})
}

// resetFlags restores command flag variables between executions.
func resetFlags() {
	analyzeSimplify, analyzeJSON = false, false
	uploadJSON = false
	simplifySummary, simplifyFindings, simplifyFileID, simplifyJSON = "", "", "", false
	refsGitHub, refsRef, refsTopK, refsJSON = "", "", 3, false
	verbose = false
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func strPtr(s string) *string { return &s }

func sampleAnalysis() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		FileID:     "file-1",
		ReportType: domain.ReportTypeLabTest,
		Summary:    "Haemoglobin is low; other values are normal.",
		Findings: []domain.Finding{
			{
				Parameter:      "Haemoglobin",
				Value:          "10.2",
				Unit:           strPtr("g/dL"),
				ReferenceRange: strPtr("13.5-17.5"),
				Status:         domain.SeverityMedium,
				Interpretation: strPtr("Below the reference range"),
			},
			{Parameter: "Platelets", Value: "250", Status: domain.SeverityNormal},
		},
		MedicalTerms: []string{"anaemia"},
		AnalysedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func sampleSimplified() *domain.SimplifiedReport {
	return &domain.SimplifiedReport{
		FileID:            "file-1",
		OriginalSummary:   "Haemoglobin is low; other values are normal.",
		SimplifiedSummary: "Your blood is carrying a little less oxygen than usual.",
		Abnormalities: []domain.AbnormalityFlag{
			{
				Parameter:      "Haemoglobin",
				Value:          "10.2 g/dL",
				Severity:       domain.SeverityMedium,
				Explanation:    "This protein carries oxygen.",
				Recommendation: strPtr("Ask about iron levels."),
			},
		},
		FollowupQuestions: []string{"Could I be low on iron?"},
		Disclaimer:        domain.DisclaimerText,
	}
}
