package mcp

import (
	"context"

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
	return &domain.UploadResult{FileID: "file-1", Filename: filename}, nil
}

// mockSimplifyService is a mock implementation of driving.SimplifyService.
type mockSimplifyService struct {
	report   *domain.SimplifiedReport
	err      error
	summary  string
	findings []domain.Finding
}

func (m *mockSimplifyService) Simplify(
	_ context.Context,
	summary string,
	findings []domain.Finding,
	_ string,
) (*domain.SimplifiedReport, error) {
	m.summary = summary
	m.findings = findings
	return m.report, m.err
}

// mockReferenceService is a mock implementation of driving.ReferenceService.
type mockReferenceService struct {
	snippets []domain.ReferenceSnippet
	stats    *domain.ReferenceStats
	err      error
	k        int
}

func (m *mockReferenceService) Ingest(_ context.Context, _ string) (int, error) { return 0, m.err }

func (m *mockReferenceService) IngestSource(_ context.Context, _ driven.ReferenceSource) (int, error) {
	return 0, m.err
}

func (m *mockReferenceService) Query(_ context.Context, _ string, k int) ([]domain.ReferenceSnippet, error) {
	m.k = k
	return m.snippets, m.err
}

func (m *mockReferenceService) Enhance(_ context.Context, _, _ string) (string, error) {
	return "", m.err
}

func (m *mockReferenceService) Stats(_ context.Context) (*domain.ReferenceStats, error) {
	return m.stats, m.err
}
