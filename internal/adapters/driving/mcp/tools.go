package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// defaultReferenceK is used when query_references gets no k.
const defaultReferenceK = 3

// AnalyzeInput is the input schema for the analyze_report tool.
type AnalyzeInput struct {
	Path     string `json:"path" jsonschema:"path to a PDF, PNG, JPG or TXT medical report"`
	Simplify bool   `json:"simplify,omitempty" jsonschema:"also return a patient-friendly explanation"`
}

// AnalyzeOutput is the output schema for the analyze_report tool.
type AnalyzeOutput struct {
	Analysis   AnalysisOutput    `json:"analysis"`
	Simplified *SimplifiedOutput `json:"simplified,omitempty"`
}

// FindingOutput is one extracted finding.
type FindingOutput struct {
	Parameter      string `json:"parameter"`
	Value          string `json:"value"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	Status         string `json:"status" jsonschema:"normal, low, medium, high or critical"`
	Interpretation string `json:"interpretation,omitempty"`
}

// AnalysisOutput is the structured analysis of one report.
type AnalysisOutput struct {
	FileID            string          `json:"file_id"`
	ReportType        string          `json:"report_type"`
	Summary           string          `json:"summary"`
	Findings          []FindingOutput `json:"findings"`
	MedicalTerms      []string        `json:"medical_terms"`
	ImageQualityNotes string          `json:"image_quality_notes,omitempty"`
	ReferenceContext  string          `json:"reference_context,omitempty"`
	AnalysedAt        string          `json:"analysis_time"`
}

// AbnormalityOutput is one flagged parameter in a simplified report.
type AbnormalityOutput struct {
	Parameter      string `json:"parameter"`
	Value          string `json:"value"`
	Severity       string `json:"severity"`
	Explanation    string `json:"explanation"`
	Recommendation string `json:"recommendation,omitempty"`
}

// SimplifiedOutput is the patient-facing rewrite of an analysis.
type SimplifiedOutput struct {
	FileID            string              `json:"file_id"`
	SimplifiedSummary string              `json:"simplified_summary"`
	Abnormalities     []AbnormalityOutput `json:"abnormalities"`
	FollowupQuestions []string            `json:"followup_questions"`
	Disclaimer        string              `json:"disclaimer"`
}

// SimplifyInput is the input schema for the simplify_report tool.
type SimplifyInput struct {
	FileID   string          `json:"file_id,omitempty" jsonschema:"identifier of the analysed report"`
	Summary  string          `json:"summary" jsonschema:"the analysis summary"`
	Findings []FindingOutput `json:"findings" jsonschema:"the findings returned by analyze_report"`
}

// ReferenceInput is the input schema for the query_references tool.
type ReferenceInput struct {
	Query string `json:"query" jsonschema:"medical term, test name or question"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of snippets (default 3)"`
}

// ReferenceOutput is the output schema for the query_references tool.
type ReferenceOutput struct {
	Snippets []SnippetOutput `json:"snippets"`
	Count    int             `json:"count"`
}

// SnippetOutput is one reference passage.
type SnippetOutput struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        "analyze_report",
		Description: "Extract structured findings from a medical report file",
	}, s.handleAnalyze)

	if s.ports.Simplify != nil {
		mcp.AddTool(s.inner, &mcp.Tool{
			Name:        "simplify_report",
			Description: "Explain an analysed medical report in plain language",
		}, s.handleSimplify)
	}

	if s.ports.References != nil {
		mcp.AddTool(s.inner, &mcp.Tool{
			Name:        "query_references",
			Description: "Search the medical reference library",
		}, s.handleQueryReferences)
	}
}

// handleAnalyze uploads the file at input.Path and analyses it.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	if input.Path == "" {
		return nil, AnalyzeOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("reading report: %w", err)
	}

	upload, err := s.ports.Upload.Upload(ctx, filepath.Base(input.Path), data)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	result, err := s.ports.Analysis.AnalyzeFile(ctx, upload.FileID)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	output := AnalyzeOutput{Analysis: toAnalysisOutput(result)}
	if !input.Simplify {
		return nil, output, nil
	}
	if s.ports.Simplify == nil {
		return nil, AnalyzeOutput{}, ErrSimplifyUnavailable
	}

	simplified, err := s.ports.Simplify.Simplify(ctx, result.Summary, result.Findings, result.FileID)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	out := toSimplifiedOutput(simplified)
	output.Simplified = &out
	return nil, output, nil
}

// handleSimplify rewrites a previous analysis.
func (s *Server) handleSimplify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimplifyInput,
) (*mcp.CallToolResult, SimplifiedOutput, error) {
	if s.ports.Simplify == nil {
		return nil, SimplifiedOutput{}, ErrSimplifyUnavailable
	}

	findings := make([]domain.Finding, len(input.Findings))
	for i, f := range input.Findings {
		findings[i] = fromFindingOutput(f)
	}

	simplified, err := s.ports.Simplify.Simplify(ctx, input.Summary, findings, input.FileID)
	if err != nil {
		return nil, SimplifiedOutput{}, err
	}
	return nil, toSimplifiedOutput(simplified), nil
}

// handleQueryReferences returns reference snippets for a query.
func (s *Server) handleQueryReferences(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReferenceInput,
) (*mcp.CallToolResult, ReferenceOutput, error) {
	if s.ports.References == nil {
		return nil, ReferenceOutput{}, domain.ErrReferencesUnavailable
	}

	k := input.K
	if k <= 0 {
		k = defaultReferenceK
	}

	snippets, err := s.ports.References.Query(ctx, input.Query, k)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, ReferenceOutput{}, fmt.Errorf("reference search needs an embedding provider: %w", err)
		}
		return nil, ReferenceOutput{}, err
	}

	output := ReferenceOutput{
		Snippets: make([]SnippetOutput, len(snippets)),
		Count:    len(snippets),
	}
	for i, snip := range snippets {
		output.Snippets[i] = SnippetOutput{Source: snip.Source, Content: snip.Content, Score: snip.Score}
	}
	return nil, output, nil
}

func toAnalysisOutput(r *domain.AnalysisResult) AnalysisOutput {
	out := AnalysisOutput{
		FileID:            r.FileID,
		ReportType:        r.ReportType.String(),
		Summary:           r.Summary,
		Findings:          make([]FindingOutput, len(r.Findings)),
		MedicalTerms:      r.MedicalTerms,
		ImageQualityNotes: deref(r.ImageQualityNotes),
		ReferenceContext:  r.ReferenceContext,
		AnalysedAt:        r.AnalysedAt.Format(time.RFC3339),
	}
	if out.MedicalTerms == nil {
		out.MedicalTerms = []string{}
	}
	for i, f := range r.Findings {
		out.Findings[i] = FindingOutput{
			Parameter:      f.Parameter,
			Value:          f.Value,
			Unit:           deref(f.Unit),
			ReferenceRange: deref(f.ReferenceRange),
			Status:         f.Status.String(),
			Interpretation: deref(f.Interpretation),
		}
	}
	return out
}

func toSimplifiedOutput(r *domain.SimplifiedReport) SimplifiedOutput {
	out := SimplifiedOutput{
		FileID:            r.FileID,
		SimplifiedSummary: r.SimplifiedSummary,
		Abnormalities:     make([]AbnormalityOutput, len(r.Abnormalities)),
		FollowupQuestions: r.FollowupQuestions,
		Disclaimer:        r.Disclaimer,
	}
	if out.FollowupQuestions == nil {
		out.FollowupQuestions = []string{}
	}
	for i, a := range r.Abnormalities {
		out.Abnormalities[i] = AbnormalityOutput{
			Parameter:      a.Parameter,
			Value:          a.Value,
			Severity:       a.Severity.String(),
			Explanation:    a.Explanation,
			Recommendation: deref(a.Recommendation),
		}
	}
	return out
}

// fromFindingOutput converts tool input back to a finding. The status is
// normalised because callers may send free-form severities.
func fromFindingOutput(f FindingOutput) domain.Finding {
	return domain.Finding{
		Parameter:      f.Parameter,
		Value:          f.Value,
		Unit:           optional(f.Unit),
		ReferenceRange: optional(f.ReferenceRange),
		Status:         domain.NormalizeSeverity(f.Status),
		Interpretation: optional(f.Interpretation),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
