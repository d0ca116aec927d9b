package domain

import (
	"strconv"
	"time"
)

// Defaults applied when a model omits a field.
const (
	// DefaultSummary is used for both the analysis and simplified summaries.
	DefaultSummary = "Analysis complete."

	// UnknownParameter names a finding whose parameter was not reported.
	UnknownParameter = "Unknown"

	// MissingValue stands in for a value the model did not report.
	MissingValue = "N/A"
)

// DisclaimerText is attached to every simplified report.
const DisclaimerText = "⚠️ DISCLAIMER: This AI-generated analysis is for informational purposes only. " +
	"It is NOT a substitute for professional medical advice, diagnosis, or treatment. " +
	"Always consult a qualified healthcare provider for medical decisions."

// ReportType categorises an analysed report.
type ReportType string

// Available report types.
const (
	ReportTypeLabTest      ReportType = "lab_test"
	ReportTypeRadiology    ReportType = "radiology"
	ReportTypePrescription ReportType = "prescription"
	ReportTypeGeneral      ReportType = "general"
)

// IsValid returns true if the report type is recognised.
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeLabTest, ReportTypeRadiology, ReportTypePrescription, ReportTypeGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ReportType) String() string {
	return string(t)
}

// Description returns a human-readable description of the report type.
func (t ReportType) Description() string {
	switch t {
	case ReportTypeLabTest:
		return "Lab Test"
	case ReportTypeRadiology:
		return "Radiology"
	case ReportTypePrescription:
		return "Prescription"
	case ReportTypeGeneral:
		return "General"
	default:
		return unknownDescription
	}
}

// ParseReportType maps model output onto a report type.
// Matching is exact; anything unrecognised collapses to general.
func ParseReportType(raw string) ReportType {
	t := ReportType(raw)
	if t.IsValid() {
		return t
	}
	return ReportTypeGeneral
}

// Finding is one measured parameter extracted from a report.
type Finding struct {
	Parameter      string   `json:"parameter"`
	Value          string   `json:"value"`
	Unit           *string  `json:"unit,omitempty"`
	ReferenceRange *string  `json:"reference_range,omitempty"`
	Status         Severity `json:"status"`
	Interpretation *string  `json:"interpretation,omitempty"`
}

// AnalysisResult is the structured outcome of analysing one report file.
type AnalysisResult struct {
	FileID       string     `json:"file_id"`
	ReportType   ReportType `json:"report_type"`
	Summary      string     `json:"summary"`
	Findings     []Finding  `json:"findings"`
	MedicalTerms []string   `json:"medical_terms"`

	// RawText is only set for reports analysed from extracted text.
	RawText *string `json:"raw_text,omitempty"`

	// ImageQualityNotes is reported by vision models for unclear scans.
	ImageQualityNotes *string `json:"image_quality_notes,omitempty"`

	// ReferenceContext holds reference snippets retrieved for the report, if any.
	ReferenceContext string `json:"reference_context,omitempty"`

	AnalysedAt time.Time `json:"analysis_time"`
}

// AbnormalFindings returns the findings whose status is above normal.
func (r *AnalysisResult) AbnormalFindings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Status.IsAbnormal() {
			out = append(out, f)
		}
	}
	return out
}

// HighestSeverity returns the most severe status across all findings.
// A report without findings is normal.
func (r *AnalysisResult) HighestSeverity() Severity {
	highest := SeverityNormal
	for _, f := range r.Findings {
		if f.Status.Rank() > highest.Rank() {
			highest = f.Status
		}
	}
	return highest
}

// AbnormalityFlag is one parameter flagged by the simplification pass.
type AbnormalityFlag struct {
	Parameter      string   `json:"parameter"`
	Value          string   `json:"value"`
	Severity       Severity `json:"severity"`
	Explanation    string   `json:"explanation"`
	Recommendation *string  `json:"recommendation,omitempty"`
}

// SimplifiedReport is the patient-facing rewrite of an analysis.
type SimplifiedReport struct {
	FileID            string            `json:"file_id"`
	OriginalSummary   string            `json:"original_summary"`
	SimplifiedSummary string            `json:"simplified_summary"`
	Abnormalities     []AbnormalityFlag `json:"abnormalities"`
	FollowupQuestions []string          `json:"followup_questions"`
	Disclaimer        string            `json:"disclaimer"`
}

// Payload is schema-free structured data decoded from a model response.
type Payload map[string]any

// String returns the string stored under key.
// Numbers and booleans are rendered as text; anything else reports false.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	return scalarString(v)
}

// StringOr returns the string under key, or fallback when absent.
func (p Payload) StringOr(key, fallback string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	return fallback
}

// OptionalString returns a pointer to the string under key, or nil.
func (p Payload) OptionalString(key string) *string {
	s, ok := p.String(key)
	if !ok {
		return nil
	}
	return &s
}

// Strings returns the string elements of the list under key.
// Non-scalar elements are skipped; an absent key yields an empty slice.
func (p Payload) Strings(key string) []string {
	items, _ := p[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := scalarString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns the object elements of the list under key.
func (p Payload) Objects(key string) []Payload {
	items, _ := p[key].([]any)
	out := make([]Payload, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, Payload(obj))
		}
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return formatNumber(t), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case interface{ String() string }:
		return t.String(), true
	default:
		return "", false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
