package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

func TestBuildAnalysisResult_EmptyPayload(t *testing.T) {
	result := BuildAnalysisResult(domain.Payload{}, "file-1", nil)

	assert.Equal(t, "file-1", result.FileID)
	assert.Equal(t, domain.ReportTypeGeneral, result.ReportType)
	assert.Equal(t, domain.DefaultSummary, result.Summary)
	assert.NotNil(t, result.Findings)
	assert.Empty(t, result.Findings)
	assert.NotNil(t, result.MedicalTerms)
	assert.Empty(t, result.MedicalTerms)
	assert.Nil(t, result.RawText)
	assert.Nil(t, result.ImageQualityNotes)
	assert.False(t, result.AnalysedAt.IsZero())
}

func TestBuildAnalysisResult_FindingDefaults(t *testing.T) {
	payload := domain.Payload{
		"findings": []any{map[string]any{"parameter": "Glucose"}},
	}

	result := BuildAnalysisResult(payload, "f", nil)
	require.Len(t, result.Findings, 1)

	f := result.Findings[0]
	assert.Equal(t, "Glucose", f.Parameter)
	assert.Equal(t, domain.MissingValue, f.Value)
	assert.Equal(t, domain.SeverityNormal, f.Status)
	assert.Nil(t, f.Unit)
	assert.Nil(t, f.ReferenceRange)
	assert.Nil(t, f.Interpretation)
}

func TestBuildAnalysisResult_FromModelReply(t *testing.T) {
	reply := "```json\n" + `{
  "report_type": "lab_test",
  "summary": "Mild anemia.",
  "findings": [
    {"parameter": "Hemoglobin", "value": "10.5", "unit": "g/dL",
     "reference_range": "12-16", "status": "Borderline", "interpretation": "Slightly low"},
    {"parameter": "Glucose", "value": 92, "status": "within normal limits"},
    {"value": "7.2", "status": "extremely high"},
    "not an object"
  ],
  "medical_terms": ["anemia", "hemoglobin"]
}` + "\n```"

	payload, err := ParseModelResponse(reply)
	require.NoError(t, err)

	text := "HGB 10.5"
	result := BuildAnalysisResult(payload, "abc", &text)

	assert.Equal(t, domain.ReportTypeLabTest, result.ReportType)
	assert.Equal(t, "Mild anemia.", result.Summary)
	assert.Equal(t, []string{"anemia", "hemoglobin"}, result.MedicalTerms)
	require.NotNil(t, result.RawText)
	assert.Equal(t, "HGB 10.5", *result.RawText)

	require.Len(t, result.Findings, 3)

	hgb := result.Findings[0]
	assert.Equal(t, "Hemoglobin", hgb.Parameter)
	assert.Equal(t, "10.5", hgb.Value)
	require.NotNil(t, hgb.Unit)
	assert.Equal(t, "g/dL", *hgb.Unit)
	require.NotNil(t, hgb.ReferenceRange)
	assert.Equal(t, "12-16", *hgb.ReferenceRange)
	assert.Equal(t, domain.SeverityLow, hgb.Status)

	glucose := result.Findings[1]
	assert.Equal(t, "92", glucose.Value)
	assert.Equal(t, domain.SeverityNormal, glucose.Status)

	unnamed := result.Findings[2]
	assert.Equal(t, domain.UnknownParameter, unnamed.Parameter)
	assert.Equal(t, domain.SeverityCritical, unnamed.Status)

	assert.Equal(t, domain.SeverityCritical, result.HighestSeverity())
}

func TestBuildAnalysisResult_NumericValueAsText(t *testing.T) {
	payload := domain.Payload{
		"findings": []any{map[string]any{"parameter": "Hemoglobin", "value": 14.2}},
	}

	result := BuildAnalysisResult(payload, "f", nil)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "14.2", result.Findings[0].Value)
}

func TestBuildAnalysisResult_UnknownReportType(t *testing.T) {
	result := BuildAnalysisResult(domain.Payload{"report_type": "pathology"}, "f", nil)
	assert.Equal(t, domain.ReportTypeGeneral, result.ReportType)
}

func TestBuildAnalysisResult_ImageQualityNotes(t *testing.T) {
	result := BuildAnalysisResult(domain.Payload{"image_quality_notes": "Blurry lower half"}, "f", nil)
	require.NotNil(t, result.ImageQualityNotes)
	assert.Equal(t, "Blurry lower half", *result.ImageQualityNotes)
}

func TestBuildSimplifiedReport_Defaults(t *testing.T) {
	report := BuildSimplifiedReport(domain.Payload{}, "f", "Original summary")

	assert.Equal(t, "f", report.FileID)
	assert.Equal(t, "Original summary", report.OriginalSummary)
	assert.Equal(t, domain.DefaultSummary, report.SimplifiedSummary)
	assert.NotNil(t, report.Abnormalities)
	assert.Empty(t, report.Abnormalities)
	assert.NotNil(t, report.FollowupQuestions)
	assert.Empty(t, report.FollowupQuestions)
	assert.Equal(t, domain.DisclaimerText, report.Disclaimer)
}

func TestBuildSimplifiedReport_Abnormalities(t *testing.T) {
	payload := domain.Payload{
		"simplified_summary": "Your iron is a little low.",
		"abnormalities": []any{
			map[string]any{
				"parameter":      "Ferritin",
				"value":          "8",
				"severity":       "moderate",
				"explanation":    "Iron stores are low.",
				"recommendation": "Ask about supplements.",
			},
			map[string]any{"severity": "danger"},
			map[string]any{"parameter": "TSH", "severity": "gibberish"},
		},
		"followup_questions": []any{"Should I take iron?"},
		"disclaimer":         "model supplied text",
	}

	report := BuildSimplifiedReport(payload, "f", "s")

	assert.Equal(t, "Your iron is a little low.", report.SimplifiedSummary)
	assert.Equal(t, []string{"Should I take iron?"}, report.FollowupQuestions)
	assert.Equal(t, domain.DisclaimerText, report.Disclaimer)

	require.Len(t, report.Abnormalities, 3)

	ferritin := report.Abnormalities[0]
	assert.Equal(t, "Ferritin", ferritin.Parameter)
	assert.Equal(t, domain.SeverityMedium, ferritin.Severity)
	require.NotNil(t, ferritin.Recommendation)
	assert.Equal(t, "Ask about supplements.", *ferritin.Recommendation)

	bare := report.Abnormalities[1]
	assert.Equal(t, domain.UnknownParameter, bare.Parameter)
	assert.Equal(t, domain.MissingValue, bare.Value)
	assert.Equal(t, domain.SeverityHigh, bare.Severity)
	assert.Empty(t, bare.Explanation)
	assert.Nil(t, bare.Recommendation)

	assert.Equal(t, domain.SeverityLow, report.Abnormalities[2].Severity)
}
