package services

import (
	"time"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// BuildAnalysisResult maps a decoded model payload onto an AnalysisResult.
//
// The mapping is total: absent or mistyped fields degrade to defaults and
// every status passes through domain.NormalizeSeverity. rawText is nil for
// reports analysed from an image.
func BuildAnalysisResult(payload domain.Payload, fileID string, rawText *string) *domain.AnalysisResult {
	items := payload.Objects("findings")
	findings := make([]domain.Finding, 0, len(items))
	for _, item := range items {
		findings = append(findings, buildFinding(item))
	}

	return &domain.AnalysisResult{
		FileID:            fileID,
		ReportType:        domain.ParseReportType(payload.StringOr("report_type", string(domain.ReportTypeGeneral))),
		Summary:           payload.StringOr("summary", domain.DefaultSummary),
		Findings:          findings,
		MedicalTerms:      payload.Strings("medical_terms"),
		RawText:           rawText,
		ImageQualityNotes: payload.OptionalString("image_quality_notes"),
		AnalysedAt:        time.Now(),
	}
}

func buildFinding(item domain.Payload) domain.Finding {
	return domain.Finding{
		Parameter:      item.StringOr("parameter", domain.UnknownParameter),
		Value:          item.StringOr("value", domain.MissingValue),
		Unit:           item.OptionalString("unit"),
		ReferenceRange: item.OptionalString("reference_range"),
		Status:         domain.NormalizeSeverity(item.StringOr("status", string(domain.SeverityNormal))),
		Interpretation: item.OptionalString("interpretation"),
	}
}

// BuildSimplifiedReport maps a decoded model payload onto a SimplifiedReport.
//
// Severities use the same synonym table as findings. The disclaimer is
// always the fixed text, whatever the model returned.
func BuildSimplifiedReport(payload domain.Payload, fileID, originalSummary string) *domain.SimplifiedReport {
	items := payload.Objects("abnormalities")
	flags := make([]domain.AbnormalityFlag, 0, len(items))
	for _, item := range items {
		flags = append(flags, domain.AbnormalityFlag{
			Parameter:      item.StringOr("parameter", domain.UnknownParameter),
			Value:          item.StringOr("value", domain.MissingValue),
			Severity:       domain.NormalizeSeverity(item.StringOr("severity", string(domain.SeverityNormal))),
			Explanation:    item.StringOr("explanation", ""),
			Recommendation: item.OptionalString("recommendation"),
		})
	}

	return &domain.SimplifiedReport{
		FileID:            fileID,
		OriginalSummary:   originalSummary,
		SimplifiedSummary: payload.StringOr("simplified_summary", domain.DefaultSummary),
		Abnormalities:     flags,
		FollowupQuestions: payload.Strings("followup_questions"),
		Disclaimer:        domain.DisclaimerText,
	}
}
