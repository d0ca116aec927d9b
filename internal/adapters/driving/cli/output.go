package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnalysis(cmd *cobra.Command, p printer, r *domain.AnalysisResult) {
	cmd.Println(p.title("Report Analysis"))
	cmd.Println()
	cmd.Printf("  Type:     %s\n", r.ReportType.Description())
	cmd.Printf("  Overall:  %s\n", p.badge(r.HighestSeverity()))
	cmd.Printf("  File ID:  %s\n", p.muted(r.FileID))
	cmd.Println()
	cmd.Println(p.heading("Summary"))
	cmd.Printf("  %s\n", r.Summary)
	cmd.Println()

	cmd.Println(p.heading("Findings"))
	if len(r.Findings) == 0 {
		cmd.Println("  No findings extracted.")
	}
	for _, f := range r.Findings {
		value := f.Value
		if f.Unit != nil && *f.Unit != "" {
			value += " " + *f.Unit
		}
		cmd.Printf("  %s %s: %s", p.badge(f.Status), f.Parameter, value)
		if f.ReferenceRange != nil && *f.ReferenceRange != "" {
			cmd.Print(p.muted(fmt.Sprintf(" (ref %s)", *f.ReferenceRange)))
		}
		cmd.Println()
		if f.Interpretation != nil && *f.Interpretation != "" {
			cmd.Printf("      %s\n", *f.Interpretation)
		}
	}

	if len(r.MedicalTerms) > 0 {
		cmd.Println()
		cmd.Println(p.heading("Medical Terms"))
		for _, term := range r.MedicalTerms {
			cmd.Printf("  - %s\n", term)
		}
	}
	if r.ImageQualityNotes != nil && *r.ImageQualityNotes != "" {
		cmd.Println()
		cmd.Println(p.heading("Image Quality"))
		cmd.Printf("  %s\n", *r.ImageQualityNotes)
	}
	if r.ReferenceContext != "" {
		cmd.Println()
		cmd.Println(p.heading("Reference Material"))
		cmd.Println(p.muted(r.ReferenceContext))
	}
}

func outputSimplified(cmd *cobra.Command, p printer, r *domain.SimplifiedReport) {
	cmd.Println(p.title("In Plain Language"))
	cmd.Println()
	cmd.Printf("  %s\n", r.SimplifiedSummary)
	cmd.Println()

	if len(r.Abnormalities) > 0 {
		cmd.Println(p.heading("Things To Know"))
		for _, a := range r.Abnormalities {
			cmd.Printf("  %s %s (%s)\n", p.badge(a.Severity), a.Parameter, a.Value)
			cmd.Printf("      %s\n", a.Explanation)
			if a.Recommendation != nil && *a.Recommendation != "" {
				cmd.Printf("      -> %s\n", *a.Recommendation)
			}
		}
		cmd.Println()
	}

	if len(r.FollowupQuestions) > 0 {
		cmd.Println(p.heading("Questions For Your Doctor"))
		for i, q := range r.FollowupQuestions {
			cmd.Printf("  %d. %s\n", i+1, q)
		}
		cmd.Println()
	}

	cmd.Println(p.muted(r.Disclaimer))
}
