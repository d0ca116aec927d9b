package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

var (
	simplifySummary  string
	simplifyFindings string
	simplifyFileID   string
	simplifyJSON     bool
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Explain analysed findings in plain language",
	Long: `Rewrites an analysis for a patient.

--findings reads a JSON file holding either a list of findings or the
output of 'medreport analyze --json'. The summary and file ID are taken from
that output when not given as flags.`,
	Args: cobra.NoArgs,
	RunE: runSimplify,
}

func init() {
	simplifyCmd.Flags().StringVar(&simplifySummary, "summary", "", "analysis summary")
	simplifyCmd.Flags().StringVarP(&simplifyFindings, "findings", "f", "", "JSON file with findings")
	simplifyCmd.Flags().StringVar(&simplifyFileID, "file-id", "", "identifier of the analysed report")
	simplifyCmd.Flags().BoolVar(&simplifyJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(simplifyCmd)
}

func runSimplify(cmd *cobra.Command, _ []string) error {
	if simplifyService == nil {
		return unavailable("simplify service")
	}

	summary, fileID := simplifySummary, simplifyFileID
	var findings []domain.Finding

	if simplifyFindings != "" {
		data, err := os.ReadFile(simplifyFindings)
		if err != nil {
			return fmt.Errorf("failed to read findings: %w", err)
		}
		loaded, err := parseFindingsFile(data)
		if err != nil {
			return err
		}
		findings = loaded.Findings
		if summary == "" {
			summary = loaded.Summary
		}
		if fileID == "" {
			fileID = loaded.FileID
		}
	}
	if summary == "" && len(findings) == 0 {
		return errors.New("nothing to simplify: pass --summary and/or --findings")
	}

	report, err := simplifyService.Simplify(cmd.Context(), summary, findings, fileID)
	if err != nil {
		return fmt.Errorf("simplification failed: %w", err)
	}

	if simplifyJSON {
		return outputJSON(cmd, report)
	}
	outputSimplified(cmd, printer{styled: isTerminal(cmd.OutOrStdout())}, report)
	return nil
}

// parseFindingsFile accepts a findings list, an analysis result, or
// analyze --json output. Statuses are normalised.
func parseFindingsFile(data []byte) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult

	var list []domain.Finding
	if err := json.Unmarshal(data, &list); err == nil {
		result.Findings = list
	} else {
		var wrapped struct {
			Analysis *domain.AnalysisResult `json:"analysis"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: findings file is not valid JSON", domain.ErrInvalidInput)
		}
		if wrapped.Analysis != nil {
			result = *wrapped.Analysis
		} else if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("%w: findings file is not valid JSON", domain.ErrInvalidInput)
		}
	}

	for i := range result.Findings {
		result.Findings[i].Status = domain.NormalizeSeverity(string(result.Findings[i].Status))
	}
	return &result, nil
}
