package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

var (
	analyzeSimplify bool
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyse a medical report",
	Long: `Uploads a report and extracts its findings with the analysis model.

Text is read from PDFs and TXT files. Images and scanned PDFs are sent to
the vision model. With --simplify the findings are also explained in plain
language.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeSimplify, "simplify", "s", false, "also explain the report in plain language")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput is the JSON shape printed by analyze --json.
type analyzeOutput struct {
	Upload     *domain.UploadResult     `json:"upload"`
	Analysis   *domain.AnalysisResult   `json:"analysis"`
	Simplified *domain.SimplifiedReport `json:"simplified,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return unavailable("upload service")
	}
	if analysisService == nil {
		return unavailable("analysis service")
	}
	if analyzeSimplify && simplifyService == nil {
		return unavailable("simplify service")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	var out analyzeOutput
	err = runWithSpinner(cmd.Context(), cmd.OutOrStdout(), "Analysing report...", func(ctx context.Context) error {
		upload, err := uploadService.Upload(ctx, filepath.Base(args[0]), data)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		out.Upload = upload

		analysis, err := analysisService.AnalyzeFile(ctx, upload.FileID)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		out.Analysis = analysis

		if analyzeSimplify {
			simplified, err := simplifyService.Simplify(ctx, analysis.Summary, analysis.Findings, analysis.FileID)
			if err != nil {
				return fmt.Errorf("simplification failed: %w", err)
			}
			out.Simplified = simplified
		}
		return nil
	})
	if err != nil {
		return err
	}

	if analyzeJSON {
		return outputJSON(cmd, out)
	}

	p := printer{styled: isTerminal(cmd.OutOrStdout())}
	outputAnalysis(cmd, p, out.Analysis)
	if out.Simplified != nil {
		cmd.Println()
		outputSimplified(cmd, p, out.Simplified)
	}
	return nil
}
