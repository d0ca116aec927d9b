package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadJSON bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Store a report for later analysis",
	Long: `Validates and stores a report, extracting its text when possible.
The printed file ID identifies the report in later commands.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return unavailable("upload service")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	result, err := uploadService.Upload(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if uploadJSON {
		return outputJSON(cmd, result)
	}

	cmd.Println(result.Message)
	cmd.Printf("  File ID:   %s\n", result.FileID)
	cmd.Printf("  File type: %s\n", result.FileType)
	cmd.Printf("  Size:      %d bytes\n", result.FileSizeBytes)
	if result.ExtractedText != nil {
		cmd.Printf("  Text:      %d characters extracted\n", len([]rune(*result.ExtractedText)))
	}
	return nil
}
