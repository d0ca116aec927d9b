// Package cli provides the medreport command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/core/ports/driving"
	"github.com/custodia-labs/medreport/internal/logger"
)

// version is set at build time.
var version = "dev"

// PromptWatcher reloads prompts while a long-running command is active.
type PromptWatcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Services holds everything the commands drive.
// Nil services disable the commands that need them.
type Services struct {
	Analysis   driving.AnalysisService
	Simplify   driving.SimplifyService
	Upload     driving.UploadService
	References driving.ReferenceService
	Settings   driving.SettingsService
	Prompts    PromptWatcher

	// GitHubSource builds a reference source for "owner/repo[/path]" at ref.
	GitHubSource func(ctx context.Context, repo, ref string) (driven.ReferenceSource, error)

	// Warnings describe services that could not be created.
	Warnings []string
}

var (
	analysisService  driving.AnalysisService
	simplifyService  driving.SimplifyService
	uploadService    driving.UploadService
	referenceService driving.ReferenceService
	settingsService  driving.SettingsService
	promptWatcher    PromptWatcher
	githubSource     func(ctx context.Context, repo, ref string) (driven.ReferenceSource, error)
	startupWarnings  []string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "medreport",
	Short: "Understand medical reports with AI",
	Long: `medreport reads lab reports, radiology reports and prescriptions,
extracts structured findings with an LLM and explains them in plain language.

Reports can be PDF, PNG, JPG or TXT files. Scanned documents and images are
read by a vision model.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logging")
}

// Configure installs the services used by the commands.
func Configure(s Services) {
	analysisService = s.Analysis
	simplifyService = s.Simplify
	uploadService = s.Upload
	referenceService = s.References
	settingsService = s.Settings
	promptWatcher = s.Prompts
	githubSource = s.GitHubSource
	startupWarnings = s.Warnings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// unavailable explains why a service is missing, including any startup warnings.
func unavailable(what string) error {
	if len(startupWarnings) == 0 {
		return fmt.Errorf("%s not configured", what)
	}
	msg := what + " not configured"
	for _, w := range startupWarnings {
		msg += "\n  - " + w
	}
	return errors.New(msg)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
