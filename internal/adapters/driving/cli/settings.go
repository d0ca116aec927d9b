package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// stdin is read by the interactive settings commands.
var stdin io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the analysis and simplify models, the embedding
provider used for reference retrieval, and upload limits.

API keys may also come from the environment (GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY); environment values are never written to the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure every model step by step.`,
	RunE:  runSettingsWizard,
}

var settingsAnalysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Configure the analysis model",
	Long:  `Configure the LLM that reads reports and extracts findings.`,
	RunE:  runSettingsAnalysis,
}

var settingsSimplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Configure the simplify model",
	Long:  `Configure the LLM that rewrites analyses in patient-friendly language.`,
	RunE:  runSettingsSimplify,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to search the reference library.`,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsAnalysisCmd)
	settingsCmd.AddCommand(settingsSimplifyCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printLLMSettings(cmd, "Analysis", settings.Analysis)
	printLLMSettings(cmd, "Simplify", settings.Simplify)

	cmd.Println("[Embedding]")
	if settings.Embedding.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	}
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Retry]")
	cmd.Printf("  Max retries: %d\n", settings.Retry.MaxRetries)
	cmd.Printf("  Backoff step: %s\n", settings.Retry.BackoffStep)
	cmd.Println()

	cmd.Println("[Upload]")
	cmd.Printf("  Directory: %s\n", settings.Upload.Dir)
	cmd.Printf("  Max size: %d MB\n", settings.Upload.MaxFileSizeMB)
	cmd.Printf("  Extensions: %s\n", strings.Join(settings.Upload.AllowedExtensions, ", "))
	cmd.Println()

	cmd.Println("[References]")
	if settings.References.Enabled {
		cmd.Println("  Enabled: yes")
		cmd.Printf("  Docs directory: %s\n", settings.References.DocsDir)
		cmd.Printf("  Snippets per analysis: %d\n", settings.References.TopK)
	} else {
		cmd.Println("  Enabled: no")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'medreport settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printLLMSettings(cmd *cobra.Command, title string, s domain.LLMSettings) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", s.Provider.Description())
	cmd.Printf("  Model: %s\n", s.Model)
	if s.VisionModel != "" && s.VisionModel != s.Model {
		cmd.Printf("  Vision model: %s\n", s.VisionModel)
	}
	if len(s.FallbackModels) > 0 {
		cmd.Printf("  Fallbacks: %s\n", strings.Join(s.FallbackModels, ", "))
	}
	if len(s.FallbackVisionModels) > 0 {
		cmd.Printf("  Vision fallbacks: %s\n", strings.Join(s.FallbackVisionModels, ", "))
	}
	if s.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.BaseURL)
	}
	if s.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(s.APIKey))
	}
	cmd.Printf("  Temperature: %.2f\n", s.Temperature)
	cmd.Printf("  Status: %s\n", configuredStatus(s.IsConfigured()))
	cmd.Println()
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("MedReport Settings Wizard")
	cmd.Println("=========================")
	cmd.Println()

	reader := bufio.NewReader(stdin)

	cmd.Println("Step 1: Analysis Model")
	cmd.Println("----------------------")
	cmd.Println("This model reads your reports. It must accept images for scanned documents.")
	cmd.Println()
	if err := configureAnalysisProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Simplify Model")
	cmd.Println("----------------------")
	cmd.Println("This model explains the analysis in everyday language.")
	cmd.Println()
	if err := configureSimplifyProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Embedding Provider (optional)")
	cmd.Println("-------------------------------------")
	cmd.Println("An embedding provider lets analyses cite your reference library.")
	cmd.Print("Configure one now? [y/N]: ")
	if answer := strings.ToLower(readLine(reader)); answer == "y" || answer == "yes" {
		cmd.Println()
		if err := configureEmbeddingProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped. Reference retrieval stays off.")
		cmd.Println()
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsAnalysis(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureAnalysisProvider(cmd, bufio.NewReader(stdin))
}

func runSettingsSimplify(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureSimplifyProvider(cmd, bufio.NewReader(stdin))
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(stdin))
}

func configureAnalysisProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := promptProvider(cmd, reader, "Analysis",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	if err := settingsService.SetAnalysisProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure analysis model: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateAnalysisConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("analysis configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Analysis model configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

// configureSimplifyProvider saves the simplify model. There is no ping:
// a broken simplify model only affects the optional simplify step.
func configureSimplifyProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := promptProvider(cmd, reader, "Simplify",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	if err := settingsService.SetSimplifyProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure simplify model: %w", err)
	}

	cmd.Printf("Simplify model configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := promptProvider(cmd, reader, "Embedding",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

// promptProvider asks for a provider, a model and, for cloud providers, an API key.
func promptProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	role string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, string, string, error) {
	cmd.Printf("Select %s Provider\n", role)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}

	return provider, model, apiKey, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
