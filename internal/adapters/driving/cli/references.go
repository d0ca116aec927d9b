package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	refsGitHub string
	refsRef    string
	refsTopK   int
	refsJSON   bool
)

var referencesCmd = &cobra.Command{
	Use:     "references",
	Aliases: []string{"refs"},
	Short:   "Manage the medical reference library",
	Long: `The reference library grounds analyses in trusted material.
Markdown documents are chunked, embedded and stored locally; analyses then
include the most relevant passages.`,
}

var referencesIngestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest markdown reference documents",
	Long: `Chunks, embeds and stores every *.md file in dir (default: the
configured docs directory). Re-ingesting a file replaces its chunks.

With --github, documents are fetched from a GitHub repository instead:
  medreport references ingest --github owner/repo/path/to/docs

Set GITHUB_TOKEN for private repositories or higher rate limits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReferencesIngest,
}

var referencesQueryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search the reference library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReferencesQuery,
}

var referencesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show reference library statistics",
	Args:  cobra.NoArgs,
	RunE:  runReferencesStats,
}

func init() {
	referencesIngestCmd.Flags().StringVar(&refsGitHub, "github", "", "ingest from a GitHub repository (owner/repo[/path])")
	referencesIngestCmd.Flags().StringVar(&refsRef, "ref", "", "branch, tag or commit for --github (default branch if empty)")
	referencesQueryCmd.Flags().IntVarP(&refsTopK, "top-k", "k", 3, "maximum number of snippets")
	referencesQueryCmd.Flags().BoolVar(&refsJSON, "json", false, "output results as JSON")
	referencesStatsCmd.Flags().BoolVar(&refsJSON, "json", false, "output statistics as JSON")

	referencesCmd.AddCommand(referencesIngestCmd)
	referencesCmd.AddCommand(referencesQueryCmd)
	referencesCmd.AddCommand(referencesStatsCmd)
	rootCmd.AddCommand(referencesCmd)
}

func runReferencesIngest(cmd *cobra.Command, args []string) error {
	if referenceService == nil {
		return unavailable("reference service")
	}

	if refsGitHub != "" {
		if len(args) > 0 {
			return errors.New("pass either a directory or --github, not both")
		}
		if githubSource == nil {
			return errors.New("GitHub ingestion not configured")
		}
		source, err := githubSource(cmd.Context(), refsGitHub, refsRef)
		if err != nil {
			return err
		}
		n, err := referenceService.IngestSource(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Ingested %d chunks from %s\n", n, source.Name())
		return nil
	}

	dir, err := ingestDir(args)
	if err != nil {
		return err
	}
	n, err := referenceService.Ingest(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %d chunks from %s\n", n, dir)
	return nil
}

// ingestDir picks the directory argument or the configured docs directory.
func ingestDir(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if settingsService == nil {
		return "", errors.New("no directory given and settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.References.DocsDir == "" {
		return "", errors.New("no directory given and references.docs_dir is not set")
	}
	return settings.References.DocsDir, nil
}

func runReferencesQuery(cmd *cobra.Command, args []string) error {
	if referenceService == nil {
		return unavailable("reference service")
	}

	snippets, err := referenceService.Query(cmd.Context(), strings.Join(args, " "), refsTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if refsJSON {
		return outputJSON(cmd, snippets)
	}
	if len(snippets) == 0 {
		cmd.Println("No references found.")
		return nil
	}

	p := printer{styled: isTerminal(cmd.OutOrStdout())}
	for i, snip := range snippets {
		cmd.Printf("  [%d] %s %s\n", i+1, snip.Source, p.muted(fmt.Sprintf("(%.2f)", snip.Score)))
		for _, line := range strings.Split(strings.TrimSpace(snip.Content), "\n") {
			cmd.Printf("      %s\n", line)
		}
		cmd.Println()
	}
	return nil
}

func runReferencesStats(cmd *cobra.Command, _ []string) error {
	if referenceService == nil {
		return unavailable("reference service")
	}

	stats, err := referenceService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if refsJSON {
		return outputJSON(cmd, stats)
	}
	cmd.Printf("Collection: %s\n", stats.CollectionName)
	cmd.Printf("Documents:  %d\n", stats.DocumentCount)
	cmd.Printf("Chunks:     %d\n", stats.ChunkCount)
	cmd.Printf("Location:   %s\n", stats.Location)
	return nil
}
