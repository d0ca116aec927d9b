// Command medreport analyses medical reports with LLMs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/medreport/internal/adapters/driven/ai"
	"github.com/custodia-labs/medreport/internal/adapters/driven/config/file"
	"github.com/custodia-labs/medreport/internal/adapters/driven/refsource/github"
	"github.com/custodia-labs/medreport/internal/adapters/driven/storage/disk"
	"github.com/custodia-labs/medreport/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/medreport/internal/adapters/driving/cli"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/core/services"
	"github.com/custodia-labs/medreport/internal/normalisers"
	"github.com/custodia-labs/medreport/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return err
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading settings: %v\n", err)
		return err
	}

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	aiServices := ai.Init(ctx, settings)
	defer aiServices.Close()
	warnings := aiServices.Warnings

	svcs := cli.Services{
		Settings: settingsService,
		Prompts:  prompts,
		GitHubSource: func(ctx context.Context, repo, ref string) (driven.ReferenceSource, error) {
			owner, name, prefix, err := github.ParseRepo(repo)
			if err != nil {
				return nil, err
			}
			return github.NewSource(ctx, github.Config{
				Owner:      owner,
				Repo:       name,
				Ref:        ref,
				PathPrefix: prefix,
				Token:      configStore.GetString("keys.github"),
			})
		},
	}

	registry := normalisers.NewDefaultRegistry()

	fileStore, err := disk.NewFileStore(underHome(home, settings.Upload.Dir))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("uploads: %v", err))
	} else {
		svcs.Upload = services.NewUploadService(fileStore, registry, settings.Upload)
	}

	if aiServices.EmbeddingService != nil {
		store, err := sqlite.NewStore(filepath.Join(home, "data"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reference store: %v", err))
		} else {
			defer store.Close()
			svcs.References = services.NewReferenceService(
				aiServices.EmbeddingService,
				store,
				chunker.NewFromConfig(domain.DefaultChunkingConfig()),
				settings.References,
			)
		}
	} else if settings.Embedding.Provider == "" {
		warnings = append(warnings,
			"embedding provider not configured. Run 'medreport settings embedding' to enable references")
	}

	if aiServices.AnalysisLLM != nil {
		analysis := services.NewAnalysisService(
			services.NewFallbackGenerator(aiServices.AnalysisLLM, settings.Retry),
			prompts,
			settings.Analysis,
		)
		analysis.SetNormalisers(registry)
		if fileStore != nil {
			analysis.SetFileStore(fileStore)
		}
		if settings.References.Enabled && svcs.References != nil {
			analysis.SetReferenceService(svcs.References)
		}
		svcs.Analysis = analysis
	}

	if aiServices.SimplifyLLM != nil {
		svcs.Simplify = services.NewSimplifyService(
			services.NewFallbackGenerator(aiServices.SimplifyLLM, settings.Retry),
			prompts,
			settings.Simplify,
		)
	}

	svcs.Warnings = warnings
	cli.Configure(svcs)
	cli.SetVersion(version)

	return cli.Execute(ctx)
}

// underHome resolves a relative directory against ~/.medreport.
func underHome(home, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(home, dir)
}
