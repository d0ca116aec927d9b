package mcp

import (
	"github.com/custodia-labs/medreport/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis analyses uploaded reports.
	Analysis driving.AnalysisService

	// Upload stores report files before analysis.
	Upload driving.UploadService

	// Simplify rewrites analyses for patients. Optional.
	Simplify driving.SimplifyService

	// References answers reference queries. Optional.
	References driving.ReferenceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	if p.Upload == nil {
		return ErrMissingUploadService
	}
	return nil
}
