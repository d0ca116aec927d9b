// Package mcp provides an MCP (Model Context Protocol) server adapter for medreport.
// It lets AI assistants analyse medical reports, simplify the results and
// look up reference material.
package mcp

import "errors"

var (
	// ErrMissingAnalysisService is returned when the analysis service is not provided.
	ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

	// ErrMissingUploadService is returned when the upload service is not provided.
	ErrMissingUploadService = errors.New("mcp: upload service is required")

	// ErrSimplifyUnavailable is returned by simplify_report without a simplify service.
	ErrSimplifyUnavailable = errors.New("mcp: simplification is not configured")
)
