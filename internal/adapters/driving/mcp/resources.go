package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for medreport resources.
	uriScheme = "medreport://"

	severityLevelsURI = uriScheme + "severity-levels"
	referenceStatsURI = uriScheme + "references/stats"
	jsonMIMEType      = "application/json"
)

// severityLevel describes one canonical severity.
type severityLevel struct {
	Level       string `json:"level"`
	Rank        int    `json:"rank"`
	Description string `json:"description"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.inner.AddResource(&mcp.Resource{
		URI:         severityLevelsURI,
		Name:        "severity-levels",
		Description: "The severity levels used for findings, mildest first",
		MIMEType:    jsonMIMEType,
	}, s.handleSeverityLevelsResource)

	if s.ports.References != nil {
		s.inner.AddResource(&mcp.Resource{
			URI:         referenceStatsURI,
			Name:        "reference-stats",
			Description: "Size of the medical reference library",
			MIMEType:    jsonMIMEType,
		}, s.handleReferenceStatsResource)
	}
}

// handleSeverityLevelsResource lists every canonical severity.
func (s *Server) handleSeverityLevelsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	levels := make([]severityLevel, 0, len(domain.AllSeverities()))
	for _, sev := range domain.AllSeverities() {
		levels = append(levels, severityLevel{
			Level:       sev.String(),
			Rank:        sev.Rank(),
			Description: sev.Description(),
		})
	}
	return jsonResource(req.Params.URI, levels)
}

// handleReferenceStatsResource reports reference corpus statistics.
func (s *Server) handleReferenceStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.References == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.References.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading reference stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		}},
	}, nil
}
