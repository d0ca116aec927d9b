// Package domain defines the core business entities for medreport.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Severity: The canonical five-level classification and its normaliser
//   - AnalysisResult: Structured findings extracted from one report
//   - SimplifiedReport: The patient-facing rewrite of an analysis
//   - Payload: Schema-free JSON decoded from a model reply
//   - AppSettings: Provider, retry, upload and reference configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
