// Package services holds the report pipeline: analysis with model
// fallback, patient simplification, uploads, reference retrieval and
// settings. Each service implements a driving port and reaches the
// outside world only through driven ports wired in cmd/medreport.
package services
