// Package normalisers provides implementations of the Normaliser interface
// for the report formats medreport accepts. Each normaliser knows how to
// extract text from one kind of uploaded file.
//
// Normalisers are registered with a Registry at startup; NewDefaultRegistry
// wires the PDF, plain text and image normalisers.
package normalisers
