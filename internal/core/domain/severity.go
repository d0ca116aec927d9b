package domain

import "strings"

// Severity is the canonical classification attached to every finding and
// abnormality flag. Raw model vocabulary is never stored; it is always
// passed through NormalizeSeverity first.
type Severity string

// Canonical severity levels, in escalation order.
const (
	SeverityNormal   Severity = "normal"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid returns true if the severity is one of the canonical levels.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityNormal, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Rank returns the escalation order of the level (normal = 0, critical = 4).
// Unknown values rank as -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityNormal:
		return 0
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return -1
	}
}

// IsAbnormal returns true for every level above normal.
func (s Severity) IsAbnormal() bool {
	return s.Rank() > 0
}

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// Description returns a human-readable description of the level.
func (s Severity) Description() string {
	switch s {
	case SeverityNormal:
		return "Normal (within reference range)"
	case SeverityLow:
		return "Low (slightly outside range, may need monitoring)"
	case SeverityMedium:
		return "Medium (moderately abnormal, discuss with doctor)"
	case SeverityHigh:
		return "High (significantly abnormal, needs attention)"
	case SeverityCritical:
		return "Critical (urgent medical attention)"
	default:
		return unknownDescription
	}
}

// AllSeverities returns every canonical level in escalation order.
func AllSeverities() []Severity {
	return []Severity{
		SeverityNormal,
		SeverityLow,
		SeverityMedium,
		SeverityHigh,
		SeverityCritical,
	}
}

// severitySynonym maps one phrase a model may emit onto a canonical level.
type severitySynonym struct {
	phrase string
	level  Severity
}

// severitySynonyms is scanned in order during partial matching, so the
// first entry that matches wins. Do not reorder or turn into a map.
var severitySynonyms = []severitySynonym{
	{"borderline", SeverityLow},
	{"slightly elevated", SeverityLow},
	{"slightly low", SeverityLow},
	{"elevated", SeverityMedium},
	{"abnormal", SeverityMedium},
	{"mildly abnormal", SeverityLow},
	{"moderately abnormal", SeverityMedium},
	{"severely abnormal", SeverityHigh},
	{"moderate", SeverityMedium},
	{"mild", SeverityLow},
	{"severe", SeverityHigh},
	{"very high", SeverityCritical},
	{"very low", SeverityHigh},
	{"extremely high", SeverityCritical},
	{"extremely low", SeverityCritical},
	{"out of range", SeverityMedium},
	{"within range", SeverityNormal},
	{"within normal limits", SeverityNormal},
	{"ok", SeverityNormal},
	{"fine", SeverityNormal},
	{"good", SeverityNormal},
	{"warning", SeverityMedium},
	{"danger", SeverityHigh},
	{"urgent", SeverityCritical},
}

// SeveritySynonyms returns a copy of the synonym table as ordered
// phrase/level pairs.
func SeveritySynonyms() [][2]string {
	pairs := make([][2]string, len(severitySynonyms))
	for i, syn := range severitySynonyms {
		pairs[i] = [2]string{syn.phrase, string(syn.level)}
	}
	return pairs
}

// NormalizeSeverity maps an arbitrary severity string onto a canonical level.
//
// Resolution order: exact canonical name, exact synonym, then the first
// synonym (in table order) that contains or is contained in the input.
// Anything left over is treated as low rather than normal so an unknown
// label never hides a possible abnormality.
func NormalizeSeverity(raw string) Severity {
	s := strings.ToLower(strings.TrimSpace(raw))

	if level := Severity(s); level.IsValid() {
		return level
	}

	for _, syn := range severitySynonyms {
		if syn.phrase == s {
			return syn.level
		}
	}

	for _, syn := range severitySynonyms {
		if strings.Contains(s, syn.phrase) || strings.Contains(syn.phrase, s) {
			return syn.level
		}
	}

	return SeverityLow
}
