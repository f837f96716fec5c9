package models

import "strings"

// Severity is the text-analysis collaborator's triage level
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// ParseSeverity maps a case-insensitive label to a Severity.
// Unknown labels map to SeverityModerate.
func ParseSeverity(label string) Severity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low":
		return SeverityLow
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityModerate
	}
}

// Analysis is a structured suggestion derived from symptoms and notes.
// It only ever feeds optional plaintext fields of a draft record.
type Analysis struct {
	SuggestedDiagnosis string   `json:"suggestedDiagnosis"`
	Summary            string   `json:"summary"`
	Severity           Severity `json:"severity"`
	RecommendedActions []string `json:"recommendedActions"`
}

// Treatment renders the recommended actions as a single treatment line
func (a *Analysis) Treatment() string {
	return strings.Join(a.RecommendedActions, ", ")
}
