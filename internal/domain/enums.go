package domain

import "strings"

// Confidence is the oracle's certainty in a code suggestion.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence maps free text onto the confidence vocabulary.
// Anything unrecognized is treated as low confidence.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// WarningType is the severity of a coder-facing warning.
type WarningType string

const (
	WarningTypeError   WarningType = "error"
	WarningTypeWarning WarningType = "warning"
	WarningTypeInfo    WarningType = "info"
)

// ParseWarningType maps free text onto the warning vocabulary, defaulting to warning.
func ParseWarningType(s string) WarningType {
	switch WarningType(strings.ToLower(strings.TrimSpace(s))) {
	case WarningTypeError:
		return WarningTypeError
	case WarningTypeInfo:
		return WarningTypeInfo
	default:
		return WarningTypeWarning
	}
}

// Context defaults substituted into the user prompt when a field is blank.
const (
	DefaultLaterality  = "Not specified"
	DefaultPatientType = "Not specified"
	DefaultSetting     = "Office/Outpatient"
	DefaultTimeSpent   = "Not specified"
)

// Clinical input bounds, measured in characters.
const (
	MinClinicalInputLength = 10
	MaxClinicalInputLength = 15000
)
