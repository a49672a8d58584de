package normalizer

import (
	"strconv"
	"strings"

	"orthocode/internal/domain"
)

const (
	// UnknownCPTCode marks a result where the model named no primary procedure.
	UnknownCPTCode = "UNKNOWN"

	defaultRationale          = "No rationale provided."
	unknownPrimaryDescription = "Unable to determine code"
)

// Normalize coerces an untyped model response into a CodingResult. It never fails:
// absent or mistyped fields fall back to safe defaults, and clean_claim_ready is
// forced to false while any missing information is listed.
func Normalize(parsed map[string]any) domain.CodingResult {
	result := domain.CodingResult{
		PrimaryCode:        primaryCode(parsed["primary_code"]),
		Alternatives:       alternatives(parsed["alternatives"]),
		ICD10Codes:         icd10Codes(parsed["icd10_codes"]),
		Modifiers:          modifiers(parsed["modifiers"]),
		Rationale:          stringField(parsed["rationale"]),
		MissingInformation: stringList(parsed["missing_information"]),
		Warnings:           warnings(parsed["warnings"]),
	}
	if strings.TrimSpace(result.Rationale) == "" {
		result.Rationale = defaultRationale
	}

	ready, _ := parsed["clean_claim_ready"].(bool)
	result.CleanClaimReady = ready && len(result.MissingInformation) == 0

	return result
}

func primaryCode(v any) domain.PrimaryCode {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.PrimaryCode{
			CPTCode:     UnknownCPTCode,
			Description: unknownPrimaryDescription,
			Confidence:  domain.ConfidenceLow,
		}
	}
	pc := domain.PrimaryCode{
		CPTCode:     strings.TrimSpace(stringField(obj["cpt_code"])),
		Description: stringField(obj["description"]),
		Confidence:  domain.ParseConfidence(stringField(obj["confidence"])),
	}
	if pc.CPTCode == "" {
		pc.CPTCode = UnknownCPTCode
	}
	return pc
}

func alternatives(v any) []domain.Alternative {
	out := []domain.Alternative{}
	for _, obj := range objects(v) {
		out = append(out, domain.Alternative{
			CPTCode:     stringField(obj["cpt_code"]),
			Description: stringField(obj["description"]),
			WhyConsider: stringField(obj["why_consider"]),
		})
	}
	return out
}

func icd10Codes(v any) []domain.ICD10Code {
	out := []domain.ICD10Code{}
	for _, obj := range objects(v) {
		out = append(out, domain.ICD10Code{
			Code:        stringField(obj["code"]),
			Description: stringField(obj["description"]),
			Necessity:   stringField(obj["necessity"]),
		})
	}
	return out
}

func modifiers(v any) []domain.Modifier {
	out := []domain.Modifier{}
	for _, obj := range objects(v) {
		out = append(out, domain.Modifier{
			Code:   stringField(obj["code"]),
			Name:   stringField(obj["name"]),
			Apply:  boolField(obj["apply"]),
			Reason: stringField(obj["reason"]),
		})
	}
	return out
}

// warnings accepts objects and, leniently, bare strings.
func warnings(v any) []domain.Warning {
	out := []domain.Warning{}
	list, _ := v.([]any)
	for _, item := range list {
		switch t := item.(type) {
		case map[string]any:
			out = append(out, domain.Warning{
				Type:    domain.ParseWarningType(stringField(t["type"])),
				Message: stringField(t["message"]),
			})
		case string:
			if strings.TrimSpace(t) != "" {
				out = append(out, domain.Warning{Type: domain.WarningTypeWarning, Message: t})
			}
		}
	}
	return out
}

// stringList accepts a list of strings or a single string. Blank entries are dropped.
func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	case []any:
		for _, item := range t {
			s := stringField(item)
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func objects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func boolField(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}
