package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"orthocode/internal/domain"
)

var defaultRegistry = DefaultRegistry(domain.MinClinicalInputLength, domain.MaxClinicalInputLength)

// ReadCodingRequest reads a request body and validates it. A body cut off by
// http.MaxBytesReader is reported as INPUT_TOO_LONG.
func ReadCodingRequest(r io.Reader) (*domain.CodingRequest, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, domain.WrapCodingError(domain.CodeInputTooLong,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), err)
		}
		return nil, domain.WrapCodingError(domain.CodeMissingInput, "reading request body", err)
	}
	return DecodeCodingRequest(body)
}

// DecodeCodingRequest parses a JSON body and validates it.
func DecodeCodingRequest(body []byte) (*domain.CodingRequest, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, domain.WrapCodingError(domain.CodeMissingInput, "request body is not a JSON object", err)
	}
	return ValidateCodingRequest(raw)
}

// ValidateCodingRequest checks an untyped request object. Rules run in order:
// presence, trimmed minimum length, raw maximum length.
func ValidateCodingRequest(raw map[string]any) (*domain.CodingRequest, error) {
	input, ok := raw["clinical_input"].(string)
	if !ok || input == "" {
		return nil, domain.NewCodingError(domain.CodeMissingInput, "clinical_input is required and must be a string")
	}

	for _, rule := range defaultRegistry.All() {
		if ce := rule.Check(input); ce != nil {
			return nil, ce
		}
	}

	return &domain.CodingRequest{
		ClinicalInput: strings.TrimSpace(input),
		Laterality:    optionalString(raw["laterality"]),
		PatientType:   optionalString(raw["patient_type"]),
		Setting:       optionalString(raw["setting"]),
		TimeSpent:     optionalString(raw["time_spent"]),
	}, nil
}

// optionalString forwards context fields verbatim. Scalars are stringified so a
// numeric time_spent still reaches the prompt; anything else is dropped.
func optionalString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64, bool, json.Number:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
