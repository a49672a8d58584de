package validator

import (
	"strings"
	"unicode/utf8"

	"orthocode/internal/domain"
)

// Rule is a single check on the clinical input text.
type Rule interface {
	// Check returns nil when raw passes, or the classified failure.
	Check(raw string) *domain.CodingError
	RuleKey() string
}

type minLengthRule struct{ min int }

func (r minLengthRule) RuleKey() string { return "clinical_input.min_length" }

func (r minLengthRule) Check(raw string) *domain.CodingError {
	if n := utf8.RuneCountInString(strings.TrimSpace(raw)); n < r.min {
		return domain.NewCodingError(domain.CodeInputTooShort,
			"clinical input too short after trimming")
	}
	return nil
}

type maxLengthRule struct{ max int }

func (r maxLengthRule) RuleKey() string { return "clinical_input.max_length" }

func (r maxLengthRule) Check(raw string) *domain.CodingError {
	if n := utf8.RuneCountInString(raw); n > r.max {
		return domain.NewCodingError(domain.CodeInputTooLong,
			"clinical input exceeds maximum length")
	}
	return nil
}
