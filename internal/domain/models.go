package domain

// CodingRequest is the validated clinical input for one coding run.
// Context fields are free-form; empty means the caller did not specify them.
type CodingRequest struct {
	ClinicalInput string `json:"clinical_input"`
	Laterality    string `json:"laterality"`
	PatientType   string `json:"patient_type"`
	Setting       string `json:"setting"`
	TimeSpent     string `json:"time_spent"`
}

// PrimaryCode is the single best CPT suggestion.
type PrimaryCode struct {
	CPTCode     string     `json:"cpt_code"`
	Description string     `json:"description"`
	Confidence  Confidence `json:"confidence"`
}

// Alternative is a CPT code the coder should weigh against the primary code.
type Alternative struct {
	CPTCode     string `json:"cpt_code"`
	Description string `json:"description"`
	WhyConsider string `json:"why_consider"`
}

// ICD10Code is a diagnosis establishing medical necessity for the procedure.
type ICD10Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Necessity   string `json:"necessity"`
}

// Modifier is a CPT modifier evaluation. Only Apply=true entries belong on the claim.
type Modifier struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Apply  bool   `json:"apply"`
	Reason string `json:"reason"`
}

// Warning is an advisory note for the coder.
type Warning struct {
	Type    WarningType `json:"type"`
	Message string      `json:"message"`
}

// CodingResult is the normalized response contract handed to the UI.
// Slices are always non-nil so they serialize as [] rather than null.
type CodingResult struct {
	PrimaryCode        PrimaryCode   `json:"primary_code"`
	Alternatives       []Alternative `json:"alternatives"`
	ICD10Codes         []ICD10Code   `json:"icd10_codes"`
	Modifiers          []Modifier    `json:"modifiers"`
	Rationale          string        `json:"rationale"`
	MissingInformation []string      `json:"missing_information"`
	Warnings           []Warning     `json:"warnings"`
	CleanClaimReady    bool          `json:"clean_claim_ready"`
}

// AppliedModifiers returns the modifiers marked for application on the claim.
func (r *CodingResult) AppliedModifiers() []Modifier {
	out := make([]Modifier, 0, len(r.Modifiers))
	for _, m := range r.Modifiers {
		if m.Apply {
			out = append(out, m)
		}
	}
	return out
}
