package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// GenerateCodesRequest represents the generate-codes request body. Only
// clinical_input is required; context fields are forwarded verbatim.
type GenerateCodesRequest struct {
	ClinicalInput string `json:"clinical_input" example:"Total knee arthroplasty, right knee, severe OA, failed conservative treatment"`
	Laterality    string `json:"laterality,omitempty" example:"Right"`
	PatientType   string `json:"patient_type,omitempty" example:"Established"`
	Setting       string `json:"setting,omitempty" example:"Inpatient"`
	TimeSpent     string `json:"time_spent,omitempty" example:"45 minutes"`
}

// HealthResponse represents the health probe body.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"redis not reachable"`
}
