package handler

import (
	"reliefdocs/internal/domain"
	"reliefdocs/internal/ocr"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LedgerRequest is the body of a ledger export.
type LedgerRequest struct {
	ExpenseItems []domain.ExpenseItem `json:"expense_items"`
}

// NarrativeRequest is the body of a damage narrative request.
type NarrativeRequest struct {
	DamageClaims []domain.DamageClaim   `json:"damage_claims"`
	Context      domain.EvidenceContext `json:"context"`
}

// --- Response Types ---

// HealthResponse represents the liveness response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadinessResponse reports which OCR tools the service found at startup.
type ReadinessResponse struct {
	Status string         `json:"status" example:"degraded"`
	OCR    ocr.ToolStatus `json:"ocr"`
}

// NarrativeResponse carries the generated damage paragraph.
type NarrativeResponse struct {
	Narrative string `json:"narrative" example:"Photos show missing roof shingles and water staining on the kitchen ceiling."`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// --- Extraction Result Schema (for documentation) ---

// ExtractionResultDoc mirrors domain.ExtractionResult with examples.
type ExtractionResultDoc struct {
	ExpenseItems    []ExpenseItemDoc     `json:"expense_items"`
	RenameMap       []RenameEntryDoc     `json:"rename_map"`
	DamageClaims    []DamageClaimDoc     `json:"damage_claims"`
	MissingEvidence []MissingEvidenceDoc `json:"missing_evidence"`
}

// ExpenseItemDoc documents one extracted expense.
type ExpenseItemDoc struct {
	Vendor       string  `json:"vendor" example:"Acme Hardware"`
	Date         string  `json:"date" example:"2024-01-15"`
	Amount       float64 `json:"amount" example:"45.00"`
	Category     string  `json:"category" example:"repairs" enums:"rent,utilities,payroll,supplies,repairs,insurance,other"`
	Confidence   string  `json:"confidence" example:"high" enums:"high,medium,needs_review"`
	SourceFile   string  `json:"source_file" example:"receipt.jpg"`
	SourceText   string  `json:"source_text" example:"Total: $45.00"`
	DocumentType string  `json:"document_type" example:"receipt"`
}

// DamageClaimDoc documents one damage observation.
type DamageClaimDoc struct {
	Label      string `json:"label" example:"Water damage - kitchen ceiling"`
	Detail     string `json:"detail" example:"Brown staining across the ceiling drywall near the light fixture."`
	Confidence string `json:"confidence" example:"medium" enums:"high,medium,needs_review"`
	SourceFile string `json:"source_file" example:"kitchen.jpg"`
	SourceText string `json:"source_text" example:"Visual: stained ceiling"`
	DamageType string `json:"damage_type,omitempty" example:"water"`
	Severity   string `json:"severity,omitempty" example:"moderate"`
}

// RenameEntryDoc documents one rename suggestion.
type RenameEntryDoc struct {
	OriginalFilename    string `json:"original_filename" example:"IMG_0042.JPG"`
	RecommendedFilename string `json:"recommended_filename" example:"receipt_acme_hardware_2024-01-15_45.00.jpg"`
	Confidence          string `json:"confidence" example:"high"`
}

// MissingEvidenceDoc documents one missing requirement.
type MissingEvidenceDoc struct {
	Item   string `json:"item" example:"Insurance policy or declaration page"`
	Reason string `json:"reason" example:"Required for SBA and FEMA duplication-of-benefits checks."`
}
