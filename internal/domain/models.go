package domain

// EvidenceFile is one uploaded file as received from the HTTP boundary.
type EvidenceFile struct {
	Filename string
	Content  []byte
	MimeType string
}

// IsImage reports whether the file carries a supported image MIME type.
func (f EvidenceFile) IsImage() bool {
	return IsImageContentType(f.MimeType)
}

// EvidenceContext is optional applicant context injected into prompts.
// None of it is validated against external truth.
type EvidenceContext struct {
	BusinessType     string `json:"business_type" yaml:"business_type"`
	County           string `json:"county" yaml:"county"`
	State            string `json:"state" yaml:"state"`
	DisasterID       string `json:"disaster_id" yaml:"disaster_id"`
	DeclarationTitle string `json:"declaration_title" yaml:"declaration_title"`
}

// ExpenseItem is a single expense extracted from a document.
type ExpenseItem struct {
	Vendor       string          `json:"vendor" yaml:"vendor"`
	Date         string          `json:"date" yaml:"date"`
	Amount       float64         `json:"amount" yaml:"amount"`
	Category     ExpenseCategory `json:"category" yaml:"category"`
	Confidence   Confidence      `json:"confidence" yaml:"confidence"`
	SourceFile   string          `json:"source_file" yaml:"source_file"`
	SourceText   string          `json:"source_text" yaml:"source_text"`
	DocumentType string          `json:"document_type" yaml:"document_type"`
}

// DamageClaim is a single damage observation extracted from a photo.
type DamageClaim struct {
	Label      string     `json:"label" yaml:"label"`
	Detail     string     `json:"detail" yaml:"detail"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	SourceFile string     `json:"source_file" yaml:"source_file"`
	SourceText string     `json:"source_text" yaml:"source_text"`
	DamageType string     `json:"damage_type,omitempty" yaml:"damage_type,omitempty"`
	Severity   string     `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// RenameEntry maps an uploaded filename to a standardized one.
type RenameEntry struct {
	OriginalFilename    string     `json:"original_filename" yaml:"original_filename"`
	RecommendedFilename string     `json:"recommended_filename" yaml:"recommended_filename"`
	Confidence          Confidence `json:"confidence" yaml:"confidence"`
}

// MissingEvidence is a catalog requirement that no upload satisfied.
type MissingEvidence struct {
	Item   string `json:"item" yaml:"item"`
	Reason string `json:"reason" yaml:"reason"`
}

// FileClassification is the classifier verdict for one file.
type FileClassification struct {
	Filename string   `json:"filename" yaml:"filename"`
	Kind     FileKind `json:"kind" yaml:"kind"`
}

// ExtractionResult is the aggregate response of the evidence pipeline.
type ExtractionResult struct {
	ExpenseItems    []ExpenseItem     `json:"expense_items" yaml:"expense_items"`
	RenameMap       []RenameEntry     `json:"rename_map" yaml:"rename_map"`
	DamageClaims    []DamageClaim     `json:"damage_claims" yaml:"damage_claims"`
	MissingEvidence []MissingEvidence `json:"missing_evidence" yaml:"missing_evidence"`
}

// NewExtractionResult returns a result with non-nil empty lists so it
// serializes as [] rather than null.
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		ExpenseItems:    []ExpenseItem{},
		RenameMap:       []RenameEntry{},
		DamageClaims:    []DamageClaim{},
		MissingEvidence: []MissingEvidence{},
	}
}
