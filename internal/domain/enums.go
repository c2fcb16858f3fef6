package domain

import "strings"

// Supported evidence MIME types.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
	MIMEGIF  = "image/gif"
	MIMEPDF  = "application/pdf"
)

// ImageContentTypes lists the image MIME types that can be OCR'd directly and sent to a vision model.
var ImageContentTypes = map[string]bool{
	MIMEJPEG: true,
	MIMEPNG:  true,
	MIMEWebP: true,
	MIMEGIF:  true,
}

// AllowedContentTypes is the upload allow-list for evidence files.
var AllowedContentTypes = map[string]bool{
	MIMEJPEG: true,
	MIMEPNG:  true,
	MIMEWebP: true,
	MIMEGIF:  true,
	MIMEPDF:  true,
}

// IsImageContentType reports whether contentType is a supported image type.
func IsImageContentType(contentType string) bool {
	return ImageContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// Confidence is the three-valued trust tag attached to every extracted record.
type Confidence string

const (
	ConfidenceHigh        Confidence = "high"
	ConfidenceMedium      Confidence = "medium"
	ConfidenceNeedsReview Confidence = "needs_review"
)

// rank orders confidence levels; higher is more trusted.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// AtMost returns the lower of c and other. It never raises confidence.
func (c Confidence) AtMost(other Confidence) Confidence {
	if other.rank() < c.rank() {
		return other
	}
	return c
}

// ParseConfidence maps free-form model output to a Confidence.
// Anything unrecognised is treated as needs_review.
func ParseConfidence(s string) Confidence {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch Confidence(norm) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceNeedsReview
	}
}

// ExpenseCategory is the fixed expense vocabulary.
type ExpenseCategory string

const (
	CategoryRent      ExpenseCategory = "rent"
	CategoryUtilities ExpenseCategory = "utilities"
	CategoryPayroll   ExpenseCategory = "payroll"
	CategorySupplies  ExpenseCategory = "supplies"
	CategoryRepairs   ExpenseCategory = "repairs"
	CategoryInsurance ExpenseCategory = "insurance"
	CategoryOther     ExpenseCategory = "other"
)

// ExpenseCategories lists the vocabulary in prompt order.
var ExpenseCategories = []ExpenseCategory{
	CategoryRent,
	CategoryUtilities,
	CategoryPayroll,
	CategorySupplies,
	CategoryRepairs,
	CategoryInsurance,
	CategoryOther,
}

// ParseExpenseCategory maps model output onto the vocabulary; unknown values become "other".
func ParseExpenseCategory(s string) ExpenseCategory {
	norm := ExpenseCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range ExpenseCategories {
		if c == norm {
			return c
		}
	}
	return CategoryOther
}

// FileKind is the classification axis separating text documents from visual evidence.
type FileKind string

const (
	FileKindDocument FileKind = "document"
	FileKindPhoto    FileKind = "photo"
)

// ParseFileKind maps model output to a FileKind, defaulting to document.
func ParseFileKind(s string) FileKind {
	if FileKind(strings.ToLower(strings.TrimSpace(s))) == FileKindPhoto {
		return FileKindPhoto
	}
	return FileKindDocument
}

// LedgerFormat identifies a ledger export encoding.
type LedgerFormat string

const (
	LedgerFormatCSV  LedgerFormat = "csv"
	LedgerFormatXLSX LedgerFormat = "xlsx"
)
