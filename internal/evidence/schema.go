package evidence

import "encoding/json"

// Schema names double as cache keys in the gateway.
const (
	classificationSchemaName = "file_classification"
	expenseSchemaName        = "expense_extraction"
	damageSchemaName         = "damage_extraction"
)

var classificationSchema = json.RawMessage(`{
  "type": "object",
  "required": ["classifications"],
  "properties": {
    "classifications": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["filename", "kind"],
        "properties": {
          "filename": {"type": "string"},
          "kind": {"type": "string", "enum": ["document", "photo"]}
        }
      }
    }
  }
}`)

var expenseSchema = json.RawMessage(`{
  "type": "object",
  "required": ["expense_items"],
  "properties": {
    "expense_items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["vendor", "date", "amount", "category", "confidence", "source_file", "source_text"],
        "properties": {
          "vendor": {"type": "string"},
          "date": {"type": "string"},
          "amount": {"type": "number"},
          "category": {"type": "string"},
          "confidence": {"type": "string", "enum": ["high", "medium", "needs_review"]},
          "source_file": {"type": "string"},
          "source_text": {"type": "string"},
          "document_type": {"type": "string"}
        }
      }
    }
  }
}`)

var damageSchema = json.RawMessage(`{
  "type": "object",
  "required": ["damage_claims"],
  "properties": {
    "damage_claims": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "detail", "confidence"],
        "properties": {
          "label": {"type": "string", "minLength": 1},
          "detail": {"type": "string"},
          "confidence": {"type": "string", "enum": ["high", "medium", "needs_review"]},
          "source_file": {"type": "string"},
          "source_text": {"type": "string"},
          "damage_type": {"type": "string"},
          "severity": {"type": "string"}
        }
      }
    }
  }
}`)

// Wire shapes decoded from validated model output. Enumerations stay strings
// here and are normalised into domain types afterwards.

type classificationOutput struct {
	Classifications []struct {
		Filename string `json:"filename"`
		Kind     string `json:"kind"`
	} `json:"classifications"`
}

type rawExpense struct {
	Vendor       string  `json:"vendor"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category"`
	Confidence   string  `json:"confidence"`
	SourceFile   string  `json:"source_file"`
	SourceText   string  `json:"source_text"`
	DocumentType string  `json:"document_type"`
}

type expenseOutput struct {
	ExpenseItems []rawExpense `json:"expense_items"`
}

type rawDamage struct {
	Label      string `json:"label"`
	Detail     string `json:"detail"`
	Confidence string `json:"confidence"`
	SourceFile string `json:"source_file"`
	SourceText string `json:"source_text"`
	DamageType string `json:"damage_type"`
	Severity   string `json:"severity"`
}

type damageOutput struct {
	DamageClaims []rawDamage `json:"damage_claims"`
}
