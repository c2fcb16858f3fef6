package evidence

import (
	"fmt"
	"strings"

	"reliefdocs/internal/catalog"
	"reliefdocs/internal/domain"
)

const noOCRText = "(no OCR text)"

// contextBlock renders the optional applicant context. Empty fields are omitted.
func contextBlock(ectx domain.EvidenceContext) string {
	var parts []string
	if ectx.BusinessType != "" {
		parts = append(parts, "Business type: "+ectx.BusinessType)
	}
	switch {
	case ectx.County != "" && ectx.State != "":
		parts = append(parts, fmt.Sprintf("Location: %s County, %s", ectx.County, ectx.State))
	case ectx.State != "":
		parts = append(parts, "State: "+ectx.State)
	}
	if ectx.DisasterID != "" {
		parts = append(parts, "FEMA Disaster ID: "+ectx.DisasterID)
	}
	if ectx.DeclarationTitle != "" {
		parts = append(parts, "Declaration: "+ectx.DeclarationTitle)
	}
	if len(parts) == 0 {
		return "No additional context provided."
	}
	return strings.Join(parts, "\n")
}

func classificationPrompt(filenames []string) string {
	var sb strings.Builder
	sb.WriteString(`You are sorting evidence uploaded for a disaster-relief application.
Each attached image is listed below in the same order it is attached.
Classify every file as exactly one of:
- "document": a receipt, invoice, bill, statement, lease, form, screenshot or any image whose value is its text
- "photo": a photograph whose value is what it shows (property damage, debris, flooding, equipment, premises)

Return one classification per listed file and copy each filename exactly.

FILES:
`)
	for i, fn := range filenames {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, fn)
	}
	return sb.String()
}

func expensePrompt(cat *catalog.Catalog, docs []domain.EvidenceFile, ocrByFile map[string]string, ectx domain.EvidenceContext) string {
	var files, blocks strings.Builder
	for _, f := range docs {
		fmt.Fprintf(&files, "- %s\n", f.Filename)
		text := ocrByFile[f.Filename]
		if strings.TrimSpace(text) == "" {
			text = noOCRText
		}
		fmt.Fprintf(&blocks, "--- FILE: %s ---\n%s\n\n", f.Filename, text)
	}

	categories := make([]string, len(domain.ExpenseCategories))
	for i, c := range domain.ExpenseCategories {
		categories[i] = string(c)
	}

	return fmt.Sprintf(`You are a disaster-relief document analyst extracting expenses from receipts, bills and statements.
You receive OCR text for each file and the original files as attachments.

DOCUMENT REQUIREMENTS (use for document_type and categorization):
%s

RULES:
1. The OCR text below is the source of truth for amounts and dates. Never invent a value.
2. source_text must be an exact substring of the OCR text of the file the expense came from.
3. source_file must be the exact filename the expense came from.
4. If the amount or the date does not appear in that file's OCR text, set confidence to "needs_review".
5. Use "high" only when vendor, date and amount are all clearly legible; otherwise "medium".
6. document_type is one of: receipt, utility_bill, lease, payroll, bank_statement, tax, insurance, license, other.
7. category is one of: %s.
8. amount is a plain number without currency symbols or thousands separators.
9. If a file holds no expenses, emit nothing for it.

CONTEXT:
%s

FILES (%d):
%s
OCR TEXT PER FILE:
%s`, cat.PromptBlock(), strings.Join(categories, ", "), contextBlock(ectx), len(docs), files.String(), blocks.String())
}

func damagePrompt(photo domain.EvidenceFile, ectx domain.EvidenceContext) string {
	return fmt.Sprintf(`You are a disaster-relief damage assessor. Inspect the single attached photo (%s) visually.

RULES:
1. Return at least one damage_claims entry for this photo.
2. For each distinct kind of visible damage (water, fire, wind, structural, mold, debris, broken equipment, broken windows, roof) add a claim.
3. label is a short headline such as "Water damage - kitchen ceiling"; detail is 1-2 sentences describing what is visible.
4. source_file must be %q.
5. source_text is any literal text legible in the photo; if there is none, write "Visual: " followed by a brief description of what you see.
6. confidence is "high" when damage is clearly visible and "medium" when it is ambiguous.
7. If no damage is visible, return one claim labelled "General site photo" with confidence "medium".
8. damage_type and severity (minor, moderate, severe) are optional.

CONTEXT:
%s`, photo.Filename, photo.Filename, contextBlock(ectx))
}

func narrativePrompt(claims []domain.DamageClaim, ectx domain.EvidenceContext) string {
	var sb strings.Builder
	for _, c := range claims {
		fmt.Fprintf(&sb, "- %s: %s (file %s, confidence %s)\n", c.Label, c.Detail, c.SourceFile, c.Confidence)
	}
	return fmt.Sprintf(`Write one factual paragraph (at most 120 words) summarizing the physical damage documented below,
for inclusion in a disaster-relief application letter. Do not add damage that is not listed.
Do not speculate about costs. Plain text only.

CONTEXT:
%s

DAMAGE CLAIMS:
%s`, contextBlock(ectx), sb.String())
}
