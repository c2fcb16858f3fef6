package evidence

import (
	"strings"

	"reliefdocs/internal/catalog"
	"reliefdocs/internal/domain"
)

const damageToken = "damage"

// DetectMissing reports every catalog requirement not satisfied by the
// extracted categories, document types, damage claims or uploaded filenames.
// A keyword appearing anywhere in a filename counts as satisfied.
func DetectMissing(cat *catalog.Catalog, expenses []domain.ExpenseItem, claims []domain.DamageClaim, filenames []string) []domain.MissingEvidence {
	found := make(map[string]bool)
	for _, e := range expenses {
		found[strings.ToLower(string(e.Category))] = true
		if e.DocumentType != "" {
			found[strings.ToLower(e.DocumentType)] = true
		}
	}
	if len(claims) > 0 {
		found[damageToken] = true
	}

	lowered := make([]string, len(filenames))
	for i, fn := range filenames {
		lowered[i] = strings.ToLower(fn)
	}
	filenameBlob := strings.Join(lowered, " ")

	missing := []domain.MissingEvidence{}
	for _, req := range cat.Requirements() {
		if satisfied(cat.Keywords(req.ID), found, filenameBlob) {
			continue
		}
		missing = append(missing, domain.MissingEvidence{Item: req.Name, Reason: req.ActionableOutcomes})
	}
	return missing
}

// AllMissing lists every catalog requirement, used when nothing was uploaded.
func AllMissing(cat *catalog.Catalog) []domain.MissingEvidence {
	reqs := cat.Requirements()
	out := make([]domain.MissingEvidence, len(reqs))
	for i, r := range reqs {
		out[i] = domain.MissingEvidence{Item: r.Name, Reason: r.ActionableOutcomes}
	}
	return out
}

func satisfied(keywords []string, found map[string]bool, filenameBlob string) bool {
	for _, kw := range keywords {
		if found[kw] || strings.Contains(filenameBlob, kw) {
			return true
		}
	}
	return false
}
