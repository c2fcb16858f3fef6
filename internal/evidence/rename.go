package evidence

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"reliefdocs/internal/domain"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// BuildRenameMap returns exactly one entry per filename, in input order.
// The first expense citing a file names it after vendor, date and amount;
// failing that the first damage claim names it after its label; otherwise
// the file gets a generic name and needs review.
func BuildRenameMap(filenames []string, expenses []domain.ExpenseItem, claims []domain.DamageClaim) []domain.RenameEntry {
	firstExpense := make(map[string]domain.ExpenseItem, len(expenses))
	for _, e := range expenses {
		if _, ok := firstExpense[e.SourceFile]; !ok {
			firstExpense[e.SourceFile] = e
		}
	}
	firstClaim := make(map[string]domain.DamageClaim, len(claims))
	for _, c := range claims {
		if _, ok := firstClaim[c.SourceFile]; !ok {
			firstClaim[c.SourceFile] = c
		}
	}

	out := make([]domain.RenameEntry, 0, len(filenames))
	for _, fn := range filenames {
		ext := strings.ToLower(filepath.Ext(fn))
		if ext == "" {
			ext = ".jpg"
		}

		entry := domain.RenameEntry{OriginalFilename: fn}
		if e, ok := firstExpense[fn]; ok {
			entry.RecommendedFilename = fmt.Sprintf("receipt_%s_%s_%.2f%s", vendorSlug(e.Vendor), dateSlug(e.Date), e.Amount, ext)
			entry.Confidence = e.Confidence
		} else if c, ok := firstClaim[fn]; ok {
			entry.RecommendedFilename = fmt.Sprintf("damage_%s%s", clip(slug(c.Label), 30), ext)
			entry.Confidence = c.Confidence
		} else {
			stem := strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
			entry.RecommendedFilename = fmt.Sprintf("evidence_%s%s", stem, ext)
			entry.Confidence = domain.ConfidenceNeedsReview
		}
		out = append(out, entry)
	}
	return out
}

func slug(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "_")
}

func vendorSlug(vendor string) string {
	s := clip(slug(strings.TrimSpace(vendor)), 20)
	if s == "" {
		return "unknown"
	}
	return s
}

func dateSlug(date string) string {
	s := strings.ReplaceAll(date, "/", "-")
	s = strings.ReplaceAll(s, " ", "")
	return clip(s, 10)
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
