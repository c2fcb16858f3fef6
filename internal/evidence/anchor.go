package evidence

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"reliefdocs/internal/domain"
)

const (
	noOCRSentinel       = "No OCR text for this file; needs review."
	notAnchoredSentinel = "Amount/date not found in OCR; needs review."
)

var (
	nonDigit        = regexp.MustCompile(`[^0-9]`)
	digitGroupComma = regexp.MustCompile(`(\d),(\d)`)
)

// Anchor checks an expense's amount and date against the OCR text of its
// source file. Both must be found for the item to keep its confidence;
// otherwise it is downgraded to needs_review with an explanatory source_text.
// Confidence is never raised.
func Anchor(item domain.ExpenseItem, ocrByFile map[string]string) domain.ExpenseItem {
	text := ocrByFile[item.SourceFile]
	if strings.TrimSpace(text) == "" {
		item.Confidence = item.Confidence.AtMost(domain.ConfidenceNeedsReview)
		item.SourceText = noOCRSentinel
		return item
	}

	if amountInText(item.Amount, text) && dateInText(item.Date, text) {
		return item
	}

	item.Confidence = item.Confidence.AtMost(domain.ConfidenceNeedsReview)
	item.SourceText = notAnchoredSentinel
	return item
}

// AnchorAll applies Anchor to every item, preserving order.
func AnchorAll(items []domain.ExpenseItem, ocrByFile map[string]string) []domain.ExpenseItem {
	out := make([]domain.ExpenseItem, len(items))
	for i, it := range items {
		out[i] = Anchor(it, ocrByFile)
	}
	return out
}

// normalizeAmount renders an amount with two decimals and trailing zero
// decimals trimmed: 45.00 -> "45", 45.50 -> "45.5", 1250.99 -> "1250.99".
func normalizeAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// amountInText looks for the normalised amount, or its truncated integer
// form, as a standalone number in text. Thousands separators in the text are
// ignored, so 1250 matches "$1,250.00". A match must not be embedded in a
// longer number: "45" does not match "450" or "145", though "45" does match
// "45.00" since trailing zero decimals are the same value.
func amountInText(amount float64, text string) bool {
	haystacks := []string{text}
	if stripped := stripDigitGroupCommas(text); stripped != text {
		haystacks = append(haystacks, stripped)
	}

	normalized := normalizeAmount(amount)
	integer := strconv.FormatInt(int64(math.Trunc(amount)), 10)

	for _, h := range haystacks {
		if containsNumber(h, normalized, true) {
			return true
		}
		if integer != normalized && containsNumber(h, integer, false) {
			return true
		}
	}
	return false
}

func stripDigitGroupCommas(s string) string {
	// Applied twice so overlapping groups like 1,234,567 collapse fully.
	s = digitGroupComma.ReplaceAllString(s, "$1$2")
	return digitGroupComma.ReplaceAllString(s, "$1$2")
}

// containsNumber reports whether num occurs in s with no digit immediately
// before it. When allowZeroDecimals is set, the match may be followed by
// zero decimals ("45" in "45.00", "45.5" in "45.50"); otherwise the next
// character must not be a digit or a decimal point followed by a digit.
func containsNumber(s, num string, allowZeroDecimals bool) bool {
	for from := 0; from <= len(s)-len(num); {
		idx := strings.Index(s[from:], num)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(num)
		from = start + 1

		if start > 0 && isDigit(s[start-1]) {
			continue
		}
		if numberEndsAt(s, end, strings.Contains(num, "."), allowZeroDecimals) {
			return true
		}
	}
	return false
}

func numberEndsAt(s string, end int, hasPoint, allowZeroDecimals bool) bool {
	rest := s[end:]
	if rest == "" {
		return true
	}
	if isDigit(rest[0]) {
		if hasPoint && allowZeroDecimals {
			return onlyZerosThenBoundary(rest)
		}
		return false
	}
	if rest[0] == '.' && len(rest) > 1 && isDigit(rest[1]) {
		if hasPoint || !allowZeroDecimals {
			return false
		}
		return onlyZerosThenBoundary(rest[1:])
	}
	return true
}

func onlyZerosThenBoundary(s string) bool {
	i := 0
	for i < len(s) && s[i] == '0' {
		i++
	}
	return i > 0 && (i == len(s) || !isDigit(s[i]))
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// dateVariants returns the literal date, its digits, and for dates with six
// or more digits the leading and trailing four digits.
func dateVariants(date string) []string {
	out := []string{date}
	digits := nonDigit.ReplaceAllString(date, "")
	if digits != "" {
		out = append(out, digits)
	}
	if len(digits) >= 6 {
		out = append(out, digits[:4], digits[len(digits)-4:])
	}
	return out
}

func dateInText(date, text string) bool {
	for _, v := range dateVariants(date) {
		if v != "" && strings.Contains(text, v) {
			return true
		}
	}
	return false
}
