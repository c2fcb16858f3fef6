package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reliefdocs/internal/domain"
)

func expense(amount float64, date string, conf domain.Confidence) domain.ExpenseItem {
	return domain.ExpenseItem{
		Vendor:     "Acme Hardware",
		Date:       date,
		Amount:     amount,
		Category:   domain.CategoryRepairs,
		Confidence: conf,
		SourceFile: "receipt.jpg",
		SourceText: "TOTAL $45.00",
	}
}

func TestAnchor_AmountAndDateFound(t *testing.T) {
	ocr := map[string]string{"receipt.jpg": "Total: $45.00 on 2024-01-15"}

	got := Anchor(expense(45.00, "2024-01-15", domain.ConfidenceHigh), ocr)

	assert.Equal(t, domain.ConfidenceHigh, got.Confidence)
	assert.Equal(t, "TOTAL $45.00", got.SourceText)
}

func TestAnchor_AmountMissing(t *testing.T) {
	ocr := map[string]string{"receipt.jpg": "Total: $45.00 on 2024-01-15"}

	got := Anchor(expense(99.99, "2024-01-15", domain.ConfidenceHigh), ocr)

	assert.Equal(t, domain.ConfidenceNeedsReview, got.Confidence)
	assert.Equal(t, notAnchoredSentinel, got.SourceText)
}

func TestAnchor_DateMissing(t *testing.T) {
	ocr := map[string]string{"receipt.jpg": "Total: $45.00"}

	got := Anchor(expense(45, "2023-12-31", domain.ConfidenceMedium), ocr)

	assert.Equal(t, domain.ConfidenceNeedsReview, got.Confidence)
}

func TestAnchor_NoOCRText(t *testing.T) {
	got := Anchor(expense(45, "2024-01-15", domain.ConfidenceHigh), map[string]string{"receipt.jpg": "  "})

	assert.Equal(t, domain.ConfidenceNeedsReview, got.Confidence)
	assert.Equal(t, noOCRSentinel, got.SourceText)

	got = Anchor(expense(45, "2024-01-15", domain.ConfidenceHigh), map[string]string{})
	assert.Equal(t, noOCRSentinel, got.SourceText)
}

func TestAnchor_NeverUpgrades(t *testing.T) {
	ocr := map[string]string{"receipt.jpg": "Total: $45.00 on 2024-01-15"}

	got := Anchor(expense(45, "2024-01-15", domain.ConfidenceNeedsReview), ocr)

	assert.Equal(t, domain.ConfidenceNeedsReview, got.Confidence)
}

func TestAnchor_DateVariants(t *testing.T) {
	tests := []struct {
		name string
		date string
		ocr  string
	}{
		{name: "literal", date: "01/15/2024", ocr: "Date 01/15/2024 Total 45.00"},
		{name: "digits only", date: "2024-01-15", ocr: "Ref 20240115 Total 45.00"},
		{name: "leading four digits", date: "2024-01-15", ocr: "Statement 2024 Total 45.00"},
		{name: "trailing four digits", date: "01/15/2024", ocr: "Jan 15 2024 Total 45.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Anchor(expense(45, tt.date, domain.ConfidenceHigh), map[string]string{"receipt.jpg": tt.ocr})
			assert.Equal(t, domain.ConfidenceHigh, got.Confidence)
		})
	}
}

func TestAnchor_EmptyDateNeverMatches(t *testing.T) {
	got := Anchor(expense(45, "", domain.ConfidenceHigh), map[string]string{"receipt.jpg": "Total 45.00"})

	assert.Equal(t, domain.ConfidenceNeedsReview, got.Confidence)
}

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, "45", normalizeAmount(45.00))
	assert.Equal(t, "45.5", normalizeAmount(45.50))
	assert.Equal(t, "1250.99", normalizeAmount(1250.99))
	assert.Equal(t, "100", normalizeAmount(100))
	assert.Equal(t, "0", normalizeAmount(0))
}

func TestAmountInText(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		text   string
		want   bool
	}{
		{name: "exact decimals", amount: 45.99, text: "TOTAL 45.99", want: true},
		{name: "whole amount with zero cents", amount: 45, text: "TOTAL $45.00", want: true},
		{name: "trailing zero decimal", amount: 45.5, text: "TOTAL 45.50", want: true},
		{name: "thousands separator", amount: 1250, text: "Amount due: $1,250.00", want: true},
		{name: "millions separator", amount: 1234567.89, text: "Paid 1,234,567.89", want: true},
		{name: "whole amount at end of text", amount: 45, text: "paid 45", want: true},
		{name: "integer fallback for cents", amount: 45.99, text: "about 45 dollars", want: true},
		{name: "prefix of larger number", amount: 45, text: "Total 450.00", want: false},
		{name: "suffix of larger number", amount: 45, text: "Total 145.00", want: false},
		{name: "different cents", amount: 45.5, text: "Total 45.55", want: false},
		{name: "integer fallback rejects other cents", amount: 45.5, text: "Total 45.75", want: false},
		{name: "absent", amount: 99.99, text: "Total: $45.00 on 2024-01-15", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, amountInText(tt.amount, tt.text))
		})
	}
}

func TestAnchorAll_PreservesOrder(t *testing.T) {
	items := []domain.ExpenseItem{
		expense(45, "2024-01-15", domain.ConfidenceHigh),
		expense(99.99, "2024-01-15", domain.ConfidenceHigh),
	}
	ocr := map[string]string{"receipt.jpg": "Total: $45.00 on 2024-01-15"}

	got := AnchorAll(items, ocr)

	assert.Len(t, got, 2)
	assert.Equal(t, domain.ConfidenceHigh, got[0].Confidence)
	assert.Equal(t, domain.ConfidenceNeedsReview, got[1].Confidence)
	assert.Equal(t, domain.ConfidenceHigh, items[1].Confidence)
}
