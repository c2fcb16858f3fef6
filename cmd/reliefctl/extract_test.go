package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reliefdocs/internal/app"
	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/port"
	"reliefdocs/mocks"
)

// runExtract executes the extract command against svc and returns stdout.
func runExtract(t *testing.T, ctx context.Context, svc *mocks.MockEvidenceService, args ...string) (string, error) {
	t.Helper()

	orig := newPipeline
	newPipeline = func(*config.Config, port.PipelineMetrics) (*app.Pipeline, error) {
		return &app.Pipeline{Service: svc}, nil
	}
	t.Cleanup(func() {
		newPipeline = orig
		extractContext, extractLedgerPath, extractLedgerFormat = "", "", ""
		outputFormat, globalOutputFormat = "yaml", OutputFormatYAML
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"extract"}, args...))
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestExtractCommand_PrintsResultAndWritesLedger(t *testing.T) {
	dir := t.TempDir()
	receipt := writeTemp(t, dir, "receipt.pdf", []byte("%PDF-1.4\n"))
	ledgerPath := filepath.Join(dir, "ledger.csv")

	result := domain.NewExtractionResult()
	result.ExpenseItems = append(result.ExpenseItems, domain.ExpenseItem{
		Vendor: "Acme Hardware", Date: "2024-01-15", Amount: 45,
		Category: domain.CategoryRepairs, Confidence: domain.ConfidenceHigh, SourceFile: "receipt.pdf",
	})
	svc := new(mocks.MockEvidenceService)
	svc.On("Extract", mock.Anything,
		mock.MatchedBy(func(files []domain.EvidenceFile) bool {
			return len(files) == 1 && files[0].Filename == "receipt.pdf" && files[0].MimeType == domain.MIMEPDF
		}),
		domain.EvidenceContext{State: "FL"},
	).Return(result, nil)

	out, err := runExtract(t, context.Background(), svc,
		receipt, "-o", "json", "--context", `{"state":"FL"}`, "--ledger", ledgerPath)

	require.NoError(t, err)
	assert.Contains(t, out, `"vendor": "Acme Hardware"`)
	csvData, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvData), "\ufeffDate,"))
	assert.Contains(t, string(csvData), "Acme Hardware")
	svc.AssertExpectations(t)
}

func TestExtractCommand_CancelledPrintsNothing(t *testing.T) {
	dir := t.TempDir()
	receipt := writeTemp(t, dir, "receipt.pdf", []byte("%PDF-1.4\n"))
	ledgerPath := filepath.Join(dir, "ledger.xlsx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := new(mocks.MockEvidenceService)
	svc.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled)

	out, err := runExtract(t, ctx, svc, receipt, "--ledger", ledgerPath)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
	assert.NoFileExists(t, ledgerPath)
}

func TestExtractCommand_RejectsUnsupportedFile(t *testing.T) {
	dir := t.TempDir()
	notes := writeTemp(t, dir, "notes.txt", []byte("hello"))
	svc := new(mocks.MockEvidenceService)

	out, err := runExtract(t, context.Background(), svc, notes)

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Empty(t, out)
	svc.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
}
