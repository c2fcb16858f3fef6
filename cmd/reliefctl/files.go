package main

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/ledger"
)

// readEvidenceFiles loads files from disk under the same count, size and
// type limits the upload endpoint enforces.
func readEvidenceFiles(paths []string, limits config.EvidenceConfig) ([]domain.EvidenceFile, error) {
	if limits.MaxFiles > 0 && len(paths) > limits.MaxFiles {
		return nil, fmt.Errorf("got %d files, at most %d allowed: %w", len(paths), limits.MaxFiles, domain.ErrTooManyFiles)
	}

	maxSize := limits.MaxFileSizeBytes()
	files := make([]domain.EvidenceFile, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		if maxSize > 0 && info.Size() > maxSize {
			return nil, fmt.Errorf("file %q: %w", path, domain.ErrFileTooLarge)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		declared := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
		mimeType := domain.DetectContentType(declared, content)
		if !domain.AllowedContentTypes[mimeType] {
			return nil, fmt.Errorf("file %q has type %q: %w", path, mimeType, domain.ErrUnsupportedFileType)
		}

		files = append(files, domain.EvidenceFile{Filename: filepath.Base(path), Content: content, MimeType: mimeType})
	}
	return files, nil
}

// ledgerFormatFor picks the explicit format, or infers it from path's extension.
func ledgerFormatFor(path, explicit string) domain.LedgerFormat {
	if explicit != "" {
		return domain.LedgerFormat(strings.ToLower(explicit))
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return domain.LedgerFormatXLSX
	}
	return domain.LedgerFormatCSV
}

// writeLedgerFile renders items to path. Nothing is written on failure.
func writeLedgerFile(path string, format domain.LedgerFormat, items []domain.ExpenseItem) error {
	var buf bytes.Buffer
	if err := ledger.Write(&buf, format, items); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
