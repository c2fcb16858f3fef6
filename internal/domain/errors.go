package domain

import "errors"

var (
	ErrTooManyFiles            = errors.New("too many files")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrInvalidContext          = errors.New("invalid evidence context")
	ErrUnsupportedLedgerFormat = errors.New("unsupported ledger format")
)
