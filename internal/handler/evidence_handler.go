package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/ledger"
	"reliefdocs/internal/service"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// EvidenceHandler handles evidence extraction endpoints.
type EvidenceHandler struct {
	evidenceService service.EvidenceService
	limits          config.EvidenceConfig
}

// NewEvidenceHandler creates a new EvidenceHandler.
func NewEvidenceHandler(evidenceService service.EvidenceService, limits config.EvidenceConfig) *EvidenceHandler {
	return &EvidenceHandler{evidenceService: evidenceService, limits: limits}
}

// Extract handles POST /api/v1/evidence/extract
// @Summary Extract evidence from uploaded files
// @Description OCR, classify and extract expenses and damage claims from up to 10 files (JPEG, PNG, WebP, GIF, PDF; max 20MB each)
// @Tags evidence
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Evidence files (repeat the field per file)"
// @Param context formData string false "Applicant context as a JSON object"
// @Success 200 {object} Response{data=ExtractionResultDoc} "Extraction result"
// @Failure 400 {object} ErrorResponseBody "Too many files, unsupported type or invalid context"
// @Failure 408 {object} ErrorResponseBody "Request cancelled"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /evidence/extract [post]
func (h *EvidenceHandler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "expected multipart/form-data with files")
		return
	}

	ectx, err := parseContext(form.Value["context"])
	if err != nil {
		HandleError(c, err)
		return
	}

	files, err := h.readUploads(form.File["files"])
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.evidenceService.Extract(c.Request.Context(), files, ectx)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Ledger handles POST /api/v1/evidence/ledger
// @Summary Export an expense ledger
// @Description Render expense items as a CSV (UTF-8 with BOM) or XLSX ledger download
// @Tags evidence
// @Accept json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Ledger format" Enums(csv, xlsx) default(csv)
// @Param request body LedgerRequest true "Expense items"
// @Success 200 {file} file "Ledger file"
// @Failure 400 {object} ErrorResponseBody "Invalid body or unsupported format"
// @Router /evidence/ledger [post]
func (h *EvidenceHandler) Ledger(c *gin.Context) {
	format := domain.LedgerFormat(strings.ToLower(c.DefaultQuery("format", string(domain.LedgerFormatCSV))))

	var req LedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := ledger.Write(&buf, format, req.ExpenseItems); err != nil {
		HandleError(c, err)
		return
	}
	contentType, filename := csvContentType, "ExpenseLedger.csv"
	if format == domain.LedgerFormatXLSX {
		contentType, filename = xlsxContentType, "ExpenseLedger.xlsx"
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Narrative handles POST /api/v1/evidence/narrative
// @Summary Summarise damage claims
// @Description Produce a short paragraph describing documented damage for application letters
// @Tags evidence
// @Accept json
// @Produce json
// @Param request body NarrativeRequest true "Damage claims and optional context"
// @Success 200 {object} Response{data=NarrativeResponse} "Narrative"
// @Failure 400 {object} ErrorResponseBody "Invalid body"
// @Router /evidence/narrative [post]
func (h *EvidenceHandler) Narrative(c *gin.Context) {
	var req NarrativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	text, err := h.evidenceService.DamageNarrative(c.Request.Context(), req.DamageClaims, req.Context)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, NarrativeResponse{Narrative: text})
}

func parseContext(values []string) (domain.EvidenceContext, error) {
	var ectx domain.EvidenceContext
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return ectx, nil
	}
	if err := json.Unmarshal([]byte(values[0]), &ectx); err != nil {
		return ectx, fmt.Errorf("%w: %v", domain.ErrInvalidContext, err)
	}
	return ectx, nil
}

// readUploads enforces the file count, size and type limits and reads each
// upload fully into memory.
func (h *EvidenceHandler) readUploads(headers []*multipart.FileHeader) ([]domain.EvidenceFile, error) {
	if h.limits.MaxFiles > 0 && len(headers) > h.limits.MaxFiles {
		return nil, fmt.Errorf("got %d files, at most %d allowed: %w", len(headers), h.limits.MaxFiles, domain.ErrTooManyFiles)
	}

	maxSize := h.limits.MaxFileSizeBytes()
	files := make([]domain.EvidenceFile, 0, len(headers))
	for _, fh := range headers {
		name := fh.Filename
		if name == "" {
			name = "unknown"
		}
		if maxSize > 0 && fh.Size > maxSize {
			return nil, fmt.Errorf("file %q: %w", name, domain.ErrFileTooLarge)
		}

		content, err := readFileHeader(fh)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", name, err)
		}
		if maxSize > 0 && int64(len(content)) > maxSize {
			return nil, fmt.Errorf("file %q: %w", name, domain.ErrFileTooLarge)
		}

		mimeType := domain.DetectContentType(fh.Header.Get("Content-Type"), content)
		if !domain.AllowedContentTypes[mimeType] {
			return nil, fmt.Errorf("file %q has type %q: %w", name, mimeType, domain.ErrUnsupportedFileType)
		}

		files = append(files, domain.EvidenceFile{Filename: name, Content: content, MimeType: mimeType})
	}
	return files, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
