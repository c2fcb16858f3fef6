package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/handler"
	"reliefdocs/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testLimits = config.EvidenceConfig{MaxFiles: 2, MaxFileSizeMB: 1}

type upload struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, files []upload, contextJSON string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write(f.data)
	}
	if contextJSON != "" {
		require.NoError(t, w.WriteField("context", contextJSON))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func newContext(method, target string, body io.Reader, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, body)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestEvidenceHandler_Extract_Success(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)

	result := domain.NewExtractionResult()
	result.RenameMap = []domain.RenameEntry{{OriginalFilename: "receipt.pdf", RecommendedFilename: "evidence_receipt.pdf", Confidence: domain.ConfidenceNeedsReview}}

	svc.On("Extract", mock.Anything, mock.MatchedBy(func(files []domain.EvidenceFile) bool {
		return len(files) == 2 &&
			files[0].Filename == "receipt.pdf" && files[0].MimeType == domain.MIMEPDF &&
			files[1].Filename == "roof.jpg" && files[1].MimeType == domain.MIMEJPEG
	}), domain.EvidenceContext{County: "Lee", State: "FL"}).Return(result, nil)

	body, ct := multipartBody(t, []upload{
		{name: "receipt.pdf", data: []byte("%PDF-1.4 test content")},
		{name: "roof.jpg", contentType: "image/jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0}},
	}, `{"county":"Lee","state":"FL"}`)
	c, w := newContext(http.MethodPost, "/api/v1/evidence/extract", body, ct)

	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data, _ := json.Marshal(resp.Data)
	assert.Contains(t, string(data), `"recommended_filename":"evidence_receipt.pdf"`)
	assert.Contains(t, string(data), `"expense_items":[]`)
	svc.AssertExpectations(t)
}

func TestEvidenceHandler_Extract_TooManyFiles(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)

	pdf := []byte("%PDF-1.4")
	body, ct := multipartBody(t, []upload{{name: "a.pdf", data: pdf}, {name: "b.pdf", data: pdf}, {name: "c.pdf", data: pdf}}, "")
	c, w := newContext(http.MethodPost, "/api/v1/evidence/extract", body, ct)

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "TOO_MANY_FILES", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvidenceHandler_Extract_UnsupportedType(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)

	body, ct := multipartBody(t, []upload{{name: "notes.txt", data: []byte("just some text")}}, "")
	c, w := newContext(http.MethodPost, "/api/v1/evidence/extract", body, ct)

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "notes.txt")
}

func TestEvidenceHandler_Extract_FileTooLarge(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)

	big := append([]byte("%PDF-1.4"), bytes.Repeat([]byte("x"), 1<<20)...)
	body, ct := multipartBody(t, []upload{{name: "big.pdf", data: big}}, "")
	c, w := newContext(http.MethodPost, "/api/v1/evidence/extract", body, ct)

	h.Extract(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeResponse(t, w).Error.Code)
}

func TestEvidenceHandler_Extract_InvalidContext(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)

	body, ct := multipartBody(t, []upload{{name: "a.pdf", data: []byte("%PDF-1.4")}}, `{"county":`)
	c, w := newContext(http.MethodPost, "/api/v1/evidence/extract", body, ct)

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONTEXT", decodeResponse(t, w).Error.Code)
}

func TestEvidenceHandler_Extract_NotMultipart(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)

	c, w := newContext(http.MethodPost, "/api/v1/evidence/extract", bytes.NewBufferString(`{}`), "application/json")

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORM", decodeResponse(t, w).Error.Code)
}

func TestEvidenceHandler_Extract_Cancelled(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)
	svc.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled)

	body, ct := multipartBody(t, []upload{{name: "a.pdf", data: []byte("%PDF-1.4")}}, "")
	c, w := newContext(http.MethodPost, "/api/v1/evidence/extract", body, ct)

	h.Extract(c)

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Equal(t, "REQUEST_CANCELLED", decodeResponse(t, w).Error.Code)
}

func ledgerBody() *bytes.Buffer {
	return bytes.NewBufferString(`{"expense_items":[{"vendor":"Acme","date":"2024-01-15","amount":45,"category":"repairs","confidence":"high","source_file":"r.jpg","source_text":"Total: $45.00","document_type":"receipt"}]}`)
}

func TestEvidenceHandler_Ledger_CSV(t *testing.T) {
	h := handler.NewEvidenceHandler(new(mocks.MockEvidenceService), testLimits)
	c, w := newContext(http.MethodPost, "/api/v1/evidence/ledger", ledgerBody(), "application/json")

	h.Ledger(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="ExpenseLedger.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	out := w.Body.String()
	assert.True(t, strings.HasPrefix(out, "\ufeffDate,Vendor,Category,Amount"))
	assert.Contains(t, out, "2024-01-15,Acme,repairs,45.00,high,receipt,r.jpg,Total: $45.00")
}

func TestEvidenceHandler_Ledger_XLSX(t *testing.T) {
	h := handler.NewEvidenceHandler(new(mocks.MockEvidenceService), testLimits)
	c, w := newContext(http.MethodPost, "/api/v1/evidence/ledger?format=XLSX", ledgerBody(), "application/json")

	h.Ledger(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="ExpenseLedger.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	vendor, err := f.GetCellValue("Ledger", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme", vendor)
}

func TestEvidenceHandler_Ledger_UnsupportedFormat(t *testing.T) {
	h := handler.NewEvidenceHandler(new(mocks.MockEvidenceService), testLimits)
	c, w := newContext(http.MethodPost, "/api/v1/evidence/ledger?format=pdf", ledgerBody(), "application/json")

	h.Ledger(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FORMAT", decodeResponse(t, w).Error.Code)
}

func TestEvidenceHandler_Ledger_InvalidBody(t *testing.T) {
	h := handler.NewEvidenceHandler(new(mocks.MockEvidenceService), testLimits)
	c, w := newContext(http.MethodPost, "/api/v1/evidence/ledger", bytes.NewBufferString(`not json`), "application/json")

	h.Ledger(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeResponse(t, w).Error.Code)
}

func TestEvidenceHandler_Narrative(t *testing.T) {
	svc := new(mocks.MockEvidenceService)
	h := handler.NewEvidenceHandler(svc, testLimits)
	svc.On("DamageNarrative", mock.Anything, mock.MatchedBy(func(claims []domain.DamageClaim) bool {
		return len(claims) == 1 && claims[0].Label == "Roof damage"
	}), domain.EvidenceContext{County: "Lee"}).Return("The roof was damaged.", nil)

	body := bytes.NewBufferString(`{"damage_claims":[{"label":"Roof damage","detail":"Missing shingles","confidence":"high","source_file":"roof.jpg","source_text":"Visual"}],"context":{"county":"Lee"}}`)
	c, w := newContext(http.MethodPost, "/api/v1/evidence/narrative", body, "application/json")

	h.Narrative(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"narrative": "The roof was damaged."}, resp.Data)
	svc.AssertExpectations(t)
}
