package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"reliefdocs/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrTooManyFiles):
		return http.StatusBadRequest, "TOO_MANY_FILES", "too many files in one request"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpeg, png, webp, gif, pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidContext):
		return http.StatusBadRequest, "INVALID_CONTEXT", "context must be a JSON object"
	case errors.Is(err, domain.ErrUnsupportedLedgerFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported ledger format; allowed: csv, xlsx"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "REQUEST_CANCELLED", "request was cancelled before extraction finished"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Client errors carry the wrapped detail (such as the offending filename).
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	requestID, _ := c.Get("request_id")
	if status >= 500 {
		log.Printf("[%s] internal error: %v", requestID, err)
	} else {
		log.Printf("[%s] request rejected: %v", requestID, err)
		if status != http.StatusRequestTimeout {
			msg = err.Error()
		}
	}
	RespondError(c, status, code, msg)
}
