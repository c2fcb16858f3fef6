package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reliefdocs/internal/ocr"
)

// OCRTools reports which external OCR tools are installed.
type OCRTools interface {
	Available() ocr.ToolStatus
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	ocr OCRTools
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(tools OCRTools) *HealthHandler {
	return &HealthHandler{ocr: tools}
}

// Liveness handles GET /healthz
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz. Missing OCR tools degrade extraction but
// do not make the service unready.
// @Summary Readiness check
// @Description Reports whether tesseract and the PDF rasterizer are installed
// @Tags health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	tools := h.ocr.Available()
	c.JSON(http.StatusOK, ReadinessResponse{Status: tools.Status(), OCR: tools})
}
