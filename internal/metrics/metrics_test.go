package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"reliefdocs/internal/metrics"
	"reliefdocs/internal/port"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	m.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetrics_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := gin.New()
	r.Use(m.Middleware())
	r.POST("/api/v1/evidence/extract", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/api/v1/evidence/extract", "/nope"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, path, http.NoBody)
		r.ServeHTTP(w, req)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `reliefdocs_http_requests_total{method="POST",path="/api/v1/evidence/extract",status="400"} 1`)
	assert.Contains(t, body, `reliefdocs_http_requests_total{method="POST",path="unmatched",status="404"} 1`)
	assert.Contains(t, body, "reliefdocs_http_in_flight_requests 0")
}

func TestMetrics_PipelineObservations(t *testing.T) {
	m := metrics.New()
	var _ port.PipelineMetrics = m

	m.ObserveStructuredCall("expense_extraction", 2, port.OutcomeOK)
	m.ObserveStructuredCall("damage_extraction", 0, port.OutcomeTransportError)
	m.ObserveExtraction(3*time.Second, port.OutcomeOK, 4, 2, 5)

	body := scrape(t, m)
	assert.Contains(t, body, `reliefdocs_model_structured_calls_total{outcome="ok",schema="expense_extraction"} 1`)
	assert.Contains(t, body, `reliefdocs_model_structured_calls_total{outcome="transport_error",schema="damage_extraction"} 1`)
	assert.Contains(t, body, `reliefdocs_model_structured_call_attempts_count{schema="expense_extraction"} 1`)
	assert.NotContains(t, body, `reliefdocs_model_structured_call_attempts_count{schema="damage_extraction"}`)
	assert.Contains(t, body, `reliefdocs_pipeline_extractions_total{outcome="ok"} 1`)
	assert.Contains(t, body, `reliefdocs_pipeline_records_total{kind="expense_item"} 4`)
	assert.Contains(t, body, `reliefdocs_pipeline_records_total{kind="missing_evidence"} 5`)
}
