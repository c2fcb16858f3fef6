package router

import (
	"github.com/gin-gonic/gin"

	"reliefdocs/internal/handler"
	"reliefdocs/internal/metrics"
	"reliefdocs/internal/middleware"
)

// maxMultipartMemory keeps a full 10 x 20 MiB upload in memory before spilling to disk.
const maxMultipartMemory = 220 << 20

// Setup configures the Gin engine with all routes and middleware.
// A nil m disables instrumentation and the /metrics route.
func Setup(
	allowedOrigins []string,
	evidenceH *handler.EvidenceHandler,
	healthH *handler.HealthHandler,
	m *metrics.Metrics,
) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	evidence := v1.Group("/evidence")
	evidence.POST("/extract", evidenceH.Extract)
	evidence.POST("/ledger", evidenceH.Ledger)
	evidence.POST("/narrative", evidenceH.Narrative)

	return r
}
