package port

import "time"

// Outcome labels shared by pipeline metrics.
const (
	OutcomeOK               = "ok"
	OutcomeValidationFailed = "validation_failed"
	OutcomeTransportError   = "transport_error"
	OutcomeCancelled        = "cancelled"
)

// PipelineMetrics records extraction pipeline observations.
type PipelineMetrics interface {
	// ObserveStructuredCall records one schema-validated model call and how
	// many attempts it took.
	ObserveStructuredCall(schema string, attempts int, outcome string)
	// ObserveExtraction records one full pipeline run.
	ObserveExtraction(duration time.Duration, outcome string, expenses, claims, missing int)
}
