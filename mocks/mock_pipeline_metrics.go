package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockPipelineMetrics is a mock implementation of port.PipelineMetrics.
type MockPipelineMetrics struct {
	mock.Mock
}

func (m *MockPipelineMetrics) ObserveStructuredCall(schema string, attempts int, outcome string) {
	m.Called(schema, attempts, outcome)
}

func (m *MockPipelineMetrics) ObserveExtraction(duration time.Duration, outcome string, expenses, claims, missing int) {
	m.Called(duration, outcome, expenses, claims, missing)
}
