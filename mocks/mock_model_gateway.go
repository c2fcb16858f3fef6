package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"reliefdocs/internal/port"
)

// MockModelGateway is a mock implementation of port.ModelGateway.
// CompleteStructured expectations return (jsonPayload string, err error);
// a non-empty payload is decoded into the caller's out value.
type MockModelGateway struct {
	mock.Mock
}

func (m *MockModelGateway) CompleteStructured(ctx context.Context, req port.StructuredRequest, out any) error {
	args := m.Called(ctx, req, out)
	if err := args.Error(1); err != nil {
		return err
	}
	if payload := args.String(0); payload != "" {
		return json.Unmarshal([]byte(payload), out)
	}
	return nil
}

func (m *MockModelGateway) CompleteText(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, prompt, maxTokens, temperature)
	return args.String(0), args.Error(1)
}
