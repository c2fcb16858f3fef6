package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reliefdocs/internal/domain"
)

// MockEvidenceService is a mock implementation of service.EvidenceService.
type MockEvidenceService struct {
	mock.Mock
}

func (m *MockEvidenceService) Extract(ctx context.Context, files []domain.EvidenceFile, ectx domain.EvidenceContext) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, files, ectx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}

func (m *MockEvidenceService) DamageNarrative(ctx context.Context, claims []domain.DamageClaim, ectx domain.EvidenceContext) (string, error) {
	args := m.Called(ctx, claims, ectx)
	return args.String(0), args.Error(1)
}
