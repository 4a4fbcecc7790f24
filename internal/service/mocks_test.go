package service

import (
	"context"

	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/Rrens/sql-tutor/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
	name string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockProvider) IsConfigured() bool {
	return true
}

func (m *MockProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockAttemptRepo mocks domain.AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Create(ctx context.Context, attempt *domain.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attempt), args.Error(1)
}
