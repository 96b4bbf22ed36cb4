package testutil

import (
	"context"
	"time"

	"github.com/guestgate/guestgate/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Create(ctx context.Context, pass *domain.Pass) error {
	args := m.Called(pass)
	return args.Error(0)
}

func (m *MockRepo) GetByToken(ctx context.Context, token string) (*domain.Pass, error) {
	args := m.Called(token)
	return args.Get(0).(*domain.Pass), args.Error(1)
}

func (m *MockRepo) ConsumeByToken(ctx context.Context, token string, now time.Time) (*domain.Pass, error) {
	args := m.Called(token, now)
	return args.Get(0).(*domain.Pass), args.Error(1)
}

func (m *MockRepo) UpdateFields(ctx context.Context, pass *domain.Pass, fields ...string) error {
	args := m.Called(pass, fields)
	return args.Error(0)
}

func (m *MockRepo) ListByEmail(ctx context.Context, email string) ([]domain.Pass, error) {
	args := m.Called(email)
	return args.Get(0).([]domain.Pass), args.Error(1)
}

func (m *MockRepo) SaveAccessLog(ctx context.Context, entry *domain.AccessLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockRepo) ListAccessLogs(ctx context.Context, passID string) ([]domain.AccessLog, error) {
	args := m.Called(passID)
	return args.Get(0).([]domain.AccessLog), args.Error(1)
}

func (m *MockRepo) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
