package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository mocks the domain.SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, firmID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) ListByFirm(ctx context.Context, firmID uuid.UUID, includeDeleted bool, limit, offset int) ([]domain.Session, error) {
	args := m.Called(ctx, firmID, includeDeleted, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

// MockSessionCache mocks the SessionCache interface
type MockSessionCache struct {
	mock.Mock
}

func (m *MockSessionCache) Get(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, firmID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionCache) Set(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionCache) Invalidate(ctx context.Context, firmID, sessionID uuid.UUID) error {
	args := m.Called(ctx, firmID, sessionID)
	return args.Error(0)
}

// MockPartyRepository mocks the domain.PartyRepository interface
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) Create(ctx context.Context, party *domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) ListByFirm(ctx context.Context, firmID uuid.UUID) ([]domain.Party, error) {
	args := m.Called(ctx, firmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Party), args.Error(1)
}

func (m *MockPartyRepository) Delete(ctx context.Context, firmID, partyID uuid.UUID) error {
	args := m.Called(ctx, firmID, partyID)
	return args.Error(0)
}
