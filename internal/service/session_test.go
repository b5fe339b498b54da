package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/lexara-com/engage-sub006/internal/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestService(repo *MockSessionRepository, cache SessionCache) *SessionService {
	return NewSessionService(repo, cache, 5*time.Second, 72*time.Hour)
}

func TestSessionService_CreateSession(t *testing.T) {
	repo := new(MockSessionRepository)
	svc := newTestService(repo, nil)

	ctx := context.Background()
	firmID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

		session, err := svc.CreateSession(ctx, firmID, nil, nil)
		assert.NoError(t, err)
		assert.NotNil(t, session)
		assert.Equal(t, firmID, session.FirmID)
		assert.Equal(t, domain.PhasePreLogin, session.Phase)
		assert.NotEmpty(t, session.DataGoals)

		repo.AssertExpectations(t)
	})

	t.Run("opening message advances phase", func(t *testing.T) {
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

		session, err := svc.CreateSession(ctx, firmID,
			&domain.Message{Role: domain.RoleUser, Content: "I need help with a dispute"},
			&domain.UserIdentity{Name: "Jordan Blake", Email: "jordan@example.com"})
		assert.NoError(t, err)
		assert.Len(t, session.Messages, 1)
		assert.Equal(t, domain.PhaseLoginSuggested, session.Phase)
	})

	t.Run("create failure wraps persistence error", func(t *testing.T) {
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(errors.New("db down")).Once()

		_, err := svc.CreateSession(ctx, firmID, nil, nil)
		var perr *domain.PersistenceError
		assert.ErrorAs(t, err, &perr)
	})
}

func TestSessionService_MutationCommitsOnlyAfterSave(t *testing.T) {
	repo := new(MockSessionRepository)
	svc := newTestService(repo, nil)

	ctx := context.Background()
	firmID := uuid.New()
	stored := intake.NewSession(firmID, time.Now().UTC().Add(-time.Hour))
	sessionID := stored.SessionID

	t.Run("save failure discards the mutation", func(t *testing.T) {
		repo.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(errors.New("write failed")).Once()

		_, err := svc.ApplyMessage(ctx, firmID, sessionID, domain.Message{
			Role:    domain.RoleUser,
			Content: "hello",
		}, nil)

		var perr *domain.PersistenceError
		assert.ErrorAs(t, err, &perr)
		// The in-memory original was never touched.
		assert.Empty(t, stored.Messages)
	})

	t.Run("save success returns the mutated copy", func(t *testing.T) {
		repo.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

		session, err := svc.ApplyMessage(ctx, firmID, sessionID, domain.Message{
			Role:    domain.RoleUser,
			Content: "hello",
		}, nil)

		assert.NoError(t, err)
		assert.Len(t, session.Messages, 1)
		assert.Empty(t, stored.Messages)
	})

	t.Run("validation failure never reaches the store", func(t *testing.T) {
		// Fresh mock: AssertNotCalled inspects the mock's full call history,
		// and the shared repo has legitimate Save calls from prior subtests.
		repo := new(MockSessionRepository)
		svc := newTestService(repo, nil)
		repo.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()

		_, err := svc.ApplyMessage(ctx, firmID, sessionID, domain.Message{Role: "bogus", Content: "x"}, nil)

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestSessionService_CacheReadThrough(t *testing.T) {
	repo := new(MockSessionRepository)
	cache := new(MockSessionCache)
	svc := newTestService(repo, cache)

	ctx := context.Background()
	firmID := uuid.New()
	stored := intake.NewSession(firmID, time.Now().UTC())
	sessionID := stored.SessionID

	t.Run("cache hit skips the store", func(t *testing.T) {
		cache.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()

		session, err := svc.GetSession(ctx, firmID, sessionID)
		assert.NoError(t, err)
		assert.Equal(t, sessionID, session.SessionID)
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache miss falls back to the store", func(t *testing.T) {
		cache.On("Get", mock.Anything, firmID, sessionID).Return(nil, errors.New("miss")).Once()
		repo.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()

		session, err := svc.GetSession(ctx, firmID, sessionID)
		assert.NoError(t, err)
		assert.Equal(t, sessionID, session.SessionID)
		repo.AssertExpectations(t)
	})
}

func TestSessionService_ApplyAssessment(t *testing.T) {
	repo := new(MockSessionRepository)
	svc := newTestService(repo, nil)

	ctx := context.Background()
	firmID := uuid.New()
	stored := intake.NewSession(firmID, time.Now().UTC())
	stored.DataGoals[0].MinConfidence = 0.9
	sessionID := stored.SessionID

	repo.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

	session, outcome, err := svc.ApplyAssessment(ctx, firmID, sessionID, domain.GoalAssessmentResult{
		CompletedGoals: []domain.GoalCompletion{
			{GoalID: stored.DataGoals[0].ID, Confidence: 0.5},
			{GoalID: stored.DataGoals[1].ID, Confidence: 0.99},
		},
	})

	assert.NoError(t, err)
	assert.Len(t, outcome.Rejections, 1)
	assert.Equal(t, stored.DataGoals[0].ID, outcome.Rejections[0].GoalID)
	assert.Equal(t, []string{stored.DataGoals[1].ID}, outcome.Completed)
	assert.True(t, session.CompletedGoalIDs()[stored.DataGoals[1].ID])
}

func TestSessionService_AddGoals_DefaultsSource(t *testing.T) {
	repo := new(MockSessionRepository)
	svc := newTestService(repo, nil)

	ctx := context.Background()
	firmID := uuid.New()
	stored := intake.NewSession(firmID, time.Now().UTC())
	sessionID := stored.SessionID

	repo.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

	session, outcome, err := svc.AddGoals(ctx, firmID, sessionID, []domain.Goal{{
		ID:          "medical-records",
		Description: "Collect medical records for the injury claim",
		Priority:    domain.PriorityImportant,
		Category:    domain.CategoryEvidence,
	}})

	assert.NoError(t, err)
	assert.Equal(t, []string{"medical-records"}, outcome.Added)
	goal, ok := session.Goal("medical-records")
	assert.True(t, ok)
	assert.Equal(t, domain.SourceAdditional, goal.Source)
}

func TestSessionService_SoftDeleteInvalidatesCache(t *testing.T) {
	repo := new(MockSessionRepository)
	cache := new(MockSessionCache)
	svc := newTestService(repo, cache)

	ctx := context.Background()
	firmID := uuid.New()
	stored := intake.NewSession(firmID, time.Now().UTC())
	sessionID := stored.SessionID

	cache.On("Get", mock.Anything, firmID, sessionID).Return(nil, errors.New("miss")).Once()
	repo.On("Get", mock.Anything, firmID, sessionID).Return(stored, nil).Once()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()
	cache.On("Set", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()
	cache.On("Invalidate", mock.Anything, firmID, sessionID).Return(nil).Once()

	session, err := svc.SoftDelete(ctx, firmID, sessionID, "admin@firm.example")

	assert.NoError(t, err)
	assert.True(t, session.IsDeleted)
	assert.Equal(t, "admin@firm.example", session.DeletedBy)
	cache.AssertExpectations(t)
}

func TestSessionService_ReleasesLockForFinishedSessions(t *testing.T) {
	ctx := context.Background()
	firmID := uuid.New()

	t.Run("terminate evicts the lock", func(t *testing.T) {
		repo := new(MockSessionRepository)
		svc := newTestService(repo, nil)
		stored := intake.NewSession(firmID, time.Now().UTC())

		repo.On("Get", mock.Anything, firmID, stored.SessionID).Return(stored, nil).Once()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

		_, err := svc.Terminate(ctx, firmID, stored.SessionID, "user abandoned")
		assert.NoError(t, err)
		assert.NotContains(t, svc.locks, stored.SessionID)
	})

	t.Run("soft delete evicts the lock", func(t *testing.T) {
		repo := new(MockSessionRepository)
		svc := newTestService(repo, nil)
		stored := intake.NewSession(firmID, time.Now().UTC())

		repo.On("Get", mock.Anything, firmID, stored.SessionID).Return(stored, nil).Once()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

		_, err := svc.SoftDelete(ctx, firmID, stored.SessionID, "admin@firm.example")
		assert.NoError(t, err)
		assert.NotContains(t, svc.locks, stored.SessionID)
	})

	t.Run("failed terminate keeps the lock", func(t *testing.T) {
		repo := new(MockSessionRepository)
		svc := newTestService(repo, nil)
		stored := intake.NewSession(firmID, time.Now().UTC())

		repo.On("Get", mock.Anything, firmID, stored.SessionID).Return(stored, nil).Once()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(errors.New("write failed")).Once()

		_, err := svc.Terminate(ctx, firmID, stored.SessionID, "user abandoned")
		assert.Error(t, err)
		assert.Contains(t, svc.locks, stored.SessionID)
	})
}

func TestSessionService_ExpireIdle(t *testing.T) {
	repo := new(MockSessionRepository)
	svc := NewSessionService(repo, nil, 5*time.Second, time.Hour)

	ctx := context.Background()
	firmID := uuid.New()

	idle := intake.NewSession(firmID, time.Now().UTC().Add(-3*time.Hour))
	fresh := intake.NewSession(firmID, time.Now().UTC())
	done := intake.NewSession(firmID, time.Now().UTC().Add(-3*time.Hour))
	done.Phase = domain.PhaseTerminated

	repo.On("ListByFirm", mock.Anything, firmID, false, 1000, 0).
		Return([]domain.Session{*idle, *fresh, *done}, nil).Once()
	// Only the idle live session gets terminated.
	repo.On("Get", mock.Anything, firmID, idle.SessionID).Return(idle, nil).Once()
	repo.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.SessionID == idle.SessionID && s.Phase == domain.PhaseTerminated
	})).Return(nil).Once()

	expired, err := svc.ExpireIdle(ctx, firmID)

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
	repo.AssertExpectations(t)
}

func TestSessionService_NotFoundPassesThrough(t *testing.T) {
	repo := new(MockSessionRepository)
	svc := newTestService(repo, nil)

	ctx := context.Background()
	firmID := uuid.New()
	sessionID := uuid.New()

	repo.On("Get", mock.Anything, firmID, sessionID).Return(nil, domain.ErrSessionNotFound).Once()

	_, err := svc.GetSession(ctx, firmID, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
