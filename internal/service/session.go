package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/lexara-com/engage-sub006/internal/intake"
	"github.com/rs/zerolog/log"
)

// SessionCache is the optional read-through cache in front of the session
// store.
type SessionCache interface {
	Get(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session) error
	Invalidate(ctx context.Context, firmID, sessionID uuid.UUID) error
}

// SessionService owns all session mutations. Each session has a single
// writer: mutations for the same session serialize on a per-session mutex,
// while different sessions proceed independently. A mutation is applied to
// a deep copy, persisted with a bounded timeout, and committed only after
// the write succeeds; a failed write discards the copy untouched.
type SessionService struct {
	repo           domain.SessionRepository
	cache          SessionCache
	persistTimeout time.Duration
	idleTimeout    time.Duration

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewSessionService creates a new session service. cache may be nil.
func NewSessionService(repo domain.SessionRepository, cache SessionCache, persistTimeout, idleTimeout time.Duration) *SessionService {
	if persistTimeout <= 0 {
		persistTimeout = 5 * time.Second
	}
	return &SessionService{
		repo:           repo,
		cache:          cache,
		persistTimeout: persistTimeout,
		idleTimeout:    idleTimeout,
		locks:          make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *SessionService) sessionLock(sessionID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// releaseLock drops the per-session mutex once the session can no longer
// be mutated, so the lock map does not grow with every session ever seen.
// A late caller simply recreates the lock, loads the terminal state, and
// is rejected before anything persists.
func (s *SessionService) releaseLock(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sessionID)
}

func (s *SessionService) load(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, firmID, sessionID); err == nil && cached != nil {
			return cached, nil
		}
	}
	return s.repo.Get(ctx, firmID, sessionID)
}

func (s *SessionService) persist(ctx context.Context, session *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	if err := s.repo.Save(ctx, session); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		return &domain.PersistenceError{Op: "save", Err: err}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, session); err != nil {
			log.Warn().Err(err).Str("session_id", session.SessionID.String()).Msg("failed to refresh session cache")
		}
	}
	return nil
}

// mutate runs fn against a deep copy of the session under the per-session
// lock and commits the copy only after a successful persistence write.
func (s *SessionService) mutate(ctx context.Context, firmID, sessionID uuid.UUID, fn func(*domain.Session) error) (*domain.Session, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.load(ctx, firmID, sessionID)
	if err != nil {
		return nil, err
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	return working, nil
}

// CreateSession starts a new intake conversation for a firm, seeded with
// the base goal checklist. An optional opening message and identity
// fragment apply before the first persistence write.
func (s *SessionService) CreateSession(ctx context.Context, firmID uuid.UUID, msg *domain.Message, identity *domain.UserIdentity) (*domain.Session, error) {
	now := time.Now().UTC()
	session := intake.NewSession(firmID, now)
	if msg != nil {
		if err := intake.ApplyMessage(session, *msg, identity, now); err != nil {
			return nil, err
		}
	} else if identity != nil {
		session.UserIdentity.Merge(*identity)
		intake.EvaluatePhase(session)
	}

	ctxSave, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()
	if err := s.repo.Create(ctxSave, session); err != nil {
		return nil, &domain.PersistenceError{Op: "create", Err: err}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctxSave, session); err != nil {
			log.Warn().Err(err).Str("session_id", session.SessionID.String()).Msg("failed to cache new session")
		}
	}

	log.Info().
		Str("session_id", session.SessionID.String()).
		Str("firm_id", firmID.String()).
		Str("phase", string(session.Phase)).
		Msg("intake session created")
	return session, nil
}

// GetSession returns the current session state
func (s *SessionService) GetSession(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	return s.load(ctx, firmID, sessionID)
}

// ListSessions lists a firm's sessions, newest activity first
func (s *SessionService) ListSessions(ctx context.Context, firmID uuid.UUID, includeDeleted bool, limit, offset int) ([]domain.Session, error) {
	return s.repo.ListByFirm(ctx, firmID, includeDeleted, limit, offset)
}

// GetTranscript returns the session's message transcript
func (s *SessionService) GetTranscript(ctx context.Context, firmID, sessionID uuid.UUID) ([]domain.Message, error) {
	session, err := s.load(ctx, firmID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// ApplyMessage appends a message, merges any identity fragment, and
// re-evaluates the phase once.
func (s *SessionService) ApplyMessage(ctx context.Context, firmID, sessionID uuid.UUID, msg domain.Message, identity *domain.UserIdentity) (*domain.Session, error) {
	return s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		return intake.ApplyMessage(session, msg, identity, time.Now().UTC())
	})
}

// ApplyAssessment routes a goal-tracker result through the reconciler.
// Low-confidence completions are rejected individually and reported in the
// outcome; the rest of the batch still commits.
func (s *SessionService) ApplyAssessment(ctx context.Context, firmID, sessionID uuid.UUID, assessment domain.GoalAssessmentResult) (*domain.Session, intake.ReconcileOutcome, error) {
	var outcome intake.ReconcileOutcome
	session, err := s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		var applyErr error
		outcome, applyErr = intake.ApplyGoalChanges(session, intake.ChangesFromAssessment(assessment), time.Now().UTC())
		return applyErr
	})
	if err != nil {
		return nil, intake.ReconcileOutcome{}, err
	}
	if len(outcome.Rejections) > 0 {
		log.Info().
			Str("session_id", sessionID.String()).
			Int("rejected", len(outcome.Rejections)).
			Msg("goal completions rejected for low confidence")
	}
	return session, outcome, nil
}

// AddGoals appends tool-supplied goals (supporting-document search results
// and the like). Goals without a source default to additional.
func (s *SessionService) AddGoals(ctx context.Context, firmID, sessionID uuid.UUID, goals []domain.Goal) (*domain.Session, intake.ReconcileOutcome, error) {
	for i := range goals {
		if goals[i].Source == "" {
			goals[i].Source = domain.SourceAdditional
		}
	}
	var outcome intake.ReconcileOutcome
	session, err := s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		var applyErr error
		outcome, applyErr = intake.ApplyGoalChanges(session, intake.ProposedChanges{Add: goals}, time.Now().UTC())
		return applyErr
	})
	if err != nil {
		return nil, intake.ReconcileOutcome{}, err
	}
	return session, outcome, nil
}

// ApplyConflictResult installs a conflict-checker result pushed by the
// external tool, injecting conflict-resolution goals for detected matches.
func (s *SessionService) ApplyConflictResult(ctx context.Context, firmID, sessionID uuid.UUID, result domain.ConflictResult) (*domain.Session, error) {
	return s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		return intake.ApplyConflictResult(session, result, time.Now().UTC())
	})
}

// MarkAuthenticated records the auth collaborator's confirmation for this
// session.
func (s *SessionService) MarkAuthenticated(ctx context.Context, firmID, sessionID uuid.UUID, auth0UserID string) (*domain.Session, error) {
	return s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		return intake.MarkAuthenticated(session, auth0UserID, time.Now().UTC())
	})
}

// OverrideGoal is the manual reviewer path: complete a goal directly or
// reopen a wrongly-completed one.
func (s *SessionService) OverrideGoal(ctx context.Context, firmID, sessionID uuid.UUID, goalID string, completed bool, data map[string]any, overriddenBy string) (*domain.Session, error) {
	return s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		return intake.OverrideGoal(session, goalID, completed, data, overriddenBy, time.Now().UTC())
	})
}

// Terminate ends the conversation; no further mutation besides soft delete
// is possible afterwards.
func (s *SessionService) Terminate(ctx context.Context, firmID, sessionID uuid.UUID, reason string) (*domain.Session, error) {
	session, err := s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		return intake.Terminate(session, reason, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.releaseLock(sessionID)
	return session, nil
}

// SoftDelete stamps the audit fields; the transcript stays on record
func (s *SessionService) SoftDelete(ctx context.Context, firmID, sessionID uuid.UUID, deletedBy string) (*domain.Session, error) {
	session, err := s.mutate(ctx, firmID, sessionID, func(session *domain.Session) error {
		intake.SoftDelete(session, deletedBy, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.releaseLock(sessionID)
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, firmID, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("failed to invalidate deleted session")
		}
	}
	return session, nil
}

// ExpireIdle terminates every live session of the firm whose last activity
// is older than the configured idle timeout. Returns the number of
// sessions terminated.
func (s *SessionService) ExpireIdle(ctx context.Context, firmID uuid.UUID) (int, error) {
	if s.idleTimeout <= 0 {
		return 0, nil
	}
	sessions, err := s.repo.ListByFirm(ctx, firmID, false, 1000, 0)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-s.idleTimeout)
	expired := 0
	for _, sess := range sessions {
		if sess.Phase.Terminal() || !sess.LastActivity.Before(cutoff) {
			continue
		}
		if _, err := s.Terminate(ctx, firmID, sess.SessionID, "idle timeout"); err != nil {
			log.Error().Err(err).Str("session_id", sess.SessionID.String()).Msg("failed to expire idle session")
			continue
		}
		expired++
	}
	return expired, nil
}
