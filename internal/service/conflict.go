package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/conflict"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/rs/zerolog/log"
)

// ConflictService runs the built-in conflict evaluator against the firm
// party index and manages the index itself.
type ConflictService struct {
	evaluator *conflict.Evaluator
	parties   domain.PartyRepository
	sessions  *SessionService
}

// NewConflictService creates a new conflict service
func NewConflictService(evaluator *conflict.Evaluator, parties domain.PartyRepository, sessions *SessionService) *ConflictService {
	return &ConflictService{
		evaluator: evaluator,
		parties:   parties,
		sessions:  sessions,
	}
}

// RunCheck screens the session's gathered identity against the firm's
// party index and applies the result to the session. If the index lookup
// fails the session's check stays pending and the error is retryable; the
// firm is never told "clear" for a check that did not run.
func (s *ConflictService) RunCheck(ctx context.Context, firmID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessions.GetSession(ctx, firmID, sessionID)
	if err != nil {
		return nil, err
	}

	identifiers := session.UserIdentity.Identifiers()
	result, err := s.evaluator.Evaluate(ctx, firmID, identifiers)
	if err != nil {
		log.Warn().Err(err).
			Str("session_id", sessionID.String()).
			Msg("conflict check did not run; status stays pending")
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("status", string(result.Status)).
		Int("matches", len(result.Matches)).
		Bool("requires_review", result.RequiresReview).
		Msg("conflict check evaluated")

	return s.sessions.ApplyConflictResult(ctx, firmID, sessionID, result)
}

// ApplyResult installs a result supplied by the external conflict-checker
// tool, with the same goal-injection behavior as a built-in check.
func (s *ConflictService) ApplyResult(ctx context.Context, firmID, sessionID uuid.UUID, result domain.ConflictResult) (*domain.Session, error) {
	return s.sessions.ApplyConflictResult(ctx, firmID, sessionID, result)
}

// AddParty registers a party in the firm's conflict index
func (s *ConflictService) AddParty(ctx context.Context, party *domain.Party) error {
	if party.ID == uuid.Nil {
		party.ID = uuid.New()
	}
	if party.CreatedAt.IsZero() {
		party.CreatedAt = time.Now().UTC()
	}
	return s.parties.Create(ctx, party)
}

// ListParties returns the firm's conflict index entries
func (s *ConflictService) ListParties(ctx context.Context, firmID uuid.UUID) ([]domain.Party, error) {
	return s.parties.ListByFirm(ctx, firmID)
}

// RemoveParty deletes an index entry
func (s *ConflictService) RemoveParty(ctx context.Context, firmID, partyID uuid.UUID) error {
	return s.parties.Delete(ctx, firmID, partyID)
}
