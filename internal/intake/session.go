package intake

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

// NewSession creates a session in pre_login with the base goal checklist
// seeded.
func NewSession(firmID uuid.UUID, now time.Time) *domain.Session {
	return &domain.Session{
		SessionID: uuid.New(),
		FirmID:    firmID,
		Phase:     domain.PhasePreLogin,
		ConflictCheck: domain.ConflictCheck{
			Status: domain.ConflictPending,
		},
		DataGoals:    BaseGoals(now),
		CreatedAt:    now,
		LastActivity: now,
	}
}

func mutable(s *domain.Session) error {
	if s.IsDeleted {
		return domain.ErrSessionDeleted
	}
	if s.Phase == domain.PhaseTerminated {
		return domain.ErrSessionTerminated
	}
	return nil
}

// ApplyMessage appends a message to the transcript, merges any identity
// fragment the agent extracted, and runs one phase evaluation.
func ApplyMessage(s *domain.Session, msg domain.Message, identity *domain.UserIdentity, now time.Time) error {
	if err := mutable(s); err != nil {
		return err
	}
	if !msg.Role.Valid() {
		return &domain.ValidationError{Field: "role", Reason: "role must be user or agent"}
	}
	if msg.Content == "" {
		return &domain.ValidationError{Field: "content", Reason: "message content is required"}
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	s.Messages = append(s.Messages, msg)
	if identity != nil {
		s.UserIdentity.Merge(*identity)
	}
	s.LastActivity = now
	EvaluatePhase(s)
	return nil
}

// ApplyGoalChanges routes a proposed batch through the reconciler, commits
// the merged list, and runs one phase evaluation.
func ApplyGoalChanges(s *domain.Session, changes ProposedChanges, now time.Time) (ReconcileOutcome, error) {
	if err := mutable(s); err != nil {
		return ReconcileOutcome{}, err
	}
	outcome, err := Reconcile(s.DataGoals, changes, now)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	s.DataGoals = outcome.Goals
	s.LastActivity = now
	EvaluatePhase(s)
	return outcome, nil
}

// ApplyConflictResult installs a conflict check record and, for a detected
// conflict, injects one critical conflict-resolution goal per match. The
// incoming result is always a fresh check record; terminal statuses are
// replaced, never edited in place. Ends with one phase evaluation.
func ApplyConflictResult(s *domain.Session, result domain.ConflictResult, now time.Time) error {
	if err := mutable(s); err != nil {
		return err
	}
	if !result.Status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: "unknown conflict status"}
	}

	checkedAt := result.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = now
	}
	check := domain.ConflictCheck{
		Status:          result.Status,
		CheckedAt:       &checkedAt,
		CheckedIdentity: append([]string(nil), result.CheckedIdentity...),
		Matches:         append([]domain.ConflictMatch(nil), result.Matches...),
		RequiresReview:  result.RequiresReview,
	}
	if result.Status == domain.ConflictDetected && len(result.Matches) > 0 {
		check.ConflictDetails = result.Matches[0].MatchedEntity
	}
	s.ConflictCheck = check

	if result.Status == domain.ConflictDetected {
		var changes ProposedChanges
		for _, m := range result.Matches {
			changes.Add = append(changes.Add, ConflictResolutionGoal(m, now))
		}
		outcome, err := Reconcile(s.DataGoals, changes, now)
		if err != nil {
			return err
		}
		s.DataGoals = outcome.Goals
	}

	s.LastActivity = now
	EvaluatePhase(s)
	return nil
}

// MarkAuthenticated records the auth collaborator's confirmation. The first
// authenticated user is pinned to the session; later attempts must match the
// allowlist. Ends with one phase evaluation.
func MarkAuthenticated(s *domain.Session, auth0UserID string, now time.Time) error {
	if err := mutable(s); err != nil {
		return err
	}
	if auth0UserID == "" {
		return &domain.ValidationError{Field: "auth0_user_id", Reason: "auth0 user id is required"}
	}
	if !s.Auth0UserAllowed(auth0UserID) {
		return domain.ErrAuth0UserNotAllowed
	}
	s.IsAuthenticated = true
	s.Auth0UserID = auth0UserID
	if len(s.AllowedAuth0Users) == 0 {
		s.AllowedAuth0Users = []string{auth0UserID}
	}
	s.LastActivity = now
	EvaluatePhase(s)
	return nil
}

// OverrideGoal is the manual path a human reviewer uses to complete a goal
// directly or to reopen a wrongly-completed one. It is deliberately separate
// from automated reconciliation, which can never regress a completed goal.
func OverrideGoal(s *domain.Session, goalID string, completed bool, data map[string]any, overriddenBy string, now time.Time) error {
	if err := mutable(s); err != nil {
		return err
	}
	if overriddenBy == "" {
		return &domain.ValidationError{Field: "overridden_by", Reason: "manual override requires a reviewer identity"}
	}
	goal, ok := s.Goal(goalID)
	if !ok {
		return &domain.ValidationError{Field: "goal_id", Reason: "unknown goal " + goalID}
	}

	goal.Completed = completed
	if completed {
		if data == nil {
			data = map[string]any{}
		}
		data["overridden_by"] = overriddenBy
		goal.CompletionData = data
		completedAt := now
		goal.CompletedAt = &completedAt
		goal.Blocked = false
		goal.BlockReason = ""
	} else {
		goal.CompletionData = nil
		goal.CompletedAt = nil
	}

	s.LastActivity = now
	EvaluatePhase(s)
	return nil
}

// Terminate moves the session to the terminated phase and freezes further
// mutation; only the soft-delete fields remain writable afterwards. A
// session already in a terminal phase is left untouched: completed stays
// completed.
func Terminate(s *domain.Session, reason string, now time.Time) error {
	if s.IsDeleted {
		return domain.ErrSessionDeleted
	}
	if s.Phase.Terminal() {
		return nil
	}
	s.Phase = domain.PhaseTerminated
	s.TerminationReason = reason
	s.LastActivity = now
	return nil
}

// SoftDelete stamps the audit fields; the transcript is retained for
// compliance and never physically erased here.
func SoftDelete(s *domain.Session, deletedBy string, now time.Time) {
	if s.IsDeleted {
		return
	}
	s.IsDeleted = true
	deletedAt := now
	s.DeletedAt = &deletedAt
	s.DeletedBy = deletedBy
}
