package intake

import (
	"github.com/lexara-com/engage-sub006/internal/domain"
)

// EvaluatePhase advances the session at most one phase per call, re-checking
// its guard from current session state. It is safe to call repeatedly: a
// failed guard leaves the phase unchanged, and guard results are never
// cached. Phase regression is impossible here; only Terminate moves a
// session outside the forward progression.
func EvaluatePhase(s *domain.Session) (domain.Phase, bool) {
	if s.Phase.Terminal() {
		return s.Phase, false
	}

	switch s.Phase {
	case domain.PhasePreLogin:
		if s.UserIdentity.Name != "" && s.UserIdentity.HasContact() {
			s.Phase = domain.PhaseLoginSuggested
			return s.Phase, true
		}

	case domain.PhaseLoginSuggested:
		if s.IsAuthenticated {
			s.Phase = domain.PhaseSecured
			s.IsSecured = true
			return s.Phase, true
		}

	case domain.PhaseSecured:
		if s.ConflictCheck.Status.Resolved() && !s.UnresolvedConflictGoals() {
			s.Phase = domain.PhaseConflictCheckComplete
			return s.Phase, true
		}

	case domain.PhaseConflictCheckComplete:
		// Data gathering always follows a resolved conflict check.
		s.Phase = domain.PhaseDataGathering
		return s.Phase, true

	case domain.PhaseDataGathering:
		if !s.BlockingGoalsOutstanding() {
			s.Phase = domain.PhaseCompleted
			return s.Phase, true
		}
	}

	return s.Phase, false
}
