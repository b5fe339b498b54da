package intake_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/lexara-com/engage-sub006/internal/intake"
)

func securedSession(t *testing.T) *domain.Session {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := intake.NewSession(uuid.New(), now)
	s.UserIdentity = domain.UserIdentity{Name: "Jordan Blake", Email: "jordan@example.com"}
	s.IsAuthenticated = true
	s.Phase = domain.PhaseSecured
	s.IsSecured = true
	return s
}

func TestEvaluatePhase_OneStepPerCall(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := intake.NewSession(uuid.New(), now)

	// Pre-stage everything so each guard would pass immediately.
	s.UserIdentity = domain.UserIdentity{Name: "Jordan Blake", Email: "jordan@example.com"}
	s.IsAuthenticated = true
	s.ConflictCheck = domain.ConflictCheck{Status: domain.ConflictClear}
	for i := range s.DataGoals {
		s.DataGoals[i].Completed = true
	}

	want := []domain.Phase{
		domain.PhaseLoginSuggested,
		domain.PhaseSecured,
		domain.PhaseConflictCheckComplete,
		domain.PhaseDataGathering,
		domain.PhaseCompleted,
	}
	for _, phase := range want {
		got, advanced := intake.EvaluatePhase(s)
		if !advanced {
			t.Fatalf("expected advance to %s, stuck at %s", phase, got)
		}
		if got != phase {
			t.Fatalf("advanced to %s, want %s", got, phase)
		}
	}

	if _, advanced := intake.EvaluatePhase(s); advanced {
		t.Error("advanced past the completed phase")
	}
}

func TestEvaluatePhase_Guards(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*domain.Session)
		want    domain.Phase
		advance bool
	}{
		{
			name:    "pre_login stays without identity",
			mutate:  func(s *domain.Session) {},
			want:    domain.PhasePreLogin,
			advance: false,
		},
		{
			name: "pre_login stays with name but no contact",
			mutate: func(s *domain.Session) {
				s.UserIdentity.Name = "Jordan Blake"
			},
			want:    domain.PhasePreLogin,
			advance: false,
		},
		{
			name: "pre_login advances with name and phone",
			mutate: func(s *domain.Session) {
				s.UserIdentity.Name = "Jordan Blake"
				s.UserIdentity.Phone = "+1-555-0100"
			},
			want:    domain.PhaseLoginSuggested,
			advance: true,
		},
		{
			name: "login_suggested waits for authentication",
			mutate: func(s *domain.Session) {
				s.Phase = domain.PhaseLoginSuggested
			},
			want:    domain.PhaseLoginSuggested,
			advance: false,
		},
		{
			name: "secured waits for conflict resolution",
			mutate: func(s *domain.Session) {
				s.Phase = domain.PhaseSecured
			},
			want:    domain.PhaseSecured,
			advance: false,
		},
		{
			name: "terminated never advances",
			mutate: func(s *domain.Session) {
				s.Phase = domain.PhaseTerminated
				s.UserIdentity = domain.UserIdentity{Name: "x", Email: "x@example.com"}
			},
			want:    domain.PhaseTerminated,
			advance: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := intake.NewSession(uuid.New(), now)
			tt.mutate(s)
			got, advanced := intake.EvaluatePhase(s)
			if got != tt.want || advanced != tt.advance {
				t.Errorf("EvaluatePhase() = (%s, %v), want (%s, %v)", got, advanced, tt.want, tt.advance)
			}
		})
	}
}

func TestEvaluatePhase_ConflictGate(t *testing.T) {
	s := securedSession(t)
	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	// Detected conflict with an outstanding resolution goal keeps the
	// session in secured.
	err := intake.ApplyConflictResult(s, domain.ConflictResult{
		Status: domain.ConflictDetected,
		Matches: []domain.ConflictMatch{{
			ConflictID:    "party-9",
			MatchedEntity: "Blake Holdings",
			Identifier:    "Jordan Blake",
			MatchType:     domain.MatchFuzzy,
			Confidence:    0.8,
		}},
	}, now)
	if err != nil {
		t.Fatalf("ApplyConflictResult() error = %v", err)
	}
	if s.Phase != domain.PhaseSecured {
		t.Fatalf("phase = %s, want secured while the resolution goal is open", s.Phase)
	}

	// Completing the injected goal unblocks the transition.
	_, err = intake.ApplyGoalChanges(s, intake.ProposedChanges{
		Complete: []domain.GoalCompletion{{GoalID: "conflict-resolution-party-9", Confidence: 1}},
	}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ApplyGoalChanges() error = %v", err)
	}
	if s.Phase != domain.PhaseConflictCheckComplete {
		t.Errorf("phase = %s, want conflict_check_complete", s.Phase)
	}
}

func TestEvaluatePhase_PhaseOrderMonotonic(t *testing.T) {
	phases := []domain.Phase{
		domain.PhasePreLogin,
		domain.PhaseLoginSuggested,
		domain.PhaseSecured,
		domain.PhaseConflictCheckComplete,
		domain.PhaseDataGathering,
		domain.PhaseCompleted,
	}
	for i := 1; i < len(phases); i++ {
		if phases[i].Order() <= phases[i-1].Order() {
			t.Errorf("%s order %d not after %s order %d", phases[i], phases[i].Order(), phases[i-1], phases[i-1].Order())
		}
	}
	if domain.PhaseTerminated.Order() != -1 {
		t.Errorf("terminated order = %d, want -1", domain.PhaseTerminated.Order())
	}
}
