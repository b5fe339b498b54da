package conflict

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

type stubIndex struct {
	parties []domain.Party
	err     error
}

func (s *stubIndex) ListByFirm(ctx context.Context, firmID uuid.UUID) ([]domain.Party, error) {
	return s.parties, s.err
}

var testConfig = Config{Threshold: 0.7, ExactConfidence: 0.95}

func TestEvaluator_ExactMatch(t *testing.T) {
	party := domain.Party{ID: uuid.New(), Name: "Jordan Blake", Email: "jordan@example.com", Role: domain.PartyClient}
	e := NewEvaluator(&stubIndex{parties: []domain.Party{party}}, testConfig)

	result, err := e.Evaluate(context.Background(), uuid.New(), []string{"jordan blake"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if result.Status != domain.ConflictDetected {
		t.Fatalf("status = %s, want conflict_detected", result.Status)
	}
	if result.RequiresReview {
		t.Error("exact match should not need review")
	}
	if len(result.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(result.Matches))
	}
	m := result.Matches[0]
	if m.MatchType != domain.MatchExact || m.Confidence != 1 {
		t.Errorf("match = %+v", m)
	}
	if m.ConflictID != party.ID.String() {
		t.Errorf("conflict ID = %s, want %s", m.ConflictID, party.ID)
	}
}

func TestEvaluator_Clear(t *testing.T) {
	e := NewEvaluator(&stubIndex{parties: []domain.Party{
		{ID: uuid.New(), Name: "Completely Unrelated", Role: domain.PartyOpposing},
	}}, testConfig)

	result, err := e.Evaluate(context.Background(), uuid.New(), []string{"Jordan Blake"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Status != domain.ConflictClear {
		t.Errorf("status = %s, want clear", result.Status)
	}
	if len(result.Matches) != 0 {
		t.Errorf("matches = %v, want none", result.Matches)
	}
}

func TestEvaluator_ReviewBand(t *testing.T) {
	tests := []struct {
		name       string
		party      domain.Party
		identifier string
		matchType  domain.MatchType
		review     bool
	}{
		{
			name:       "alias match needs review",
			party:      domain.Party{ID: uuid.New(), Name: "Blake Holdings LLC", Aliases: []string{"Blake Holdings"}, Role: domain.PartyOpposing},
			identifier: "Blake Holdings",
			matchType:  domain.MatchAlias,
			review:     true,
		},
		{
			name:       "phonetic match needs review",
			party:      domain.Party{ID: uuid.New(), Name: "John Smith", Role: domain.PartyClient},
			identifier: "Jon Smyth",
			matchType:  domain.MatchPhonetic,
			review:     true,
		},
		{
			name:       "near-identical name falls to fuzzy",
			party:      domain.Party{ID: uuid.New(), Name: "Jordan Blare", Role: domain.PartyClient},
			identifier: "Jordan Blake",
			matchType:  domain.MatchFuzzy,
			review:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(&stubIndex{parties: []domain.Party{tt.party}}, testConfig)
			result, err := e.Evaluate(context.Background(), uuid.New(), []string{tt.identifier})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if result.Status != domain.ConflictDetected {
				t.Fatalf("status = %s, want conflict_detected", result.Status)
			}
			if result.RequiresReview != tt.review {
				t.Errorf("requires review = %v, want %v", result.RequiresReview, tt.review)
			}
			if result.Matches[0].MatchType != tt.matchType {
				t.Errorf("match type = %s, want %s", result.Matches[0].MatchType, tt.matchType)
			}
		})
	}
}

func TestEvaluator_BestMatchPerParty(t *testing.T) {
	party := domain.Party{ID: uuid.New(), Name: "Jordan Blake", Email: "jordan@example.com", Role: domain.PartyClient}
	e := NewEvaluator(&stubIndex{parties: []domain.Party{party}}, testConfig)

	// Both identifiers hit the same party; only the strongest survives.
	result, err := e.Evaluate(context.Background(), uuid.New(), []string{"Jordon Blake", "jordan@example.com"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("got %d matches, want 1 per party", len(result.Matches))
	}
	if result.Matches[0].Confidence != 1 {
		t.Errorf("kept confidence %v, want the exact hit", result.Matches[0].Confidence)
	}
	if result.RequiresReview {
		t.Error("best match is exact; no review needed")
	}
}

func TestEvaluator_MatchesSortedByConfidence(t *testing.T) {
	exact := domain.Party{ID: uuid.New(), Name: "Jordan Blake", Role: domain.PartyClient}
	phonetic := domain.Party{ID: uuid.New(), Name: "Jordon Blaik", Role: domain.PartyOpposing}
	e := NewEvaluator(&stubIndex{parties: []domain.Party{phonetic, exact}}, testConfig)

	result, err := e.Evaluate(context.Background(), uuid.New(), []string{"Jordan Blake"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Matches) < 2 {
		t.Fatalf("got %d matches, want 2", len(result.Matches))
	}
	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i].Confidence > result.Matches[i-1].Confidence {
			t.Errorf("matches not sorted: %v", result.Matches)
		}
	}
	if result.Matches[0].MatchType != domain.MatchExact {
		t.Errorf("strongest match first = %s, want exact", result.Matches[0].MatchType)
	}
}

func TestEvaluator_IndexUnavailable(t *testing.T) {
	e := NewEvaluator(&stubIndex{err: errors.New("index down")}, testConfig)

	result, err := e.Evaluate(context.Background(), uuid.New(), []string{"Jordan Blake"})
	if !errors.Is(err, domain.ErrConflictCheckUnavailable) {
		t.Fatalf("got %v, want ErrConflictCheckUnavailable", err)
	}
	if result.Status != domain.ConflictPending {
		t.Errorf("status = %s, want pending when the index cannot be read", result.Status)
	}
	if !domain.Retryable(err) {
		t.Error("unavailable index should be retryable")
	}
}

func TestEvaluator_NoIdentifiers(t *testing.T) {
	e := NewEvaluator(&stubIndex{}, testConfig)

	result, err := e.Evaluate(context.Background(), uuid.New(), nil)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want validation error", err)
	}
	if result.Status != domain.ConflictPending {
		t.Errorf("status = %s, want pending", result.Status)
	}
}
