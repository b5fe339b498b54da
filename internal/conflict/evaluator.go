package conflict

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

// Confidence assigned per match type. Exact identifier hits are certain;
// alias and phonetic hits land inside the review band by default.
const (
	exactMatchConfidence    = 1.0
	aliasMatchConfidence    = 0.9
	phoneticMatchConfidence = 0.75
)

// Index is the narrow view of the party store the evaluator needs
type Index interface {
	ListByFirm(ctx context.Context, firmID uuid.UUID) ([]domain.Party, error)
}

// Config carries the caller-supplied decision thresholds. The band
// [Threshold, ExactConfidence) is ambiguous: status comes back
// conflict_detected but flagged for human review.
type Config struct {
	Threshold       float64
	ExactConfidence float64
}

// Evaluator screens session identifiers against a firm's party index
type Evaluator struct {
	index Index
	cfg   Config
}

// NewEvaluator creates an evaluator over the given party index
func NewEvaluator(index Index, cfg Config) *Evaluator {
	return &Evaluator{index: index, cfg: cfg}
}

// Evaluate compares identifiers against the firm's index and returns a
// resolved conflict result with ranked matches. If the index cannot be
// read, the error wraps ErrConflictCheckUnavailable and the session's check
// must stay pending; a firm is never told "no conflict" when the check
// could not run.
func (e *Evaluator) Evaluate(ctx context.Context, firmID uuid.UUID, identifiers []string) (domain.ConflictResult, error) {
	result := domain.ConflictResult{
		Status:          domain.ConflictPending,
		CheckedIdentity: append([]string(nil), identifiers...),
		CheckedAt:       time.Now().UTC(),
	}
	if len(identifiers) == 0 {
		return result, &domain.ValidationError{Field: "identifiers", Reason: "at least one identifier is required"}
	}

	parties, err := e.index.ListByFirm(ctx, firmID)
	if err != nil {
		return result, fmt.Errorf("%w: %v", domain.ErrConflictCheckUnavailable, err)
	}

	best := make(map[uuid.UUID]domain.ConflictMatch)
	for _, party := range parties {
		for _, id := range identifiers {
			m, ok := matchParty(party, id)
			if !ok || m.Confidence < e.cfg.Threshold {
				continue
			}
			if prev, seen := best[party.ID]; !seen || m.Confidence > prev.Confidence {
				best[party.ID] = m
			}
		}
	}

	for _, m := range best {
		result.Matches = append(result.Matches, m)
	}
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Confidence > result.Matches[j].Confidence
	})

	if len(result.Matches) == 0 {
		result.Status = domain.ConflictClear
		return result, nil
	}

	result.Status = domain.ConflictDetected
	for _, m := range result.Matches {
		if m.Confidence < e.cfg.ExactConfidence {
			result.RequiresReview = true
			break
		}
	}
	return result, nil
}

// matchParty finds the strongest match between one identifier and one
// indexed party, trying exact, alias, phonetic, then fuzzy in that order.
func matchParty(party domain.Party, identifier string) (domain.ConflictMatch, bool) {
	norm := normalize(identifier)
	if norm == "" {
		return domain.ConflictMatch{}, false
	}

	match := func(t domain.MatchType, confidence float64) (domain.ConflictMatch, bool) {
		return domain.ConflictMatch{
			ConflictID:    party.ID.String(),
			MatchedEntity: party.Name,
			Identifier:    identifier,
			MatchType:     t,
			Confidence:    confidence,
		}, true
	}

	for _, field := range []string{party.Name, party.Email, party.Phone} {
		if field != "" && normalize(field) == norm {
			return match(domain.MatchExact, exactMatchConfidence)
		}
	}
	for _, alias := range party.Aliases {
		if alias != "" && normalize(alias) == norm {
			return match(domain.MatchAlias, aliasMatchConfidence)
		}
	}
	if party.Name != "" && phoneticEqual(party.Name, identifier) {
		return match(domain.MatchPhonetic, phoneticMatchConfidence)
	}
	if party.Name != "" {
		if sim := similarity(party.Name, identifier); sim > 0 {
			// Fuzzy confidence is the name similarity itself; the caller's
			// threshold decides whether it counts.
			return match(domain.MatchFuzzy, sim)
		}
	}
	return domain.ConflictMatch{}, false
}
