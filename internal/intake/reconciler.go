// Package intake implements the conversation session core: the goal
// reconciler, the phase transition engine, and the aggregate operations that
// tie them together. Everything here is pure in-memory logic; persistence and
// external lookups live in the service layer.
package intake

import (
	"fmt"
	"time"

	"github.com/lexara-com/engage-sub006/internal/domain"
)

// ProposedChanges is one tool caller's batch of goal-list changes. A batch
// may add new goals, mark existing goals complete, or flag goals as blocked.
type ProposedChanges struct {
	Add      []domain.Goal
	Complete []domain.GoalCompletion
	Block    []domain.GoalBlock
}

// Empty reports whether the batch proposes nothing
func (c ProposedChanges) Empty() bool {
	return len(c.Add) == 0 && len(c.Complete) == 0 && len(c.Block) == 0
}

// ReconcileOutcome reports what a merge actually did
type ReconcileOutcome struct {
	Goals      []domain.Goal
	Added      []string
	Completed  []string
	Blocked    []string
	Rejections []domain.LowConfidenceRejection
}

// Reconcile merges a proposed batch into the canonical goal list.
//
// Merge rules:
//   - Adds are idempotent and first-wins: a goal ID already present is a
//     no-op, and the existing goal's completed state is never overwritten.
//   - Completes are idempotent and never regress: a goal already completed
//     stays completed with its original completion data.
//   - A completion whose confidence falls below the goal's minimum is
//     rejected individually; the rest of the batch still applies.
//   - Blocks annotate incomplete goals only; a completed goal ignores them.
//   - New goals append at the tail; existing entries are never reordered.
//
// Applying independent batches in any order yields the same final list.
func Reconcile(current []domain.Goal, changes ProposedChanges, now time.Time) (ReconcileOutcome, error) {
	out := ReconcileOutcome{Goals: make([]domain.Goal, len(current))}
	for i, g := range current {
		out.Goals[i] = g.Clone()
	}

	index := make(map[string]int, len(out.Goals))
	for i, g := range out.Goals {
		index[g.ID] = i
	}

	for _, g := range changes.Add {
		if err := g.Validate(); err != nil {
			return ReconcileOutcome{}, err
		}
		if _, exists := index[g.ID]; exists {
			continue
		}
		goal := g.Clone()
		if goal.AddedAt.IsZero() {
			goal.AddedAt = now
		}
		index[goal.ID] = len(out.Goals)
		out.Goals = append(out.Goals, goal)
		out.Added = append(out.Added, goal.ID)
	}

	for _, c := range changes.Complete {
		if c.GoalID == "" {
			return ReconcileOutcome{}, &domain.ValidationError{Field: "goal_id", Reason: "completion requires a goal id"}
		}
		i, exists := index[c.GoalID]
		if !exists {
			return ReconcileOutcome{}, &domain.ValidationError{Field: "goal_id", Reason: fmt.Sprintf("unknown goal %q", c.GoalID)}
		}
		goal := &out.Goals[i]
		if goal.Completed {
			continue
		}
		if goal.MinConfidence > 0 && c.Confidence < goal.MinConfidence {
			out.Rejections = append(out.Rejections, domain.LowConfidenceRejection{
				GoalID:     c.GoalID,
				Confidence: c.Confidence,
				Minimum:    goal.MinConfidence,
			})
			continue
		}
		goal.Completed = true
		goal.CompletionData = cloneData(c.CompletionData)
		completedAt := now
		goal.CompletedAt = &completedAt
		goal.Blocked = false
		goal.BlockReason = ""
		out.Completed = append(out.Completed, c.GoalID)
	}

	for _, b := range changes.Block {
		if b.GoalID == "" {
			return ReconcileOutcome{}, &domain.ValidationError{Field: "goal_id", Reason: "block requires a goal id"}
		}
		i, exists := index[b.GoalID]
		if !exists {
			return ReconcileOutcome{}, &domain.ValidationError{Field: "goal_id", Reason: fmt.Sprintf("unknown goal %q", b.GoalID)}
		}
		goal := &out.Goals[i]
		if goal.Completed {
			continue
		}
		goal.Blocked = true
		goal.BlockReason = b.Reason
		out.Blocked = append(out.Blocked, b.GoalID)
	}

	return out, nil
}

// ChangesFromAssessment converts a goal-tracker result into a proposed
// batch. Per-completion confidence takes precedence; the assessment-level
// confidence backfills completions that carry none.
func ChangesFromAssessment(a domain.GoalAssessmentResult) ProposedChanges {
	changes := ProposedChanges{Block: a.Blockers}
	for _, c := range a.CompletedGoals {
		if c.Confidence == 0 {
			c.Confidence = a.Confidence
		}
		changes.Complete = append(changes.Complete, c)
	}
	for _, g := range a.IncompleteGoals {
		if g.Source == "" {
			g.Source = domain.SourceAdditional
		}
		changes.Add = append(changes.Add, g)
	}
	return changes
}

// ConflictResolutionGoal builds the critical goal injected when a conflict
// match needs resolution. The ID is derived from the conflict ID so that
// re-injection for the same match is a no-op under the add rules.
func ConflictResolutionGoal(match domain.ConflictMatch, now time.Time) domain.Goal {
	return domain.Goal{
		ID:                "conflict-resolution-" + match.ConflictID,
		Description:       fmt.Sprintf("Resolve potential conflict of interest with %s (%s match)", match.MatchedEntity, match.MatchType),
		Priority:          domain.PriorityCritical,
		Category:          domain.CategoryConflictResolution,
		Source:            domain.SourceConflictChecker,
		RelatedConflictID: match.ConflictID,
		AddedAt:           now,
	}
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
