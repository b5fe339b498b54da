package domain

import (
	"fmt"
	"time"
)

// GoalPriority ranks how strongly a goal gates intake progress
type GoalPriority string

const (
	PriorityCritical  GoalPriority = "critical"
	PriorityRequired  GoalPriority = "required"
	PriorityImportant GoalPriority = "important"
	PriorityOptional  GoalPriority = "optional"
)

// Blocking reports whether an incomplete goal of this priority prevents
// the session from completing data gathering.
func (p GoalPriority) Blocking() bool {
	return p == PriorityCritical || p == PriorityRequired
}

// Valid reports whether the priority is one of the known values
func (p GoalPriority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityRequired, PriorityImportant, PriorityOptional:
		return true
	}
	return false
}

// GoalCategory classifies what kind of information a goal collects
type GoalCategory string

const (
	CategoryIdentification     GoalCategory = "identification"
	CategoryConflictResolution GoalCategory = "conflict_resolution"
	CategoryLegalContext       GoalCategory = "legal_context"
	CategoryIncidentDetails    GoalCategory = "incident_details"
	CategoryEvidence           GoalCategory = "evidence"
)

// Valid reports whether the category is one of the known values
func (c GoalCategory) Valid() bool {
	switch c {
	case CategoryIdentification, CategoryConflictResolution, CategoryLegalContext,
		CategoryIncidentDetails, CategoryEvidence:
		return true
	}
	return false
}

// GoalSource records which subsystem originated a goal. Reconciliation
// precedence keys off this tag.
type GoalSource string

const (
	SourceBase            GoalSource = "base"
	SourceAdditional      GoalSource = "additional"
	SourceConflictChecker GoalSource = "conflict_checker"
	SourceManual          GoalSource = "manual"
)

// Valid reports whether the source is one of the known values
func (s GoalSource) Valid() bool {
	switch s {
	case SourceBase, SourceAdditional, SourceConflictChecker, SourceManual:
		return true
	}
	return false
}

// Goal represents one piece of information the intake process must collect
// or confirm before the session can advance.
type Goal struct {
	ID                string         `json:"id" validate:"required,max=128"`
	Description       string         `json:"description" validate:"required,max=2000"`
	Priority          GoalPriority   `json:"priority" validate:"required,oneof=critical required important optional"`
	Category          GoalCategory   `json:"category" validate:"required,oneof=identification conflict_resolution legal_context incident_details evidence"`
	Completed         bool           `json:"completed"`
	CompletionData    map[string]any `json:"completion_data,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	AddedAt           time.Time      `json:"added_at"`
	Source            GoalSource     `json:"source" validate:"omitempty,oneof=base additional conflict_checker manual"`
	RelatedConflictID string         `json:"related_conflict_id,omitempty"`

	// MinConfidence, when > 0, is the lowest assessment confidence the
	// reconciler will accept for an automated completion of this goal.
	MinConfidence float64 `json:"min_confidence,omitempty" validate:"gte=0,lte=1"`

	// Blocked marks a goal the tools reported as currently uncollectable.
	// A blocked goal stays incomplete; the reason is informational.
	Blocked     bool   `json:"blocked,omitempty"`
	BlockReason string `json:"block_reason,omitempty"`
}

// Validate checks structural invariants not covered by struct tags
func (g Goal) Validate() error {
	if g.ID == "" {
		return &ValidationError{Field: "id", Reason: "goal id is required"}
	}
	if g.Description == "" {
		return &ValidationError{Field: "description", Reason: "goal description is required"}
	}
	if !g.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", g.Priority)}
	}
	if !g.Category.Valid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", g.Category)}
	}
	if !g.Source.Valid() {
		return &ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", g.Source)}
	}
	if g.MinConfidence < 0 || g.MinConfidence > 1 {
		return &ValidationError{Field: "min_confidence", Reason: "must be within [0,1]"}
	}
	return nil
}

// Clone returns a deep copy of the goal
func (g Goal) Clone() Goal {
	out := g
	if g.CompletionData != nil {
		out.CompletionData = make(map[string]any, len(g.CompletionData))
		for k, v := range g.CompletionData {
			out.CompletionData[k] = v
		}
	}
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
