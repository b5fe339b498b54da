package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConflictStatus tracks the conflict check state machine:
// pending -> clear, or pending -> conflict_detected. The terminal states are
// never mutated in place; a re-check starts a fresh ConflictCheck record.
type ConflictStatus string

const (
	ConflictPending  ConflictStatus = "pending"
	ConflictClear    ConflictStatus = "clear"
	ConflictDetected ConflictStatus = "conflict_detected"
)

// Valid reports whether the status is one of the known values
func (s ConflictStatus) Valid() bool {
	return s == ConflictPending || s == ConflictClear || s == ConflictDetected
}

// Resolved reports whether the check has reached a terminal state
func (s ConflictStatus) Resolved() bool {
	return s == ConflictClear || s == ConflictDetected
}

// MatchType classifies how an identifier matched an indexed party
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchFuzzy    MatchType = "fuzzy"
	MatchPhonetic MatchType = "phonetic"
	MatchAlias    MatchType = "alias"
)

// ConflictMatch is one ranked hit against the firm's party index
type ConflictMatch struct {
	ConflictID    string    `json:"conflict_id"`
	MatchedEntity string    `json:"matched_entity"`
	Identifier    string    `json:"identifier"`
	MatchType     MatchType `json:"match_type"`
	Confidence    float64   `json:"confidence"`
}

// ConflictResult is the outcome of evaluating a set of identifiers against
// the firm's existing-client/opposing-party index.
type ConflictResult struct {
	Status          ConflictStatus  `json:"status"`
	Matches         []ConflictMatch `json:"matches"`
	RequiresReview  bool            `json:"requires_review"`
	CheckedIdentity []string        `json:"checked_identity"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// ConflictCheck is the session's record of its most recent conflict check
type ConflictCheck struct {
	Status          ConflictStatus  `json:"status"`
	CheckedAt       *time.Time      `json:"checked_at,omitempty"`
	ConflictDetails string          `json:"conflict_details,omitempty"`
	CheckedIdentity []string        `json:"checked_identity,omitempty"`
	Matches         []ConflictMatch `json:"matches,omitempty"`
	RequiresReview  bool            `json:"requires_review,omitempty"`
}

// Clone returns a deep copy of the check record
func (c ConflictCheck) Clone() ConflictCheck {
	out := c
	if c.CheckedAt != nil {
		t := *c.CheckedAt
		out.CheckedAt = &t
	}
	if c.CheckedIdentity != nil {
		out.CheckedIdentity = append([]string(nil), c.CheckedIdentity...)
	}
	if c.Matches != nil {
		out.Matches = append([]ConflictMatch(nil), c.Matches...)
	}
	return out
}

// PartyRole distinguishes existing clients from opposing parties in the
// firm's conflict index.
type PartyRole string

const (
	PartyClient   PartyRole = "client"
	PartyOpposing PartyRole = "opposing"
)

// Party is one entry in a firm's conflict-screening index
type Party struct {
	ID        uuid.UUID `json:"id"`
	FirmID    uuid.UUID `json:"firm_id"`
	Name      string    `json:"name" validate:"required,max=255"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string    `json:"phone,omitempty" validate:"max=32"`
	Aliases   []string  `json:"aliases,omitempty"`
	Role      PartyRole `json:"role" validate:"required,oneof=client opposing"`
	MatterRef string    `json:"matter_ref,omitempty" validate:"max=255"`
	CreatedAt time.Time `json:"created_at"`
}

// PartyRepository defines storage for the firm party index
type PartyRepository interface {
	Create(ctx context.Context, party *Party) error
	ListByFirm(ctx context.Context, firmID uuid.UUID) ([]Party, error)
	Delete(ctx context.Context, firmID, partyID uuid.UUID) error
}
