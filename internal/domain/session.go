package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Phase is the conversation's position in the intake state machine
type Phase string

const (
	PhasePreLogin              Phase = "pre_login"
	PhaseLoginSuggested        Phase = "login_suggested"
	PhaseSecured               Phase = "secured"
	PhaseConflictCheckComplete Phase = "conflict_check_complete"
	PhaseDataGathering         Phase = "data_gathering"
	PhaseCompleted             Phase = "completed"
	PhaseTerminated            Phase = "terminated"
)

var phaseOrder = map[Phase]int{
	PhasePreLogin:              0,
	PhaseLoginSuggested:        1,
	PhaseSecured:               2,
	PhaseConflictCheckComplete: 3,
	PhaseDataGathering:         4,
	PhaseCompleted:             5,
}

// Order returns the phase's position in the forward progression, or -1 for
// terminated (which sits outside the ordering).
func (p Phase) Order() int {
	if n, ok := phaseOrder[p]; ok {
		return n
	}
	return -1
}

// Terminal reports whether no further phase transitions are possible
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseTerminated
}

// Valid reports whether the phase is one of the known values
func (p Phase) Valid() bool {
	return p == PhaseTerminated || p.Order() >= 0
}

// MessageRole identifies the sender of a transcript message
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleAgent MessageRole = "agent"
)

// Valid reports whether the role is one of the known values
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAgent
}

// Message is one entry in a session's append-only transcript
type Message struct {
	Role      MessageRole    `json:"role" validate:"required,oneof=user agent"`
	Content   string         `json:"content" validate:"required,max=20000"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UserIdentity holds the incrementally-gathered identity of the prospective
// client. Fields fill in as the conversation progresses and are never
// forcibly cleared.
type UserIdentity struct {
	Name      string `json:"name,omitempty" validate:"max=255"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"max=32"`
	LegalArea string `json:"legal_area,omitempty" validate:"max=255"`
	Situation string `json:"situation,omitempty" validate:"max=10000"`
}

// Merge fills empty fields from other without overwriting populated ones
func (u *UserIdentity) Merge(other UserIdentity) {
	if u.Name == "" {
		u.Name = other.Name
	}
	if u.Email == "" {
		u.Email = other.Email
	}
	if u.Phone == "" {
		u.Phone = other.Phone
	}
	if u.LegalArea == "" {
		u.LegalArea = other.LegalArea
	}
	if u.Situation == "" {
		u.Situation = other.Situation
	}
}

// HasContact reports whether at least one contact method is known
func (u UserIdentity) HasContact() bool {
	return u.Email != "" || u.Phone != ""
}

// Identifiers returns the non-empty identity strings used for conflict
// screening.
func (u UserIdentity) Identifiers() []string {
	var ids []string
	for _, v := range []string{u.Name, u.Email, u.Phone} {
		if v != "" {
			ids = append(ids, v)
		}
	}
	return ids
}

// Session is the aggregate root for one client intake conversation,
// exclusively owned by a single firm.
type Session struct {
	SessionID uuid.UUID  `json:"session_id"`
	FirmID    uuid.UUID  `json:"firm_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`

	IsAuthenticated bool   `json:"is_authenticated"`
	Auth0UserID     string `json:"auth0_user_id,omitempty"`
	IsSecured       bool   `json:"is_secured"`

	Phase         Phase         `json:"phase"`
	UserIdentity  UserIdentity  `json:"user_identity"`
	ConflictCheck ConflictCheck `json:"conflict_check"`

	// DataGoals is insertion-ordered; earlier goals surface first in the
	// goal list presented to the agent.
	DataGoals []Goal    `json:"data_goals"`
	Messages  []Message `json:"messages"`

	AllowedAuth0Users []string `json:"allowed_auth0_users,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeletedBy    string     `json:"deleted_by,omitempty"`

	TerminationReason string `json:"termination_reason,omitempty"`
}

// CompletedGoalIDs returns the set of completed goal IDs, derived from
// DataGoals on demand rather than stored redundantly.
func (s *Session) CompletedGoalIDs() map[string]bool {
	out := make(map[string]bool)
	for _, g := range s.DataGoals {
		if g.Completed {
			out[g.ID] = true
		}
	}
	return out
}

// Goal returns the goal with the given ID, if present
func (s *Session) Goal(id string) (*Goal, bool) {
	for i := range s.DataGoals {
		if s.DataGoals[i].ID == id {
			return &s.DataGoals[i], true
		}
	}
	return nil, false
}

// UnresolvedConflictGoals reports whether any critical conflict-resolution
// goal remains incomplete. Such goals gate advancement past the conflict
// check.
func (s *Session) UnresolvedConflictGoals() bool {
	for _, g := range s.DataGoals {
		if g.Category == CategoryConflictResolution && g.Priority == PriorityCritical && !g.Completed {
			return true
		}
	}
	return false
}

// BlockingGoalsOutstanding reports whether any critical or required goal
// remains incomplete.
func (s *Session) BlockingGoalsOutstanding() bool {
	for _, g := range s.DataGoals {
		if g.Priority.Blocking() && !g.Completed {
			return true
		}
	}
	return false
}

// Auth0UserAllowed reports whether the given Auth0 subject may resume this
// session. An empty allowlist permits the first authenticated user.
func (s *Session) Auth0UserAllowed(auth0UserID string) bool {
	if len(s.AllowedAuth0Users) == 0 {
		return true
	}
	for _, id := range s.AllowedAuth0Users {
		if id == auth0UserID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the session. Mutations are applied to a
// clone and committed only after a successful persistence write.
func (s *Session) Clone() *Session {
	out := *s
	if s.UserID != nil {
		id := *s.UserID
		out.UserID = &id
	}
	out.ConflictCheck = s.ConflictCheck.Clone()
	out.DataGoals = make([]Goal, len(s.DataGoals))
	for i, g := range s.DataGoals {
		out.DataGoals[i] = g.Clone()
	}
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m
		if m.Metadata != nil {
			meta := make(map[string]any, len(m.Metadata))
			for k, v := range m.Metadata {
				meta[k] = v
			}
			out.Messages[i].Metadata = meta
		}
	}
	if s.AllowedAuth0Users != nil {
		out.AllowedAuth0Users = append([]string(nil), s.AllowedAuth0Users...)
	}
	if s.DeletedAt != nil {
		t := *s.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

// SessionRepository defines the persistence contract for intake sessions
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, firmID, sessionID uuid.UUID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	ListByFirm(ctx context.Context, firmID uuid.UUID, includeDeleted bool, limit, offset int) ([]Session, error)
}
