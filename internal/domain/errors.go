package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced across layer boundaries
var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrConflictCheckUnavailable means the identifier-matching collaborator
	// could not be reached. The conflict status must remain pending; the
	// caller may retry.
	ErrConflictCheckUnavailable = errors.New("conflict check unavailable")

	// ErrSessionTerminated rejects mutations of a terminated session
	ErrSessionTerminated = errors.New("session is terminated")

	// ErrSessionDeleted rejects mutations of a soft-deleted session
	ErrSessionDeleted = errors.New("session is deleted")

	// ErrAuth0UserNotAllowed rejects a resume attempt by a user outside the
	// session's allowlist.
	ErrAuth0UserNotAllowed = errors.New("auth0 user not allowed to resume session")
)

// ValidationError reports malformed goal or session input. The offending
// event is rejected and never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// LowConfidenceRejection reports a goal completion whose confidence fell
// below the goal's minimum. Only the single change is rejected; the rest of
// the batch still applies.
type LowConfidenceRejection struct {
	GoalID     string  `json:"goal_id"`
	Confidence float64 `json:"confidence"`
	Minimum    float64 `json:"minimum"`
}

func (e *LowConfidenceRejection) Error() string {
	return fmt.Sprintf("completion of goal %s rejected: confidence %.2f below minimum %.2f",
		e.GoalID, e.Confidence, e.Minimum)
}

// PersistenceError wraps a failed save. In-memory changes are discarded and
// the caller may retry; the reconciler's idempotent merge makes replays safe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error is transient and safe to retry
func Retryable(err error) bool {
	var pe *PersistenceError
	return errors.Is(err, ErrConflictCheckUnavailable) || errors.As(err, &pe)
}
