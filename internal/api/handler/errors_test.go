package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexara-com/engage-sub006/internal/domain"
)

func TestWriteDomainError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "session not found",
			err:        domain.ErrSessionNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "terminated session",
			err:        domain.ErrSessionTerminated,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "deleted session",
			err:        domain.ErrSessionDeleted,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "user outside allowlist",
			err:        domain.ErrAuth0UserNotAllowed,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "malformed input",
			err:        &domain.ValidationError{Field: "goal_id", Reason: "missing"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "low confidence completion",
			err:        &domain.LowConfidenceRejection{GoalID: "client_name", Confidence: 0.4, Minimum: 0.8},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "conflict index down",
			err:        domain.ErrConflictCheckUnavailable,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "failed save",
			err:        &domain.PersistenceError{Op: "save", Err: errors.New("connection reset")},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}
