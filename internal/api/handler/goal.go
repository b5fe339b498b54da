package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lexara-com/engage-sub006/internal/api/middleware"
	"github.com/lexara-com/engage-sub006/internal/api/response"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/lexara-com/engage-sub006/internal/service"
	"github.com/rs/zerolog/log"
)

// GoalHandler serves the tool-caller routes that feed the reconciler
type GoalHandler struct {
	sessions *service.SessionService
}

func NewGoalHandler(sessions *service.SessionService) *GoalHandler {
	return &GoalHandler{sessions: sessions}
}

type addGoalsRequest struct {
	Goals []domain.Goal `json:"goals" validate:"required,min=1,dive"`
}

// AddGoals appends goals proposed by the supporting-documents tool
func (h *GoalHandler) AddGoals(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	var req addGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	session, outcome, err := h.sessions.AddGoals(r.Context(), firmID, sessionID, req.Goals)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if tool, ok := middleware.GetToolName(r.Context()); ok {
		log.Info().
			Str("tool", tool).
			Str("session_id", sessionID.String()).
			Int("added", len(outcome.Added)).
			Msg("tool added goals")
	}

	response.OK(w, map[string]any{
		"session": session,
		"added":   outcome.Added,
	})
}

// ApplyAssessment applies a goal-tracker assessment result
func (h *GoalHandler) ApplyAssessment(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	var assessment domain.GoalAssessmentResult
	if err := json.NewDecoder(r.Body).Decode(&assessment); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(assessment); err != nil {
		writeValidationErrors(w, err)
		return
	}

	session, outcome, err := h.sessions.ApplyAssessment(r.Context(), firmID, sessionID, assessment)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Low-confidence rejections are partial failures: the rest of the
	// batch committed, so the response is 200 with the rejections listed.
	response.OK(w, map[string]any{
		"session":    session,
		"completed":  outcome.Completed,
		"added":      outcome.Added,
		"blocked":    outcome.Blocked,
		"rejections": outcome.Rejections,
	})
}
