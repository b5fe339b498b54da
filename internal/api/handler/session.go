package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/api/middleware"
	"github.com/lexara-com/engage-sub006/internal/api/response"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/lexara-com/engage-sub006/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
	maxLimit int
}

func NewSessionHandler(sessions *service.SessionService, maxLimit int) *SessionHandler {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &SessionHandler{sessions: sessions, maxLimit: maxLimit}
}

func firmAndSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	firmID, ok := middleware.GetFirmID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing firm ID")
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return firmID, sessionID, true
}

type messagePayload struct {
	Role     domain.MessageRole `json:"role" validate:"required,oneof=user agent"`
	Content  string             `json:"content" validate:"required,max=20000"`
	Metadata map[string]any     `json:"metadata,omitempty"`
}

type createSessionRequest struct {
	Message  *messagePayload      `json:"message,omitempty"`
	Identity *domain.UserIdentity `json:"identity,omitempty"`
}

// Create starts a new intake session for the firm
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	firmID, ok := middleware.GetFirmID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing firm ID")
		return
	}

	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeValidationErrors(w, err)
			return
		}
	}

	var msg *domain.Message
	if req.Message != nil {
		msg = &domain.Message{
			Role:     req.Message.Role,
			Content:  req.Message.Content,
			Metadata: req.Message.Metadata,
		}
	}

	session, err := h.sessions.CreateSession(r.Context(), firmID, msg, req.Identity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Created(w, session)
}

// List returns the firm's sessions, newest activity first
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	firmID, ok := middleware.GetFirmID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing firm ID")
		return
	}

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	sessions, err := h.sessions.ListSessions(r.Context(), firmID, includeDeleted, limit, offset)
	if err != nil {
		response.InternalError(w, "failed to list sessions")
		return
	}
	response.OK(w, sessions)
}

// Get returns the session's current state
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}
	session, err := h.sessions.GetSession(r.Context(), firmID, sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, session)
}

// GetTranscript returns the session's message transcript
func (h *SessionHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}
	messages, err := h.sessions.GetTranscript(r.Context(), firmID, sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, messages)
}

type postMessageRequest struct {
	messagePayload
	Identity *domain.UserIdentity `json:"identity,omitempty"`
}

// PostMessage appends a message to the transcript
func (h *SessionHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	msg := domain.Message{
		Role:     req.Role,
		Content:  req.Content,
		Metadata: req.Metadata,
	}
	session, err := h.sessions.ApplyMessage(r.Context(), firmID, sessionID, msg, req.Identity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, session)
}

type markAuthenticatedRequest struct {
	Auth0UserID string `json:"auth0_user_id" validate:"required,max=255"`
}

// MarkAuthenticated records the auth collaborator's confirmation
func (h *SessionHandler) MarkAuthenticated(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	var req markAuthenticatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	session, err := h.sessions.MarkAuthenticated(r.Context(), firmID, sessionID, req.Auth0UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, session)
}

type overrideGoalRequest struct {
	Completed      *bool          `json:"completed" validate:"required"`
	CompletionData map[string]any `json:"completion_data,omitempty"`
	OverriddenBy   string         `json:"overridden_by" validate:"required,max=255"`
}

// OverrideGoal is the manual reviewer path for completing or reopening a
// goal.
func (h *SessionHandler) OverrideGoal(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}
	goalID := chi.URLParam(r, "goalID")
	if goalID == "" {
		response.BadRequest(w, "missing goal ID")
		return
	}

	var req overrideGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	session, err := h.sessions.OverrideGoal(r.Context(), firmID, sessionID, goalID, *req.Completed, req.CompletionData, req.OverriddenBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, session)
}

type terminateRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

// Terminate ends the conversation
func (h *SessionHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	var req terminateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
	}

	session, err := h.sessions.Terminate(r.Context(), firmID, sessionID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, session)
}

// Delete soft-deletes the session; the transcript is retained
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	deletedBy := "unknown"
	if email, ok := middleware.GetUserEmail(r.Context()); ok {
		deletedBy = email
	}

	if _, err := h.sessions.SoftDelete(r.Context(), firmID, sessionID, deletedBy); err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "session deleted"})
}

// ExpireIdle terminates sessions idle beyond the configured timeout
func (h *SessionHandler) ExpireIdle(w http.ResponseWriter, r *http.Request) {
	firmID, ok := middleware.GetFirmID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing firm ID")
		return
	}

	expired, err := h.sessions.ExpireIdle(r.Context(), firmID)
	if err != nil {
		response.InternalError(w, "failed to expire sessions")
		return
	}
	response.OK(w, map[string]int{"expired": expired})
}
