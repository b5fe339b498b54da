package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/api/middleware"
	"github.com/lexara-com/engage-sub006/internal/api/response"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/lexara-com/engage-sub006/internal/service"
)

// ConflictHandler serves conflict-check routes and the firm party index
type ConflictHandler struct {
	conflicts *service.ConflictService
}

func NewConflictHandler(conflicts *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts}
}

// RunCheck evaluates the session's identity against the firm party index
func (h *ConflictHandler) RunCheck(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	session, err := h.conflicts.RunCheck(r.Context(), firmID, sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, session)
}

// PushResult installs a result supplied by the external conflict-checker
// tool.
func (h *ConflictHandler) PushResult(w http.ResponseWriter, r *http.Request) {
	firmID, sessionID, ok := firmAndSession(w, r)
	if !ok {
		return
	}

	var result domain.ConflictResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	session, err := h.conflicts.ApplyResult(r.Context(), firmID, sessionID, result)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.OK(w, session)
}

type createPartyRequest struct {
	Name      string           `json:"name" validate:"required,max=255"`
	Email     string           `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string           `json:"phone,omitempty" validate:"max=32"`
	Aliases   []string         `json:"aliases,omitempty" validate:"dive,max=255"`
	Role      domain.PartyRole `json:"role" validate:"required,oneof=client opposing"`
	MatterRef string           `json:"matter_ref,omitempty" validate:"max=255"`
}

// CreateParty registers a party in the firm's conflict index
func (h *ConflictHandler) CreateParty(w http.ResponseWriter, r *http.Request) {
	firmID, ok := middleware.GetFirmID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing firm ID")
		return
	}

	var req createPartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	party := &domain.Party{
		FirmID:    firmID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Aliases:   req.Aliases,
		Role:      req.Role,
		MatterRef: req.MatterRef,
	}
	if err := h.conflicts.AddParty(r.Context(), party); err != nil {
		response.InternalError(w, "failed to create party")
		return
	}
	response.Created(w, party)
}

// ListParties returns the firm's conflict index
func (h *ConflictHandler) ListParties(w http.ResponseWriter, r *http.Request) {
	firmID, ok := middleware.GetFirmID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing firm ID")
		return
	}

	parties, err := h.conflicts.ListParties(r.Context(), firmID)
	if err != nil {
		response.InternalError(w, "failed to list parties")
		return
	}
	response.OK(w, parties)
}

// DeleteParty removes an entry from the firm's conflict index
func (h *ConflictHandler) DeleteParty(w http.ResponseWriter, r *http.Request) {
	firmID, ok := middleware.GetFirmID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing firm ID")
		return
	}
	partyID, err := uuid.Parse(chi.URLParam(r, "partyID"))
	if err != nil {
		response.BadRequest(w, "invalid party ID")
		return
	}

	if err := h.conflicts.RemoveParty(r.Context(), firmID, partyID); err != nil {
		response.InternalError(w, "failed to delete party")
		return
	}
	response.OK(w, map[string]string{"message": "party deleted"})
}
