package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lexara-com/engage-sub006/internal/api/response"
	"github.com/lexara-com/engage-sub006/internal/domain"
)

var validate = validator.New()

// writeDomainError maps domain errors onto HTTP statuses. Retryable
// failures (persistence, conflict index unavailable) come back 503 so
// callers know a replay is safe.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var lc *domain.LowConfidenceRejection
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		response.NotFound(w, "session not found")
	case errors.Is(err, domain.ErrSessionTerminated):
		response.Conflict(w, "session is terminated")
	case errors.Is(err, domain.ErrSessionDeleted):
		response.Conflict(w, "session is deleted")
	case errors.Is(err, domain.ErrAuth0UserNotAllowed):
		response.Forbidden(w, "user is not allowed to resume this session")
	case errors.As(err, &ve):
		response.BadRequest(w, ve.Error())
	case errors.As(err, &lc):
		// The request was well-formed but the change itself is refused;
		// 422 distinguishes that from a malformed payload.
		response.UnprocessableEntity(w, lc.Error())
	case domain.Retryable(err):
		response.ServiceUnavailable(w, err.Error())
	default:
		response.InternalError(w, "internal error")
	}
}

// writeValidationErrors renders go-playground validation failures
func writeValidationErrors(w http.ResponseWriter, err error) {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Namespace()+" failed "+f.Tag())
		}
		response.BadRequest(w, msgs)
		return
	}
	response.BadRequest(w, err.Error())
}
