package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/talentlink/matchengine/internal/api/response"
	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/service"
)

// respondServiceError maps service and domain errors to HTTP responses.
// Missing rows are 404, semantically invalid requests are 422, a disabled
// matching feature is 503, and everything else is an opaque 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMatchingDisabled):
		response.RespondServiceUnavailable(w, "matching is disabled")
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondNotFound(w, err.Error())
	case errors.Is(err, apperrors.ErrRoleMismatch),
		errors.Is(err, apperrors.ErrIncompleteVector),
		errors.Is(err, apperrors.ErrDimensionMismatch),
		errors.Is(err, apperrors.ErrValidation):
		response.RespondUnprocessableEntity(w, err.Error())
	default:
		slog.Error("request failed", "error", err)
		response.RespondInternalServerError(w, "An unexpected error occurred")
	}
}
