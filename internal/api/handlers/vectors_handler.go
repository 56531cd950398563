package handlers

import (
	"context"
	"net/http"

	"github.com/talentlink/matchengine/internal/api/response"
)

// VectorRemover defines the interface for removing a vector row and its results.
type VectorRemover interface {
	RemoveVector(ctx context.Context, vectorID int64) error
}

// VectorsHandler handles HTTP requests addressing vector rows by primary key.
type VectorsHandler struct {
	remover VectorRemover
}

// NewVectorsHandler creates a new vectors handler.
func NewVectorsHandler(remover VectorRemover) *VectorsHandler {
	return &VectorsHandler{remover: remover}
}

// Delete handles DELETE /v1/vectors/{id}
// @Summary Delete a vector row and its materialized matches
// @Tags Vectors
// @Param id path integer true "Vector row ID"
// @Success 204 "Deleted"
// @Failure 404 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/vectors/{id} [delete]
func (h *VectorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		response.RespondBadRequest(w, "Invalid vector ID")
		return
	}

	if err := h.remover.RemoveVector(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
