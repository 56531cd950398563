package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/talentlink/matchengine/internal/api/response"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/service"
)

// EmbeddingSyncer defines the interface for applying and clearing facet embeddings.
type EmbeddingSyncer interface {
	UpsertFacets(ctx context.Context, kind models.EntityKind, entityID, ownerUserID int64, raw map[string]any) service.SyncResult
	ClearFacets(ctx context.Context, kind models.EntityKind, entityID int64) service.SyncResult
}

// EmbeddingsHandler handles HTTP requests for facet embedding writes.
type EmbeddingsHandler struct {
	syncer EmbeddingSyncer
}

// NewEmbeddingsHandler creates a new embeddings handler.
func NewEmbeddingsHandler(syncer EmbeddingSyncer) *EmbeddingsHandler {
	return &EmbeddingsHandler{syncer: syncer}
}

// upsertEmbeddingsRequest carries facet payloads for one entity. Facets maps
// facet name to a vector, an object with raw text, or null to clear that facet.
type upsertEmbeddingsRequest struct {
	OwnerUserID int64          `json:"owner_user_id,omitempty"`
	Facets      map[string]any `json:"facets"`
}

// Upsert handles PUT /v1/embeddings/{kind}/{id}
// @Summary Upsert facet embeddings for an entity
// @Description Validates and stores facet vectors for a talent profile or job posting. Unchanged facets are skipped; any change triggers the rematch sweep.
// @Tags Embeddings
// @Accept json
// @Produce json
// @Param kind path string true "Entity kind (talent or job)"
// @Param id path integer true "Entity ID"
// @Success 200 {object} service.SyncResult
// @Failure 422 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/embeddings/{kind}/{id} [put]
func (h *EmbeddingsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := pathEntity(r)
	if !ok {
		response.RespondBadRequest(w, "Invalid entity kind or ID")
		return
	}

	var req upsertEmbeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	result := h.syncer.UpsertFacets(r.Context(), kind, id, req.OwnerUserID, req.Facets)
	if result.Status == service.SyncError {
		response.RespondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/embeddings/{kind}/{id}
// @Summary Clear all facet embeddings for an entity
// @Tags Embeddings
// @Produce json
// @Param kind path string true "Entity kind (talent or job)"
// @Param id path integer true "Entity ID"
// @Success 200 {object} service.SyncResult
// @Security BearerAuth
// @Router /v1/embeddings/{kind}/{id} [delete]
func (h *EmbeddingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := pathEntity(r)
	if !ok {
		response.RespondBadRequest(w, "Invalid entity kind or ID")
		return
	}

	result := h.syncer.ClearFacets(r.Context(), kind, id)
	if result.Status == service.SyncError {
		response.RespondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
