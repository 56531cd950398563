package handlers

import (
	"context"
	"net/http"

	"github.com/talentlink/matchengine/internal/api/response"
	"github.com/talentlink/matchengine/internal/matching"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/scoring"
)

const (
	defaultTopK      = 10
	maxTopK          = 100
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// MatchRanker defines the interface for ranking opposite-kind candidates.
type MatchRanker interface {
	TopK(ctx context.Context, kind models.EntityKind, referenceID int64, weights map[models.Facet]float64, k int) ([]matching.Row, scoring.WeightMap, error)
	Page(ctx context.Context, kind models.EntityKind, referenceID int64, weights map[models.Facet]float64, limit, offset int) ([]matching.Row, int, scoring.WeightMap, error)
}

// MatchHandler handles HTTP requests for candidate ranking.
type MatchHandler struct {
	ranker MatchRanker
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(ranker MatchRanker) *MatchHandler {
	return &MatchHandler{ranker: ranker}
}

// matchEntry is one ranked candidate in a response payload.
type matchEntry struct {
	EntityID    int64                    `json:"entity_id"`
	Rank        int                      `json:"rank"`
	TotalScore  float64                  `json:"total_score"`
	FacetScores map[models.Facet]float64 `json:"facet_scores"`
}

// topMatchesResponse is the payload for the top-K ranking endpoint.
type topMatchesResponse struct {
	Kind    models.EntityKind        `json:"kind"`
	ID      int64                    `json:"id"`
	Weights map[models.Facet]float64 `json:"weights"`
	Results []matchEntry             `json:"results"`
}

// pagedMatchesResponse is the payload for the paginated ranking endpoint.
type pagedMatchesResponse struct {
	Kind    models.EntityKind        `json:"kind"`
	ID      int64                    `json:"id"`
	Weights map[models.Facet]float64 `json:"weights"`
	Total   int                      `json:"total"`
	Limit   int                      `json:"limit"`
	Offset  int                      `json:"offset"`
	Results []matchEntry             `json:"results"`
}

func matchEntries(rows []matching.Row, firstRank int) []matchEntry {
	entries := make([]matchEntry, len(rows))
	for i, row := range rows {
		entries[i] = matchEntry{
			EntityID:    row.ID,
			Rank:        firstRank + i,
			TotalScore:  round2(row.Overall),
			FacetScores: roundFacetScores(row.Facets),
		}
	}

	return entries
}

func roundWeights(weights scoring.WeightMap) map[models.Facet]float64 {
	echoed := make(map[models.Facet]float64, len(weights))
	for facet, weight := range weights {
		echoed[facet] = weight
	}

	return echoed
}

// Top handles GET /v1/matches/{kind}/{id}/top
// @Summary Top-K matches for an entity
// @Description Ranks all opposite-kind candidates against the entity and returns the best k, ordered by score descending with ID as tiebreaker.
// @Tags Matches
// @Produce json
// @Param kind path string true "Entity kind (talent or job)"
// @Param id path integer true "Entity ID"
// @Param k query integer false "Number of results (default 10, max 100)"
// @Param weights.roles query number false "Weight override for the roles facet (same for the other five facets)"
// @Success 200 {object} topMatchesResponse
// @Failure 404 {object} response.ProblemDetails "No embedding data stored for the entity"
// @Failure 503 {object} response.ProblemDetails "Matching disabled"
// @Security BearerAuth
// @Router /v1/matches/{kind}/{id}/top [get]
func (h *MatchHandler) Top(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := pathEntity(r)
	if !ok {
		response.RespondBadRequest(w, "Invalid entity kind or ID")
		return
	}

	query := r.URL.Query()

	k := queryInt(query, "k", defaultTopK)
	if k < 1 {
		k = defaultTopK
	}

	if k > maxTopK {
		k = maxTopK
	}

	rows, weights, err := h.ranker.TopK(r.Context(), kind, id, queryWeights(query), k)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, topMatchesResponse{
		Kind:    kind,
		ID:      id,
		Weights: roundWeights(weights),
		Results: matchEntries(rows, 1),
	})
}

// List handles GET /v1/matches/{kind}/{id}
// @Summary Paginated matches for an entity
// @Description Ranks all opposite-kind candidates against the entity and returns the page [offset, offset+limit) of the full ordering.
// @Tags Matches
// @Produce json
// @Param kind path string true "Entity kind (talent or job)"
// @Param id path integer true "Entity ID"
// @Param limit query integer false "Page size (default 20, max 100)"
// @Param offset query integer false "Number of candidates to skip"
// @Param weights.roles query number false "Weight override for the roles facet (same for the other five facets)"
// @Success 200 {object} pagedMatchesResponse
// @Failure 404 {object} response.ProblemDetails "No embedding data stored for the entity"
// @Failure 503 {object} response.ProblemDetails "Matching disabled"
// @Security BearerAuth
// @Router /v1/matches/{kind}/{id} [get]
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := pathEntity(r)
	if !ok {
		response.RespondBadRequest(w, "Invalid entity kind or ID")
		return
	}

	query := r.URL.Query()

	limit := queryInt(query, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}

	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset := queryInt(query, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	rows, total, weights, err := h.ranker.Page(r.Context(), kind, id, queryWeights(query), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, pagedMatchesResponse{
		Kind:    kind,
		ID:      id,
		Weights: roundWeights(weights),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Results: matchEntries(rows, offset+1),
	})
}
