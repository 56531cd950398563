package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/talentlink/matchengine/internal/api/response"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/scoring"
	"github.com/talentlink/matchengine/internal/service"
)

// PairScorer defines the interface for the tolerant weighted pair comparison.
type PairScorer interface {
	ScorePair(ctx context.Context, kindA models.EntityKind, idA int64, kindB models.EntityKind, idB int64, weights map[models.Facet]float64) (scoring.PairScore, error)
}

// ExactMatcher defines the interface for the strict all-facets pair comparison.
type ExactMatcher interface {
	Match(ctx context.Context, sourceID, targetID int64) (*service.ExactMatchResult, error)
}

// PairHandler handles HTTP requests comparing exactly two entities.
type PairHandler struct {
	scorer  PairScorer
	matcher ExactMatcher
}

// NewPairHandler creates a new pair handler.
func NewPairHandler(scorer PairScorer, matcher ExactMatcher) *PairHandler {
	return &PairHandler{scorer: scorer, matcher: matcher}
}

type scorePairRequest struct {
	KindA   string                   `json:"kind_a"`
	IDA     int64                    `json:"id_a"`
	KindB   string                   `json:"kind_b"`
	IDB     int64                    `json:"id_b"`
	Weights map[models.Facet]float64 `json:"weights,omitempty"`
}

type scorePairResponse struct {
	TotalScore  float64                  `json:"total_score"`
	FacetScores map[models.Facet]float64 `json:"facet_scores"`
}

// Score handles POST /v1/matches/pair
// @Summary Score two entities against each other
// @Description Weighted comparison over the facets both entities have. Missing facets are excluded and the remaining weights renormalized.
// @Tags Matches
// @Accept json
// @Produce json
// @Success 200 {object} scorePairResponse
// @Failure 404 {object} response.ProblemDetails
// @Failure 503 {object} response.ProblemDetails "Matching disabled"
// @Security BearerAuth
// @Router /v1/matches/pair [post]
func (h *PairHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scorePairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	kindA, okA := models.ParseEntityKind(req.KindA)
	kindB, okB := models.ParseEntityKind(req.KindB)

	if !okA || !okB || req.IDA <= 0 || req.IDB <= 0 {
		response.RespondBadRequest(w, "Invalid entity kind or ID")
		return
	}

	score, err := h.scorer.ScorePair(r.Context(), kindA, req.IDA, kindB, req.IDB, req.Weights)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, scorePairResponse{
		TotalScore:  round2(score.Overall),
		FacetScores: roundFacetScores(score.Facets),
	})
}

type exactMatchRequest struct {
	SourceVectorID int64 `json:"source_vector_id"`
	TargetVectorID int64 `json:"target_vector_id"`
}

// Exact handles POST /v1/matches/exact
// @Summary Strict pairwise match between two stored vector rows
// @Description Requires opposite roles and all six facets on both sides. Returns per-facet scores and the unweighted mean, all on the 0-100 scale.
// @Tags Matches
// @Accept json
// @Produce json
// @Success 200 {object} service.ExactMatchResult
// @Failure 404 {object} response.ProblemDetails
// @Failure 422 {object} response.ProblemDetails "Same-role pair, incomplete facets, or corrupted vectors"
// @Security BearerAuth
// @Router /v1/matches/exact [post]
func (h *PairHandler) Exact(w http.ResponseWriter, r *http.Request) {
	var req exactMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	if req.SourceVectorID <= 0 || req.TargetVectorID <= 0 {
		response.RespondBadRequest(w, "source_vector_id and target_vector_id are required")
		return
	}

	result, err := h.matcher.Match(r.Context(), req.SourceVectorID, req.TargetVectorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result.TotalScore = round2(result.TotalScore)
	result.FacetScores = roundFacetScores(result.FacetScores)

	response.RespondJSON(w, http.StatusOK, result)
}
