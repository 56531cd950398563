package handlers

import (
	"context"
	"net/http"

	"github.com/talentlink/matchengine/internal/api/response"
	"github.com/talentlink/matchengine/internal/models"
)

// ResultsReader defines the interface for reading materialized match results.
type ResultsReader interface {
	ForTalent(ctx context.Context, talentUserID int64, minScore float64, limit int) ([]*models.MatchResult, int64, error)
	ForJobPosting(ctx context.Context, jobPostingID int64, minScore float64, limit int) ([]*models.MatchResult, int64, error)
	ForCompany(ctx context.Context, companyUserID int64, minScore float64, limit int) ([]*models.MatchResult, error)
}

// ResultsHandler handles HTTP requests for persisted match results.
type ResultsHandler struct {
	reader ResultsReader
}

// NewResultsHandler creates a new match results handler.
func NewResultsHandler(reader ResultsReader) *ResultsHandler {
	return &ResultsHandler{reader: reader}
}

// matchResultsResponse lists persisted matches. Total is the subject's full
// match count, independent of min_score and limit; the company listing spans
// multiple postings and omits it.
type matchResultsResponse struct {
	Results []*models.MatchResult `json:"results"`
	Total   *int64                `json:"total,omitempty"`
}

func (h *ResultsHandler) respondList(w http.ResponseWriter, results []*models.MatchResult, total *int64, err error) {
	if err != nil {
		respondServiceError(w, err)
		return
	}

	for _, result := range results {
		result.TotalScore = round2(result.TotalScore)
		result.FacetScores = roundFacetScores(result.FacetScores)
	}

	if results == nil {
		results = []*models.MatchResult{}
	}

	response.RespondJSON(w, http.StatusOK, matchResultsResponse{Results: results, Total: total})
}

// ForTalent handles GET /v1/match-results/talents/{user_id}
// @Summary Persisted matches for a talent
// @Tags Match Results
// @Produce json
// @Param user_id path integer true "Talent user ID"
// @Param min_score query number false "Minimum total score (default 0)"
// @Param limit query integer false "Max results (default 100, max 500)"
// @Success 200 {object} matchResultsResponse
// @Security BearerAuth
// @Router /v1/match-results/talents/{user_id} [get]
func (h *ResultsHandler) ForTalent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(r, "user_id")
	if !ok {
		response.RespondBadRequest(w, "Invalid user ID")
		return
	}

	query := r.URL.Query()
	results, total, err := h.reader.ForTalent(r.Context(), userID, queryFloat(query, "min_score", 0), queryInt(query, "limit", 0))
	h.respondList(w, results, &total, err)
}

// ForJobPosting handles GET /v1/match-results/job-postings/{id}
// @Summary Persisted matches for a job posting
// @Tags Match Results
// @Produce json
// @Param id path integer true "Job posting ID"
// @Param min_score query number false "Minimum total score (default 0)"
// @Param limit query integer false "Max results (default 100, max 500)"
// @Success 200 {object} matchResultsResponse
// @Security BearerAuth
// @Router /v1/match-results/job-postings/{id} [get]
func (h *ResultsHandler) ForJobPosting(w http.ResponseWriter, r *http.Request) {
	postingID, ok := pathInt64(r, "id")
	if !ok {
		response.RespondBadRequest(w, "Invalid job posting ID")
		return
	}

	query := r.URL.Query()
	results, total, err := h.reader.ForJobPosting(r.Context(), postingID, queryFloat(query, "min_score", 0), queryInt(query, "limit", 0))
	h.respondList(w, results, &total, err)
}

// ForCompany handles GET /v1/match-results/companies/{user_id}
// @Summary Persisted matches across all postings of a company
// @Tags Match Results
// @Produce json
// @Param user_id path integer true "Company user ID"
// @Param min_score query number false "Minimum total score (default 0)"
// @Param limit query integer false "Max results (default 100, max 500)"
// @Success 200 {object} matchResultsResponse
// @Security BearerAuth
// @Router /v1/match-results/companies/{user_id} [get]
func (h *ResultsHandler) ForCompany(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(r, "user_id")
	if !ok {
		response.RespondBadRequest(w, "Invalid user ID")
		return
	}

	query := r.URL.Query()
	results, err := h.reader.ForCompany(r.Context(), userID, queryFloat(query, "min_score", 0), queryInt(query, "limit", 0))
	h.respondList(w, results, nil, err)
}
