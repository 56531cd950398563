package service

import (
	"context"

	"github.com/talentlink/matchengine/internal/models"
)

// MatchResultsService serves read-side queries over the materialized
// match_results table.
type MatchResultsService struct {
	results ResultsRepository
}

// NewMatchResultsService creates a match results service.
func NewMatchResultsService(results ResultsRepository) *MatchResultsService {
	return &MatchResultsService{results: results}
}

func clampResultLimit(limit int) int {
	if limit <= 0 {
		return 100
	}

	if limit > 500 {
		return 500
	}

	return limit
}

// ForTalent returns a talent's persisted matches above minScore, best first,
// plus the talent's total match count (unfiltered by minScore).
func (s *MatchResultsService) ForTalent(ctx context.Context, talentUserID int64, minScore float64, limit int) ([]*models.MatchResult, int64, error) {
	results, err := s.results.ListForTalent(ctx, talentUserID, minScore, clampResultLimit(limit))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.results.CountForTalent(ctx, talentUserID)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// ForJobPosting returns a posting's persisted matches above minScore, best
// first, plus the posting's total match count.
func (s *MatchResultsService) ForJobPosting(ctx context.Context, jobPostingID int64, minScore float64, limit int) ([]*models.MatchResult, int64, error) {
	results, err := s.results.ListForJobPosting(ctx, jobPostingID, minScore, clampResultLimit(limit))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.results.CountForJobPosting(ctx, jobPostingID)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// ForCompany returns the persisted matches across all of a company's postings.
func (s *MatchResultsService) ForCompany(ctx context.Context, companyUserID int64, minScore float64, limit int) ([]*models.MatchResult, error) {
	return s.results.ListForCompany(ctx, companyUserID, minScore, clampResultLimit(limit))
}
