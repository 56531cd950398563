package service

import (
	"context"
	"errors"
	"math"

	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/scoring"
)

// VectorMatchingService is the strict pairwise orchestrator: a deliberate
// one-off comparison of two stored vector rows that must be comprehensive.
// Unlike the batch ranker, which degrades gracefully across heterogeneous
// candidates, this path rejects incomplete data outright.
type VectorMatchingService struct {
	vectors VectorsRepository
}

// NewVectorMatchingService creates a strict pairwise matching service.
func NewVectorMatchingService(vectors VectorsRepository) *VectorMatchingService {
	return &VectorMatchingService{vectors: vectors}
}

// VectorRef identifies one side of an exact match.
type VectorRef struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	Role         models.Role `json:"role"`
	JobPostingID *int64      `json:"job_posting_id,omitempty"`
}

// ExactMatchResult is the outcome of a strict pairwise match: a 0-100 score per
// facet and the unweighted mean mapped to 0-100.
type ExactMatchResult struct {
	Source      VectorRef                `json:"source"`
	Target      VectorRef                `json:"target"`
	FacetScores map[models.Facet]float64 `json:"facet_scores"`
	TotalScore  float64                  `json:"total_score"`
}

// Match compares two stored vector rows end to end. Preconditions, checked in
// order with distinct failure signals: source exists; target exists; the rows
// belong to opposite roles; both sides have all six facets populated.
//
// The overall score is the plain arithmetic mean of the six facet cosines
// mapped to 0-100; no weighting. A zero-magnitude vector at this point is a
// hard error: completeness was already checked, so it indicates corrupted data.
func (s *VectorMatchingService) Match(ctx context.Context, sourceID, targetID int64) (*ExactMatchResult, error) {
	source, err := s.vectors.GetByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("source matching vector", "source matching vector not found")
		}

		return nil, err
	}

	target, err := s.vectors.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("target matching vector", "target matching vector not found")
		}

		return nil, err
	}

	if source.Role == target.Role {
		return nil, apperrors.NewRoleMismatchError(string(source.Role), string(target.Role),
			"matching vectors must belong to opposite roles")
	}

	if missing := source.MissingFacets(); len(missing) > 0 {
		return nil, apperrors.NewIncompleteVectorError("source", facetNames(missing))
	}

	if missing := target.MissingFacets(); len(missing) > 0 {
		return nil, apperrors.NewIncompleteVectorError("target", facetNames(missing))
	}

	facetScores := make(map[models.Facet]float64, len(models.Facets))

	var cosineSum float64

	for _, facet := range models.Facets {
		sv, tv := source.Vectors[facet], target.Vectors[facet]

		if len(sv) != len(tv) {
			return nil, apperrors.NewDimensionMismatchError(string(facet), len(sv), len(tv))
		}

		var dot, ss, tt float64

		for i := range sv {
			ds, dt := float64(sv[i]), float64(tv[i])
			dot += ds * dt
			ss += ds * ds
			tt += dt * dt
		}

		if ss == 0 || tt == 0 {
			return nil, apperrors.NewValidationError(string(facet),
				"facet "+string(facet)+" contains a zero magnitude vector which cannot be matched")
		}

		cos := dot / (math.Sqrt(ss) * math.Sqrt(tt))
		cosineSum += cos
		facetScores[facet] = scoring.ToPercent(cos)
	}

	return &ExactMatchResult{
		Source:      vectorRef(source),
		Target:      vectorRef(target),
		FacetScores: facetScores,
		TotalScore:  scoring.ToPercent(cosineSum / float64(len(models.Facets))),
	}, nil
}

func vectorRef(v *models.MatchingVector) VectorRef {
	return VectorRef{
		ID:           v.ID,
		UserID:       v.UserID,
		Role:         v.Role,
		JobPostingID: v.JobPostingID,
	}
}

func facetNames(facets []models.Facet) []string {
	names := make([]string, len(facets))
	for i, facet := range facets {
		names[i] = string(facet)
	}

	return names
}
