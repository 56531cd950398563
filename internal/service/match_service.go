package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/matching"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/scoring"
)

// ErrMatchingDisabled is returned when the matching feature flag is off.
var ErrMatchingDisabled = errors.New("matching service is disabled")

// MatchService ranks opposite-kind candidates against a reference entity.
// The enabled flag is injected at construction (no module-level state).
type MatchService struct {
	vectors VectorsRepository
	enabled bool
}

// NewMatchService creates a match service.
func NewMatchService(vectors VectorsRepository, enabled bool) *MatchService {
	return &MatchService{vectors: vectors, enabled: enabled}
}

// rankingInput loads the reference entity's vectors and the full opposite-kind
// candidate set. The candidate set is fetched with one batched query and held
// in memory for the duration of the ranking call.
func (s *MatchService) rankingInput(ctx context.Context, kind models.EntityKind, referenceID int64) (*models.MatchingVector, []matching.Candidate, error) {
	reference, err := s.vectors.GetByEntity(ctx, kind, referenceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NewNotFoundError("embedding",
				fmt.Sprintf("embedding data not found for %s %d", kind, referenceID))
		}

		return nil, nil, err
	}

	candidateKind := kind.Opposite()

	ids, err := s.vectors.ListEntityIDsWithAnyFacet(ctx, candidateKind)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.vectors.GetBulkByEntity(ctx, candidateKind, ids)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]matching.Candidate, 0, len(rows))

	for _, id := range ids {
		row, ok := rows[id]
		if !ok {
			continue
		}

		candidates = append(candidates, matching.Candidate{ID: id, Vectors: row.Vectors})
	}

	return reference, candidates, nil
}

// TopK returns the best k opposite-kind candidates for the reference entity,
// along with the fully resolved weight map used.
func (s *MatchService) TopK(
	ctx context.Context,
	kind models.EntityKind,
	referenceID int64,
	partialWeights map[models.Facet]float64,
	k int,
) ([]matching.Row, scoring.WeightMap, error) {
	if !s.enabled {
		return nil, nil, ErrMatchingDisabled
	}

	reference, candidates, err := s.rankingInput(ctx, kind, referenceID)
	if err != nil {
		return nil, nil, err
	}

	weights := scoring.ResolveWeights(partialWeights)
	rows := matching.TopK(reference.Vectors, candidates, weights, k)

	return rows, weights, nil
}

// Page returns the stably-ordered slice [offset, offset+limit) across all
// opposite-kind candidates, plus the total candidate count and the resolved
// weight map.
func (s *MatchService) Page(
	ctx context.Context,
	kind models.EntityKind,
	referenceID int64,
	partialWeights map[models.Facet]float64,
	limit, offset int,
) ([]matching.Row, int, scoring.WeightMap, error) {
	if !s.enabled {
		return nil, 0, nil, ErrMatchingDisabled
	}

	reference, candidates, err := s.rankingInput(ctx, kind, referenceID)
	if err != nil {
		return nil, 0, nil, err
	}

	weights := scoring.ResolveWeights(partialWeights)
	rows, total := matching.All(reference.Vectors, candidates, weights, limit, offset)

	return rows, total, weights, nil
}

// ScorePair scores two stored entities against each other over whatever facets
// both sides have, tolerating missing facets. This is the weighted convenience
// path; the strict all-six-facets comparison lives in VectorMatchingService.
func (s *MatchService) ScorePair(
	ctx context.Context,
	kindA models.EntityKind, idA int64,
	kindB models.EntityKind, idB int64,
	partialWeights map[models.Facet]float64,
) (scoring.PairScore, error) {
	if !s.enabled {
		return scoring.PairScore{}, ErrMatchingDisabled
	}

	a, err := s.vectors.GetByEntity(ctx, kindA, idA)
	if err != nil {
		return scoring.PairScore{}, err
	}

	b, err := s.vectors.GetByEntity(ctx, kindB, idB)
	if err != nil {
		return scoring.PairScore{}, err
	}

	return scoring.ScorePair(a.Vectors, b.Vectors, scoring.ResolveWeights(partialWeights))
}
