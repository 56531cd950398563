package service

import (
	"context"
	"log/slog"

	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/scoring"
)

// Rematcher recomputes and persists matches for one vector row against the
// full opposite-role candidate set.
type Rematcher interface {
	Rematch(ctx context.Context, source *models.MatchingVector) RematchSummary
}

// RematchSummary reports a best-effort sweep: how many pairs were attempted,
// how many persisted, and why the rest were skipped. A sweep never fails the
// request that triggered it.
type RematchSummary struct {
	Attempted int              `json:"attempted"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Failures  []RematchFailure `json:"failures,omitempty"`
}

// RematchFailure records one pair that could not be scored or persisted.
type RematchFailure struct {
	TargetVectorID int64  `json:"target_vector_id"`
	Reason         string `json:"reason"`
}

// RematchService sweeps the opposite-role candidate set after a vector upsert
// and upserts one match_results row per pair. Each pair is independently
// committed-or-skipped, so a mid-sweep interruption leaves completed pairs
// correctly persisted.
type RematchService struct {
	vectors VectorsRepository
	results ResultsRepository
}

var _ Rematcher = (*RematchService)(nil)

// NewRematchService creates a rematch service.
func NewRematchService(vectors VectorsRepository, results ResultsRepository) *RematchService {
	return &RematchService{vectors: vectors, results: results}
}

// Rematch scores source against every stored opposite-role vector with at
// least one facet, persisting each result. Per-pair failures are logged,
// counted, and skipped; the sweep itself never aborts.
func (s *RematchService) Rematch(ctx context.Context, source *models.MatchingVector) RematchSummary {
	var summary RematchSummary

	candidates, err := s.vectors.ListByRole(ctx, source.Role.Opposite())
	if err != nil {
		slog.Error("rematch: listing candidates failed",
			"source_vector_id", source.ID, "error", err)

		return summary
	}

	weights := scoring.ResolveWeights(nil)

	for _, target := range candidates {
		summary.Attempted++

		talent, company := source, target
		if source.Role == models.RoleCompany {
			talent, company = target, source
		}

		if company.JobPostingID == nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, RematchFailure{
				TargetVectorID: target.ID,
				Reason:         "company vector has no job posting id",
			})

			continue
		}

		pair, err := scoring.ScorePair(talent.Vectors, company.Vectors, weights)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, RematchFailure{
				TargetVectorID: target.ID,
				Reason:         err.Error(),
			})

			slog.Warn("rematch: scoring pair failed",
				"talent_vector_id", talent.ID,
				"company_vector_id", company.ID,
				"error", err,
			)

			continue
		}

		result := &models.MatchResult{
			TalentVectorID:  talent.ID,
			CompanyVectorID: company.ID,
			TalentUserID:    talent.UserID,
			CompanyUserID:   company.UserID,
			JobPostingID:    *company.JobPostingID,
			FacetScores:     pair.Facets,
			TotalScore:      pair.Overall,
		}

		if err := s.results.Upsert(ctx, result); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, RematchFailure{
				TargetVectorID: target.ID,
				Reason:         err.Error(),
			})

			slog.Warn("rematch: persisting pair failed",
				"talent_vector_id", talent.ID,
				"company_vector_id", company.ID,
				"error", err,
			)

			continue
		}

		summary.Succeeded++
	}

	slog.Info("rematch sweep completed",
		"source_vector_id", source.ID,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)

	return summary
}

// RemoveVector deletes a vector row together with every materialized result
// referencing it on either side. Results go first so a failure never leaves
// orphaned rows pointing at a vector that no longer exists.
func (s *RematchService) RemoveVector(ctx context.Context, vectorID int64) error {
	if err := s.results.DeleteByVectorID(ctx, vectorID); err != nil {
		return err
	}

	if err := s.vectors.Delete(ctx, vectorID); err != nil {
		return err
	}

	slog.Info("removed matching vector and its results", "vector_id", vectorID)

	return nil
}
