// Package service implements the matching engine's business logic: embedding
// sync, batch ranking, strict pairwise matching, and the auto-rematch sweep.
package service

import (
	"context"

	"github.com/talentlink/matchengine/internal/models"
)

// VectorsRepository defines the interface for matching vector data access.
type VectorsRepository interface {
	GetByID(ctx context.Context, id int64) (*models.MatchingVector, error)
	GetByEntity(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, error)
	GetBulkByEntity(ctx context.Context, kind models.EntityKind, entityIDs []int64) (map[int64]*models.MatchingVector, error)
	ListEntityIDsWithAnyFacet(ctx context.Context, kind models.EntityKind) ([]int64, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.MatchingVector, error)
	UpsertFacets(ctx context.Context, kind models.EntityKind, entityID, ownerUserID int64, model string, dim int, updates map[models.Facet][]float32) (*models.MatchingVector, []models.Facet, error)
	ClearAllFacets(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, []models.Facet, error)
	Delete(ctx context.Context, id int64) error
}

// ResultsRepository defines the interface for materialized match result access.
type ResultsRepository interface {
	Upsert(ctx context.Context, result *models.MatchResult) error
	ListForTalent(ctx context.Context, talentUserID int64, minScore float64, limit int) ([]*models.MatchResult, error)
	ListForJobPosting(ctx context.Context, jobPostingID int64, minScore float64, limit int) ([]*models.MatchResult, error)
	ListForCompany(ctx context.Context, companyUserID int64, minScore float64, limit int) ([]*models.MatchResult, error)
	CountForTalent(ctx context.Context, talentUserID int64) (int64, error)
	CountForJobPosting(ctx context.Context, jobPostingID int64) (int64, error)
	DeleteByVectorID(ctx context.Context, vectorID int64) error
}
