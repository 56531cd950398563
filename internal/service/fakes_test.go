package service

import (
	"context"

	"github.com/talentlink/matchengine/internal/models"
)

type fakeVectorsRepo struct {
	getByIDFn     func(ctx context.Context, id int64) (*models.MatchingVector, error)
	getByEntityFn func(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, error)
	getBulkFn     func(ctx context.Context, kind models.EntityKind, entityIDs []int64) (map[int64]*models.MatchingVector, error)
	listIDsFn     func(ctx context.Context, kind models.EntityKind) ([]int64, error)
	listByRoleFn  func(ctx context.Context, role models.Role) ([]*models.MatchingVector, error)
	upsertFn      func(ctx context.Context, kind models.EntityKind, entityID, ownerUserID int64, model string, dim int, updates map[models.Facet][]float32) (*models.MatchingVector, []models.Facet, error)
	clearFn       func(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, []models.Facet, error)
	deleteFn      func(ctx context.Context, id int64) error
}

func (f *fakeVectorsRepo) GetByID(ctx context.Context, id int64) (*models.MatchingVector, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return nil, nil
}

func (f *fakeVectorsRepo) GetByEntity(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, error) {
	if f.getByEntityFn != nil {
		return f.getByEntityFn(ctx, kind, entityID)
	}

	return nil, nil
}

func (f *fakeVectorsRepo) GetBulkByEntity(ctx context.Context, kind models.EntityKind, entityIDs []int64) (map[int64]*models.MatchingVector, error) {
	if f.getBulkFn != nil {
		return f.getBulkFn(ctx, kind, entityIDs)
	}

	return map[int64]*models.MatchingVector{}, nil
}

func (f *fakeVectorsRepo) ListEntityIDsWithAnyFacet(ctx context.Context, kind models.EntityKind) ([]int64, error) {
	if f.listIDsFn != nil {
		return f.listIDsFn(ctx, kind)
	}

	return nil, nil
}

func (f *fakeVectorsRepo) ListByRole(ctx context.Context, role models.Role) ([]*models.MatchingVector, error) {
	if f.listByRoleFn != nil {
		return f.listByRoleFn(ctx, role)
	}

	return nil, nil
}

func (f *fakeVectorsRepo) UpsertFacets(
	ctx context.Context,
	kind models.EntityKind,
	entityID, ownerUserID int64,
	model string,
	dim int,
	updates map[models.Facet][]float32,
) (*models.MatchingVector, []models.Facet, error) {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, kind, entityID, ownerUserID, model, dim, updates)
	}

	return nil, nil, nil
}

func (f *fakeVectorsRepo) ClearAllFacets(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, []models.Facet, error) {
	if f.clearFn != nil {
		return f.clearFn(ctx, kind, entityID)
	}

	return nil, nil, nil
}

func (f *fakeVectorsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

type fakeResultsRepo struct {
	upsertFn            func(ctx context.Context, result *models.MatchResult) error
	listForTalentFn     func(ctx context.Context, talentUserID int64, minScore float64, limit int) ([]*models.MatchResult, error)
	listForJobPostingFn func(ctx context.Context, jobPostingID int64, minScore float64, limit int) ([]*models.MatchResult, error)
	listForCompanyFn    func(ctx context.Context, companyUserID int64, minScore float64, limit int) ([]*models.MatchResult, error)
	countForTalentFn    func(ctx context.Context, talentUserID int64) (int64, error)
	countForPostingFn   func(ctx context.Context, jobPostingID int64) (int64, error)
	deleteFn            func(ctx context.Context, vectorID int64) error
}

func (f *fakeResultsRepo) Upsert(ctx context.Context, result *models.MatchResult) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, result)
	}

	return nil
}

func (f *fakeResultsRepo) ListForTalent(ctx context.Context, talentUserID int64, minScore float64, limit int) ([]*models.MatchResult, error) {
	if f.listForTalentFn != nil {
		return f.listForTalentFn(ctx, talentUserID, minScore, limit)
	}

	return nil, nil
}

func (f *fakeResultsRepo) ListForJobPosting(ctx context.Context, jobPostingID int64, minScore float64, limit int) ([]*models.MatchResult, error) {
	if f.listForJobPostingFn != nil {
		return f.listForJobPostingFn(ctx, jobPostingID, minScore, limit)
	}

	return nil, nil
}

func (f *fakeResultsRepo) ListForCompany(ctx context.Context, companyUserID int64, minScore float64, limit int) ([]*models.MatchResult, error) {
	if f.listForCompanyFn != nil {
		return f.listForCompanyFn(ctx, companyUserID, minScore, limit)
	}

	return nil, nil
}

func (f *fakeResultsRepo) CountForTalent(ctx context.Context, talentUserID int64) (int64, error) {
	if f.countForTalentFn != nil {
		return f.countForTalentFn(ctx, talentUserID)
	}

	return 0, nil
}

func (f *fakeResultsRepo) CountForJobPosting(ctx context.Context, jobPostingID int64) (int64, error) {
	if f.countForPostingFn != nil {
		return f.countForPostingFn(ctx, jobPostingID)
	}

	return 0, nil
}

func (f *fakeResultsRepo) DeleteByVectorID(ctx context.Context, vectorID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, vectorID)
	}

	return nil
}

// axisVector returns a dim-length unit vector along the given axis.
func axisVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1.0

	return v
}

// fullVectors returns all six facets populated with the same unit vector.
func fullVectors(dim int) map[models.Facet][]float32 {
	vectors := make(map[models.Facet][]float32, len(models.Facets))
	for _, facet := range models.Facets {
		vectors[facet] = axisVector(dim, 0)
	}

	return vectors
}

func talentVector(id, userID int64, vectors map[models.Facet][]float32) *models.MatchingVector {
	return &models.MatchingVector{
		ID:      id,
		UserID:  userID,
		Role:    models.RoleTalent,
		Vectors: vectors,
	}
}

func companyVector(id, userID, jobPostingID int64, vectors map[models.Facet][]float32) *models.MatchingVector {
	return &models.MatchingVector{
		ID:           id,
		UserID:       userID,
		Role:         models.RoleCompany,
		JobPostingID: &jobPostingID,
		Vectors:      vectors,
	}
}
