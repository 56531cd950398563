package service

import (
	"context"
	"fmt"

	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/pkg/cache"
)

// entityKey addresses one cached vector row.
type entityKey struct {
	Kind models.EntityKind
	ID   int64
}

// cachingVectorsRepo wraps a VectorsRepository with read-through caches for
// GetByEntity and ListEntityIDsWithAnyFacet, the two reads every ranking call
// starts with. Writes invalidate the affected entries. Bulk fetches and
// by-primary-key reads pass through uncached.
type cachingVectorsRepo struct {
	inner     VectorsRepository
	byEntity  *cache.Loader[entityKey, *models.MatchingVector]
	idsByKind *cache.Loader[models.EntityKind, []int64]
}

// NewCachingVectorsRepository returns a VectorsRepository caching single-row
// and id-list reads, invalidated on writes through this wrapper.
func NewCachingVectorsRepository(inner VectorsRepository, maxEntries int) (VectorsRepository, error) {
	byEntity, err := cache.NewLoader[entityKey, *models.MatchingVector](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create entity cache: %w", err)
	}

	idsByKind, err := cache.NewLoader[models.EntityKind, []int64](len(models.Facets))
	if err != nil {
		return nil, fmt.Errorf("create id list cache: %w", err)
	}

	return &cachingVectorsRepo{
		inner:     inner,
		byEntity:  byEntity,
		idsByKind: idsByKind,
	}, nil
}

func (r *cachingVectorsRepo) GetByID(ctx context.Context, id int64) (*models.MatchingVector, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachingVectorsRepo) GetByEntity(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, error) {
	return r.byEntity.Get(ctx, entityKey{Kind: kind, ID: entityID}, func(ctx context.Context, key entityKey) (*models.MatchingVector, error) {
		return r.inner.GetByEntity(ctx, key.Kind, key.ID)
	})
}

func (r *cachingVectorsRepo) GetBulkByEntity(ctx context.Context, kind models.EntityKind, entityIDs []int64) (map[int64]*models.MatchingVector, error) {
	return r.inner.GetBulkByEntity(ctx, kind, entityIDs)
}

func (r *cachingVectorsRepo) ListEntityIDsWithAnyFacet(ctx context.Context, kind models.EntityKind) ([]int64, error) {
	return r.idsByKind.Get(ctx, kind, r.inner.ListEntityIDsWithAnyFacet)
}

func (r *cachingVectorsRepo) ListByRole(ctx context.Context, role models.Role) ([]*models.MatchingVector, error) {
	return r.inner.ListByRole(ctx, role)
}

func (r *cachingVectorsRepo) UpsertFacets(
	ctx context.Context,
	kind models.EntityKind,
	entityID, ownerUserID int64,
	model string,
	dim int,
	updates map[models.Facet][]float32,
) (*models.MatchingVector, []models.Facet, error) {
	row, changed, err := r.inner.UpsertFacets(ctx, kind, entityID, ownerUserID, model, dim, updates)
	if err != nil {
		return nil, nil, err
	}

	if len(changed) > 0 {
		r.byEntity.Invalidate(entityKey{Kind: kind, ID: entityID})
		r.idsByKind.Invalidate(kind)
	}

	return row, changed, nil
}

// Delete drops the row by primary key. The entity address is unknown at this
// point, so both caches are purged wholesale; deletions are rare.
func (r *cachingVectorsRepo) Delete(ctx context.Context, id int64) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}

	r.byEntity.InvalidateAll()
	r.idsByKind.InvalidateAll()

	return nil
}

func (r *cachingVectorsRepo) ClearAllFacets(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, []models.Facet, error) {
	row, changed, err := r.inner.ClearAllFacets(ctx, kind, entityID)
	if err != nil {
		return nil, nil, err
	}

	if len(changed) > 0 {
		r.byEntity.Invalidate(entityKey{Kind: kind, ID: entityID})
		r.idsByKind.Invalidate(kind)
	}

	return row, changed, nil
}
