package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/models"
)

type fakeEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedFn != nil {
		return f.embedFn(ctx, text)
	}

	return nil, errors.New("not configured")
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

type fakeRematcher struct {
	calls   int
	summary RematchSummary
}

func (f *fakeRematcher) Rematch(_ context.Context, _ *models.MatchingVector) RematchSummary {
	f.calls++

	return f.summary
}

func float32sToAny(v []float32) []any {
	out := make([]any, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}

	return out
}

func TestEmbeddingSyncService_UpsertFacets(t *testing.T) {
	ctx := context.Background()
	const dim = 4

	applyingRepo := func(changed ...models.Facet) (*fakeVectorsRepo, *map[models.Facet][]float32) {
		var applied map[models.Facet][]float32

		repo := &fakeVectorsRepo{
			upsertFn: func(_ context.Context, kind models.EntityKind, entityID, _ int64, _ string, _ int, updates map[models.Facet][]float32) (*models.MatchingVector, []models.Facet, error) {
				applied = updates

				row := talentVector(1, entityID, updates)
				if kind == models.KindJob {
					row = companyVector(1, 99, entityID, updates)
				}

				return row, changed, nil
			},
		}

		return repo, &applied
	}

	t.Run("disabled flag short-circuits", func(t *testing.T) {
		svc := NewEmbeddingSyncService(&fakeVectorsRepo{}, nil, nil, false, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": float32sToAny(axisVector(dim, 0)),
		})

		assert.Equal(t, SyncDisabled, result.Status)
	})

	t.Run("no recognized facets is skipped", func(t *testing.T) {
		svc := NewEmbeddingSyncService(&fakeVectorsRepo{}, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"unknown": []any{1.0, 0.0, 0.0, 0.0},
		})

		assert.Equal(t, SyncSkipped, result.Status)
		assert.Equal(t, "no facets provided", result.Message)
	})

	t.Run("valid facets applied", func(t *testing.T) {
		repo, applied := applyingRepo(models.FacetSkills)
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": float32sToAny(axisVector(dim, 0)),
		})

		assert.Equal(t, SyncApplied, result.Status)
		assert.Equal(t, []models.Facet{models.FacetSkills}, result.ChangedFacets)
		assert.Contains(t, *applied, models.FacetSkills)
	})

	t.Run("non-unit vector applied with normalization warning", func(t *testing.T) {
		repo, _ := applyingRepo(models.FacetSkills)
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": []any{3.0, 4.0, 0.0, 0.0},
		})

		assert.Equal(t, SyncPartial, result.Status)
		assert.Contains(t, result.Warnings, "skills:normalized")
	})

	t.Run("nil facet payload clears the facet", func(t *testing.T) {
		repo, applied := applyingRepo(models.FacetSkills)
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": nil,
		})

		assert.Equal(t, SyncApplied, result.Status)
		require.Contains(t, *applied, models.FacetSkills)
		assert.Nil(t, (*applied)[models.FacetSkills])
	})

	t.Run("mixed valid and invalid facets is partial", func(t *testing.T) {
		repo, applied := applyingRepo(models.FacetSkills)
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": float32sToAny(axisVector(dim, 0)),
			"roles":  []any{1.0}, // wrong dimension
		})

		assert.Equal(t, SyncPartial, result.Status)
		assert.Contains(t, result.Errors, "roles")
		assert.NotContains(t, *applied, models.FacetRoles)
	})

	t.Run("all facets invalid is an error", func(t *testing.T) {
		repo := &fakeVectorsRepo{
			upsertFn: func(_ context.Context, _ models.EntityKind, entityID, _ int64, _ string, _ int, updates map[models.Facet][]float32) (*models.MatchingVector, []models.Facet, error) {
				return talentVector(1, entityID, updates), nil, nil
			},
		}
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"roles": []any{1.0},
		})

		assert.Equal(t, SyncError, result.Status)
		assert.Contains(t, result.Errors, "roles")
	})

	t.Run("text payload without embedder is unfulfillable", func(t *testing.T) {
		repo := &fakeVectorsRepo{
			upsertFn: func(_ context.Context, _ models.EntityKind, entityID, _ int64, _ string, _ int, updates map[models.Facet][]float32) (*models.MatchingVector, []models.Facet, error) {
				return talentVector(1, entityID, updates), nil, nil
			},
		}
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"culture": map[string]any{"text": "values autonomy and ownership"},
		})

		assert.Equal(t, SyncError, result.Status)
		assert.Equal(t, "embedding_pipeline_unavailable", result.Errors["culture"])
	})

	t.Run("text payload routes through the embedder", func(t *testing.T) {
		repo, applied := applyingRepo(models.FacetCulture)

		embedder := &fakeEmbedder{
			embedFn: func(_ context.Context, text string) ([]float32, error) {
				assert.Equal(t, "values autonomy and ownership", text)

				return axisVector(dim, 2), nil
			},
		}

		svc := NewEmbeddingSyncService(repo, embedder, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"culture": map[string]any{"text": "values autonomy and ownership"},
		})

		assert.Equal(t, SyncApplied, result.Status)
		assert.Contains(t, *applied, models.FacetCulture)
	})

	t.Run("failing embedder marks facet unfulfillable", func(t *testing.T) {
		repo := &fakeVectorsRepo{
			upsertFn: func(_ context.Context, _ models.EntityKind, entityID, _ int64, _ string, _ int, updates map[models.Facet][]float32) (*models.MatchingVector, []models.Facet, error) {
				return talentVector(1, entityID, updates), nil, nil
			},
		}

		embedder := &fakeEmbedder{
			embedFn: func(_ context.Context, _ string) ([]float32, error) {
				return nil, errors.New("upstream 500")
			},
		}

		svc := NewEmbeddingSyncService(repo, embedder, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"culture": "values autonomy and ownership",
		})

		assert.Equal(t, SyncError, result.Status)
		assert.Equal(t, "embedding_pipeline_unavailable", result.Errors["culture"])
	})

	t.Run("job sync without owner user id is an error", func(t *testing.T) {
		svc := NewEmbeddingSyncService(&fakeVectorsRepo{}, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindJob, 300, 0, map[string]any{
			"skills": float32sToAny(axisVector(dim, 0)),
		})

		assert.Equal(t, SyncError, result.Status)
		assert.Equal(t, "owner_user_id_missing", result.Errors["job"])
	})

	t.Run("changed facets trigger the rematch sweep", func(t *testing.T) {
		repo, _ := applyingRepo(models.FacetSkills)
		rematcher := &fakeRematcher{summary: RematchSummary{Attempted: 3, Succeeded: 3}}
		svc := NewEmbeddingSyncService(repo, nil, rematcher, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": float32sToAny(axisVector(dim, 0)),
		})

		assert.Equal(t, 1, rematcher.calls)
		require.NotNil(t, result.Rematch)
		assert.Equal(t, 3, result.Rematch.Succeeded)
	})

	t.Run("no-op upsert skips the rematch sweep", func(t *testing.T) {
		repo, _ := applyingRepo() // no changed facets
		rematcher := &fakeRematcher{}
		svc := NewEmbeddingSyncService(repo, nil, rematcher, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": float32sToAny(axisVector(dim, 0)),
		})

		assert.Equal(t, SyncApplied, result.Status)
		assert.Equal(t, 0, rematcher.calls)
		assert.Nil(t, result.Rematch)
	})

	t.Run("repository failure is an error result", func(t *testing.T) {
		repo := &fakeVectorsRepo{
			upsertFn: func(_ context.Context, _ models.EntityKind, _, _ int64, _ string, _ int, _ map[models.Facet][]float32) (*models.MatchingVector, []models.Facet, error) {
				return nil, nil, errors.New("connection reset")
			},
		}
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", dim)

		result := svc.UpsertFacets(ctx, models.KindTalent, 10, 0, map[string]any{
			"skills": float32sToAny(axisVector(dim, 0)),
		})

		assert.Equal(t, SyncError, result.Status)
	})
}

func TestEmbeddingSyncService_ClearFacets(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled flag short-circuits", func(t *testing.T) {
		svc := NewEmbeddingSyncService(&fakeVectorsRepo{}, nil, nil, false, "", 4)

		result := svc.ClearFacets(ctx, models.KindTalent, 10)
		assert.Equal(t, SyncDisabled, result.Status)
	})

	t.Run("missing row is skipped, not an error", func(t *testing.T) {
		repo := &fakeVectorsRepo{
			clearFn: func(_ context.Context, _ models.EntityKind, _ int64) (*models.MatchingVector, []models.Facet, error) {
				return nil, nil, apperrors.NewNotFoundError("matching vector", "matching vector not found")
			},
		}
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", 4)

		result := svc.ClearFacets(ctx, models.KindTalent, 10)
		assert.Equal(t, SyncSkipped, result.Status)
		assert.Equal(t, "embedding row not found", result.Message)
	})

	t.Run("nothing stored is skipped", func(t *testing.T) {
		repo := &fakeVectorsRepo{
			clearFn: func(_ context.Context, _ models.EntityKind, entityID int64) (*models.MatchingVector, []models.Facet, error) {
				return talentVector(1, entityID, nil), nil, nil
			},
		}
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", 4)

		result := svc.ClearFacets(ctx, models.KindTalent, 10)
		assert.Equal(t, SyncSkipped, result.Status)
	})

	t.Run("cleared facets reported", func(t *testing.T) {
		repo := &fakeVectorsRepo{
			clearFn: func(_ context.Context, _ models.EntityKind, entityID int64) (*models.MatchingVector, []models.Facet, error) {
				return talentVector(1, entityID, nil), []models.Facet{models.FacetSkills, models.FacetRoles}, nil
			},
		}
		svc := NewEmbeddingSyncService(repo, nil, nil, true, "", 4)

		result := svc.ClearFacets(ctx, models.KindTalent, 10)
		assert.Equal(t, SyncApplied, result.Status)
		assert.Len(t, result.ChangedFacets, 2)
	})
}
