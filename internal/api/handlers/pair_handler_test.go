package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/scoring"
	"github.com/talentlink/matchengine/internal/service"
)

type mockPairScorer struct {
	scoreFn func(ctx context.Context, kindA models.EntityKind, idA int64, kindB models.EntityKind, idB int64, weights map[models.Facet]float64) (scoring.PairScore, error)
}

func (m *mockPairScorer) ScorePair(ctx context.Context, kindA models.EntityKind, idA int64, kindB models.EntityKind, idB int64, weights map[models.Facet]float64) (scoring.PairScore, error) {
	if m.scoreFn != nil {
		return m.scoreFn(ctx, kindA, idA, kindB, idB, weights)
	}

	return scoring.PairScore{}, nil
}

type mockExactMatcher struct {
	matchFn func(ctx context.Context, sourceID, targetID int64) (*service.ExactMatchResult, error)
}

func (m *mockExactMatcher) Match(ctx context.Context, sourceID, targetID int64) (*service.ExactMatchResult, error) {
	if m.matchFn != nil {
		return m.matchFn(ctx, sourceID, targetID)
	}

	return nil, nil
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handlerFn(rec, req)

	return rec
}

func TestPairHandler_Score(t *testing.T) {
	t.Run("invalid kind returns 400", func(t *testing.T) {
		handler := NewPairHandler(&mockPairScorer{}, &mockExactMatcher{})

		rec := postJSON(t, handler.Score, "/v1/matches/pair", map[string]any{
			"kind_a": "robot", "id_a": 1, "kind_b": "job", "id_b": 300,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success rounds scores", func(t *testing.T) {
		handler := NewPairHandler(&mockPairScorer{
			scoreFn: func(_ context.Context, kindA models.EntityKind, idA int64, kindB models.EntityKind, idB int64, weights map[models.Facet]float64) (scoring.PairScore, error) {
				assert.Equal(t, models.KindTalent, kindA)
				assert.Equal(t, int64(1), idA)
				assert.Equal(t, models.KindJob, kindB)
				assert.Equal(t, int64(300), idB)
				assert.Equal(t, 2.0, weights[models.FacetSkills])

				return scoring.PairScore{
					Overall: 87.65432,
					Facets:  map[models.Facet]float64{models.FacetSkills: 90.0011},
				}, nil
			},
		}, &mockExactMatcher{})

		rec := postJSON(t, handler.Score, "/v1/matches/pair", map[string]any{
			"kind_a": "talent", "id_a": 1, "kind_b": "job", "id_b": 300,
			"weights": map[string]float64{"skills": 2},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body scorePairResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 87.65, body.TotalScore)
		assert.Equal(t, 90.0, body.FacetScores[models.FacetSkills])
	})

	t.Run("missing entity returns 404", func(t *testing.T) {
		handler := NewPairHandler(&mockPairScorer{
			scoreFn: func(_ context.Context, _ models.EntityKind, _ int64, _ models.EntityKind, _ int64, _ map[models.Facet]float64) (scoring.PairScore, error) {
				return scoring.PairScore{}, apperrors.NewNotFoundError("matching vector", "matching vector not found")
			},
		}, &mockExactMatcher{})

		rec := postJSON(t, handler.Score, "/v1/matches/pair", map[string]any{
			"kind_a": "talent", "id_a": 1, "kind_b": "job", "id_b": 300,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPairHandler_Exact(t *testing.T) {
	t.Run("missing ids return 400", func(t *testing.T) {
		handler := NewPairHandler(&mockPairScorer{}, &mockExactMatcher{})

		rec := postJSON(t, handler.Exact, "/v1/matches/exact", map[string]any{"source_vector_id": 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("same-role pair returns 422", func(t *testing.T) {
		handler := NewPairHandler(&mockPairScorer{}, &mockExactMatcher{
			matchFn: func(_ context.Context, _, _ int64) (*service.ExactMatchResult, error) {
				return nil, apperrors.NewRoleMismatchError("talent", "talent", "matching vectors must belong to opposite roles")
			},
		})

		rec := postJSON(t, handler.Exact, "/v1/matches/exact", map[string]any{
			"source_vector_id": 1, "target_vector_id": 2,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("incomplete vector returns 422", func(t *testing.T) {
		handler := NewPairHandler(&mockPairScorer{}, &mockExactMatcher{
			matchFn: func(_ context.Context, _, _ int64) (*service.ExactMatchResult, error) {
				return nil, apperrors.NewIncompleteVectorError("source", []string{"culture"})
			},
		})

		rec := postJSON(t, handler.Exact, "/v1/matches/exact", map[string]any{
			"source_vector_id": 1, "target_vector_id": 2,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("success returns rounded scores and refs", func(t *testing.T) {
		handler := NewPairHandler(&mockPairScorer{}, &mockExactMatcher{
			matchFn: func(_ context.Context, sourceID, targetID int64) (*service.ExactMatchResult, error) {
				assert.Equal(t, int64(1), sourceID)
				assert.Equal(t, int64(2), targetID)

				posting := int64(300)

				return &service.ExactMatchResult{
					Source: service.VectorRef{ID: 1, UserID: 10, Role: models.RoleTalent},
					Target: service.VectorRef{ID: 2, UserID: 20, Role: models.RoleCompany, JobPostingID: &posting},
					FacetScores: map[models.Facet]float64{
						models.FacetSkills: 77.7777,
					},
					TotalScore: 66.6666,
				}, nil
			},
		})

		rec := postJSON(t, handler.Exact, "/v1/matches/exact", map[string]any{
			"source_vector_id": 1, "target_vector_id": 2,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body service.ExactMatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 66.67, body.TotalScore)
		assert.Equal(t, 77.78, body.FacetScores[models.FacetSkills])
		assert.Equal(t, models.RoleCompany, body.Target.Role)
	})
}
