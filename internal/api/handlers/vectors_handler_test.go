package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/talentlink/matchengine/internal/apperrors"
)

type mockVectorRemover struct {
	removeFn func(ctx context.Context, vectorID int64) error
}

func (m *mockVectorRemover) RemoveVector(ctx context.Context, vectorID int64) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, vectorID)
	}

	return nil
}

func serveVectorDelete(handler *VectorsHandler, target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Delete("/v1/vectors/{id}", handler.Delete)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, target, nil))

	return rec
}

func TestVectorsHandler_Delete(t *testing.T) {
	t.Run("non-numeric id returns 400", func(t *testing.T) {
		rec := serveVectorDelete(NewVectorsHandler(&mockVectorRemover{}), "/v1/vectors/abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing vector returns 404", func(t *testing.T) {
		handler := NewVectorsHandler(&mockVectorRemover{
			removeFn: func(_ context.Context, _ int64) error {
				return apperrors.NewNotFoundError("matching_vector", "matching vector 7 not found")
			},
		})

		rec := serveVectorDelete(handler, "/v1/vectors/7")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("repository failure returns 500", func(t *testing.T) {
		handler := NewVectorsHandler(&mockVectorRemover{
			removeFn: func(_ context.Context, _ int64) error {
				return errors.New("connection refused")
			},
		})

		rec := serveVectorDelete(handler, "/v1/vectors/7")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("successful removal returns 204", func(t *testing.T) {
		var removed int64

		handler := NewVectorsHandler(&mockVectorRemover{
			removeFn: func(_ context.Context, vectorID int64) error {
				removed = vectorID

				return nil
			},
		})

		rec := serveVectorDelete(handler, "/v1/vectors/7")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, int64(7), removed)
	})
}
