// Package repository provides data access for matching vectors and
// materialized match results. It is the only layer touching PostgreSQL;
// store-specific errors never leak upward.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/models"
)

const matchingVectorColumns = `id, user_id, role, job_posting_id, model, dim,
	vector_roles, vector_skills, vector_growth, vector_career, vector_vision, vector_culture, updated_at`

// MatchingVectorsRepository handles data access for the matching_vectors table.
type MatchingVectorsRepository struct {
	db *pgxpool.Pool
}

// NewMatchingVectorsRepository creates a new matching vectors repository.
func NewMatchingVectorsRepository(db *pgxpool.Pool) *MatchingVectorsRepository {
	return &MatchingVectorsRepository{db: db}
}

func facetColumn(facet models.Facet) string {
	return "vector_" + string(facet)
}

// anyFacetPredicate matches rows carrying at least one non-null facet vector.
func anyFacetPredicate() string {
	parts := make([]string, 0, len(models.Facets))
	for _, facet := range models.Facets {
		parts = append(parts, facetColumn(facet)+" IS NOT NULL")
	}

	return "(" + strings.Join(parts, " OR ") + ")"
}

// entityPredicate addresses a row by its external id: user id for talent rows,
// job posting id for company rows. The placeholder is $1.
func entityPredicate(kind models.EntityKind) string {
	if kind == models.KindJob {
		return "role = 'company' AND job_posting_id = $1"
	}

	return "role = 'talent' AND user_id = $1"
}

func entityIDColumn(kind models.EntityKind) string {
	if kind == models.KindJob {
		return "job_posting_id"
	}

	return "user_id"
}

func scanMatchingVector(row pgx.Row) (*models.MatchingVector, error) {
	var (
		v       models.MatchingVector
		role    string
		vectors [6]*pgvector.Vector
	)

	err := row.Scan(
		&v.ID, &v.UserID, &role, &v.JobPostingID, &v.Model, &v.Dim,
		&vectors[0], &vectors[1], &vectors[2], &vectors[3], &vectors[4], &vectors[5],
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Role = models.Role(role)
	v.Vectors = make(map[models.Facet][]float32, len(models.Facets))

	for i, facet := range models.Facets {
		if vectors[i] != nil {
			v.Vectors[facet] = vectors[i].Slice()
		}
	}

	return &v, nil
}

// GetByID returns the matching vector row with the given primary key.
func (r *MatchingVectorsRepository) GetByID(ctx context.Context, id int64) (*models.MatchingVector, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+matchingVectorColumns+` FROM matching_vectors WHERE id = $1`, id)

	v, err := scanMatchingVector(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("matching vector", "")
		}

		return nil, fmt.Errorf("get matching vector: %w", err)
	}

	return v, nil
}

// GetByEntity returns the row addressed by (kind, entityID).
func (r *MatchingVectorsRepository) GetByEntity(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+matchingVectorColumns+` FROM matching_vectors WHERE `+entityPredicate(kind), entityID)

	v, err := scanMatchingVector(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(string(kind)+" vector", "")
		}

		return nil, fmt.Errorf("get %s vector: %w", kind, err)
	}

	return v, nil
}

// GetBulkByEntity fetches rows for many entity ids in a single query, keyed by
// entity id. Missing ids are simply absent from the result map.
func (r *MatchingVectorsRepository) GetBulkByEntity(ctx context.Context, kind models.EntityKind, entityIDs []int64) (map[int64]*models.MatchingVector, error) {
	result := make(map[int64]*models.MatchingVector, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+matchingVectorColumns+` FROM matching_vectors
		 WHERE role = $1 AND `+entityIDColumn(kind)+` = ANY($2)`,
		string(kind.Role()), entityIDs)
	if err != nil {
		return nil, fmt.Errorf("bulk get %s vectors: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanMatchingVector(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s vector: %w", kind, err)
		}

		result[v.EntityID()] = v
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s vectors: %w", kind, err)
	}

	return result, nil
}

// ListEntityIDsWithAnyFacet returns the sorted external ids of all rows of the
// given kind that carry at least one facet vector.
func (r *MatchingVectorsRepository) ListEntityIDsWithAnyFacet(ctx context.Context, kind models.EntityKind) ([]int64, error) {
	column := entityIDColumn(kind)

	rows, err := r.db.Query(ctx,
		`SELECT `+column+` FROM matching_vectors
		 WHERE role = $1 AND `+anyFacetPredicate()+`
		 ORDER BY `+column,
		string(kind.Role()))
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", kind, err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", kind, err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s ids: %w", kind, err)
	}

	return ids, nil
}

// ListByRole returns all rows of the given role that carry at least one facet
// vector, ordered by id. Used by the rematch sweep to enumerate the full
// opposite-role candidate set.
func (r *MatchingVectorsRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.MatchingVector, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+matchingVectorColumns+` FROM matching_vectors
		 WHERE role = $1 AND `+anyFacetPredicate()+`
		 ORDER BY id`,
		string(role))
	if err != nil {
		return nil, fmt.Errorf("list %s vectors: %w", role, err)
	}
	defer rows.Close()

	var result []*models.MatchingVector

	for rows.Next() {
		v, err := scanMatchingVector(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s vector: %w", role, err)
		}

		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s vectors: %w", role, err)
	}

	return result, nil
}

// GetOrCreate returns the row addressed by (kind, entityID), creating a fresh
// row with no facet vectors when none exists yet. ownerUserID is the company
// user owning the posting for kind=job; it is ignored for kind=talent, where
// the entity id is the user id.
func (r *MatchingVectorsRepository) GetOrCreate(ctx context.Context, kind models.EntityKind, entityID, ownerUserID int64, model string, dim int) (*models.MatchingVector, error) {
	existing, err := r.GetByEntity(ctx, kind, entityID)
	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	userID := entityID

	var jobPostingID *int64

	if kind == models.KindJob {
		userID = ownerUserID
		jobPostingID = &entityID
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO matching_vectors (user_id, role, job_posting_id, model, dim, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING id, updated_at`,
		userID, string(kind.Role()), jobPostingID, model, dim)

	v := &models.MatchingVector{
		UserID:       userID,
		Role:         kind.Role(),
		JobPostingID: jobPostingID,
		Model:        model,
		Dim:          dim,
		Vectors:      make(map[models.Facet][]float32, len(models.Facets)),
	}

	if err := row.Scan(&v.ID, &v.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create %s vector: %w", kind, err)
	}

	return v, nil
}

// UpsertFacets applies a partial facet update to the row addressed by
// (kind, entityID), auto-vivifying the row on first write. Only facets present
// in updates are touched; a nil value clears that facet. Returns the row and
// exactly the facet names whose stored value actually changed; no-op writes are
// detected and skipped.
func (r *MatchingVectorsRepository) UpsertFacets(
	ctx context.Context,
	kind models.EntityKind,
	entityID, ownerUserID int64,
	model string,
	dim int,
	updates map[models.Facet][]float32,
) (*models.MatchingVector, []models.Facet, error) {
	row, err := r.GetOrCreate(ctx, kind, entityID, ownerUserID, model, dim)
	if err != nil {
		return nil, nil, err
	}

	var changed []models.Facet

	setClauses := []string{"model = $1", "dim = $2", "updated_at = now()"}
	args := []any{model, dim}

	for _, facet := range models.Facets {
		vec, present := updates[facet]
		if !present || slices.Equal(row.Vectors[facet], vec) {
			continue
		}

		changed = append(changed, facet)
		args = append(args, vectorParam(vec))
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", facetColumn(facet), len(args)))
	}

	if len(changed) == 0 {
		return row, nil, nil
	}

	args = append(args, row.ID)

	var updatedAt time.Time

	err = r.db.QueryRow(ctx,
		`UPDATE matching_vectors SET `+strings.Join(setClauses, ", ")+
			fmt.Sprintf(` WHERE id = $%d RETURNING updated_at`, len(args)),
		args...,
	).Scan(&updatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("upsert facets: %w", err)
	}

	row.Model = model
	row.Dim = dim
	row.UpdatedAt = updatedAt

	for _, facet := range changed {
		if updates[facet] == nil {
			delete(row.Vectors, facet)
		} else {
			row.Vectors[facet] = updates[facet]
		}
	}

	return row, changed, nil
}

// ClearAllFacets nulls out every stored facet of the addressed row without
// deleting the row. Returns the facets that were actually cleared.
func (r *MatchingVectorsRepository) ClearAllFacets(ctx context.Context, kind models.EntityKind, entityID int64) (*models.MatchingVector, []models.Facet, error) {
	row, err := r.GetByEntity(ctx, kind, entityID)
	if err != nil {
		return nil, nil, err
	}

	var (
		changed    []models.Facet
		setClauses []string
	)

	for _, facet := range models.Facets {
		if row.Vectors[facet] == nil {
			continue
		}

		changed = append(changed, facet)
		setClauses = append(setClauses, facetColumn(facet)+" = NULL")
	}

	if len(changed) == 0 {
		return row, nil, nil
	}

	setClauses = append(setClauses, "updated_at = now()")

	_, err = r.db.Exec(ctx,
		`UPDATE matching_vectors SET `+strings.Join(setClauses, ", ")+` WHERE id = $1`, row.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("clear facets: %w", err)
	}

	for _, facet := range changed {
		delete(row.Vectors, facet)
	}

	return row, changed, nil
}

// Delete removes a matching vector row by primary key.
func (r *MatchingVectorsRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM matching_vectors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete matching vector: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("matching vector", "")
	}

	return nil
}

// vectorParam converts a facet slice into a nullable pgvector parameter.
func vectorParam(vec []float32) any {
	if vec == nil {
		return nil
	}

	v := pgvector.NewVector(vec)

	return v
}
