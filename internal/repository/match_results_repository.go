package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentlink/matchengine/internal/models"
)

const matchResultColumns = `id, talent_vector_id, company_vector_id, talent_user_id, company_user_id, job_posting_id,
	score_roles, score_skills, score_growth, score_career, score_vision, score_culture, total_score, calculated_at`

// MatchResultsRepository handles data access for the materialized match_results table.
type MatchResultsRepository struct {
	db *pgxpool.Pool
}

// NewMatchResultsRepository creates a new match results repository.
func NewMatchResultsRepository(db *pgxpool.Pool) *MatchResultsRepository {
	return &MatchResultsRepository{db: db}
}

// Upsert inserts or updates the result for (talent_vector_id, company_vector_id).
// Recomputation is idempotent: running it twice with unchanged inputs rewrites
// the same row rather than inserting a duplicate.
func (r *MatchResultsRepository) Upsert(ctx context.Context, result *models.MatchResult) error {
	scores := make([]any, 0, len(models.Facets))
	for _, facet := range models.Facets {
		if s, ok := result.FacetScores[facet]; ok {
			scores = append(scores, s)
		} else {
			scores = append(scores, nil)
		}
	}

	args := []any{
		result.TalentVectorID, result.CompanyVectorID,
		result.TalentUserID, result.CompanyUserID, result.JobPostingID,
	}
	args = append(args, scores...)
	args = append(args, result.TotalScore)

	_, err := r.db.Exec(ctx, `
		INSERT INTO match_results (
			talent_vector_id, company_vector_id, talent_user_id, company_user_id, job_posting_id,
			score_roles, score_skills, score_growth, score_career, score_vision, score_culture,
			total_score, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (talent_vector_id, company_vector_id)
		DO UPDATE SET
			talent_user_id = EXCLUDED.talent_user_id,
			company_user_id = EXCLUDED.company_user_id,
			job_posting_id = EXCLUDED.job_posting_id,
			score_roles = EXCLUDED.score_roles,
			score_skills = EXCLUDED.score_skills,
			score_growth = EXCLUDED.score_growth,
			score_career = EXCLUDED.score_career,
			score_vision = EXCLUDED.score_vision,
			score_culture = EXCLUDED.score_culture,
			total_score = EXCLUDED.total_score,
			calculated_at = now()`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("match results upsert: %w", err)
	}

	return nil
}

func scanMatchResult(row pgx.Row) (*models.MatchResult, error) {
	var (
		result models.MatchResult
		scores [6]*float64
	)

	err := row.Scan(
		&result.ID, &result.TalentVectorID, &result.CompanyVectorID,
		&result.TalentUserID, &result.CompanyUserID, &result.JobPostingID,
		&scores[0], &scores[1], &scores[2], &scores[3], &scores[4], &scores[5],
		&result.TotalScore, &result.CalculatedAt,
	)
	if err != nil {
		return nil, err
	}

	result.FacetScores = make(map[models.Facet]float64, len(models.Facets))

	for i, facet := range models.Facets {
		if scores[i] != nil {
			result.FacetScores[facet] = *scores[i]
		}
	}

	return &result, nil
}

func (r *MatchResultsRepository) list(ctx context.Context, predicate string, key any, minScore float64, limit int) ([]*models.MatchResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+matchResultColumns+` FROM match_results
		 WHERE `+predicate+` AND total_score >= $2
		 ORDER BY total_score DESC, id
		 LIMIT $3`,
		key, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	defer rows.Close()

	var results []*models.MatchResult

	for rows.Next() {
		result, err := scanMatchResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match results: %w", err)
	}

	return results, nil
}

// ListForTalent returns a talent's materialized matches above minScore, best first.
func (r *MatchResultsRepository) ListForTalent(ctx context.Context, talentUserID int64, minScore float64, limit int) ([]*models.MatchResult, error) {
	return r.list(ctx, "talent_user_id = $1", talentUserID, minScore, limit)
}

// ListForJobPosting returns a posting's materialized matches above minScore, best first.
func (r *MatchResultsRepository) ListForJobPosting(ctx context.Context, jobPostingID int64, minScore float64, limit int) ([]*models.MatchResult, error) {
	return r.list(ctx, "job_posting_id = $1", jobPostingID, minScore, limit)
}

// ListForCompany returns the matches across all of a company user's postings, best first.
func (r *MatchResultsRepository) ListForCompany(ctx context.Context, companyUserID int64, minScore float64, limit int) ([]*models.MatchResult, error) {
	return r.list(ctx, "company_user_id = $1", companyUserID, minScore, limit)
}

// CountForTalent returns the number of materialized matches for a talent.
func (r *MatchResultsRepository) CountForTalent(ctx context.Context, talentUserID int64) (int64, error) {
	var n int64

	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM match_results WHERE talent_user_id = $1`, talentUserID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count talent match results: %w", err)
	}

	return n, nil
}

// CountForJobPosting returns the number of materialized matches for a posting.
func (r *MatchResultsRepository) CountForJobPosting(ctx context.Context, jobPostingID int64) (int64, error) {
	var n int64

	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM match_results WHERE job_posting_id = $1`, jobPostingID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count job posting match results: %w", err)
	}

	return n, nil
}

// DeleteByVectorID removes every result referencing the given vector row on
// either side. Called when a matching vector is deleted.
func (r *MatchResultsRepository) DeleteByVectorID(ctx context.Context, vectorID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM match_results WHERE talent_vector_id = $1 OR company_vector_id = $1`, vectorID)
	if err != nil {
		return fmt.Errorf("delete match results by vector: %w", err)
	}

	return nil
}
