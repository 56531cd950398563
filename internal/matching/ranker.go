// Package matching ranks candidate entities against a reference entity by
// weighted per-facet cosine similarity.
//
// Similarity is computed in one batched pass per facet over the whole candidate
// set rather than candidate by candidate; with hundreds to low thousands of
// candidates per call this is the hot path.
package matching

import (
	"log/slog"
	"math"
	"sort"

	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/scoring"
)

// Candidate is one entity to be ranked: its external id and up to six optional
// facet vectors. A nil facet entry means no signal for that facet.
type Candidate struct {
	ID      int64
	Vectors map[models.Facet][]float32
}

// Row is one ranked candidate. Facets holds 0-100 scores only for facets that
// were actually scored; masked facets are omitted, not reported as 0.
type Row struct {
	ID      int64                    `json:"id"`
	Overall float64                  `json:"overall"`
	Facets  map[models.Facet]float64 `json:"facets"`
}

// facetSims holds one facet's similarity column across the candidate batch.
// masked[i] marks candidate i as carrying no usable signal for this facet.
type facetSims struct {
	cos    []float64
	masked []bool
}

// computeSims runs the batched similarity pass: one sweep per facet over all
// candidates, masking out candidates whose facet is absent, zero-norm, or of a
// different dimensionality than the reference. A single malformed candidate
// never aborts the batch.
func computeSims(reference map[models.Facet][]float32, candidates []Candidate) map[models.Facet]facetSims {
	n := len(candidates)
	sims := make(map[models.Facet]facetSims, len(models.Facets))

	for _, facet := range models.Facets {
		col := facetSims{
			cos:    make([]float64, n),
			masked: make([]bool, n),
		}

		ref := reference[facet]
		refNorm := norm(ref)

		if ref == nil || refNorm == 0 {
			for i := range col.masked {
				col.masked[i] = true
			}

			sims[facet] = col

			continue
		}

		invRefNorm := 1.0 / refNorm

		for i, candidate := range candidates {
			vec := candidate.Vectors[facet]
			if vec == nil {
				col.masked[i] = true

				continue
			}

			if len(vec) != len(ref) {
				slog.Warn("facet dimension mismatch, masking candidate",
					"facet", facet,
					"candidate_id", candidate.ID,
					"expected", len(ref),
					"received", len(vec),
				)

				col.masked[i] = true

				continue
			}

			var dot, sq float64
			for j, x := range vec {
				dot += float64(x) * float64(ref[j])
				sq += float64(x) * float64(x)
			}

			if sq == 0 {
				col.masked[i] = true

				continue
			}

			col.cos[i] = clamp(dot * invRefNorm / math.Sqrt(sq))
		}

		sims[facet] = col
	}

	return sims
}

// fuseBatch turns the per-facet similarity columns into per-candidate overall
// scores and per-facet 0-100 score columns, renormalizing weights over the
// facets each candidate actually has.
func fuseBatch(sims map[models.Facet]facetSims, n int, weights scoring.WeightMap) ([]float64, []map[models.Facet]float64) {
	overall := make([]float64, n)
	facets := make([]map[models.Facet]float64, n)

	for i := 0; i < n; i++ {
		facetCos := make(map[models.Facet]float64)
		facetScores := make(map[models.Facet]float64)

		for _, facet := range models.Facets {
			col := sims[facet]
			if col.masked[i] {
				continue
			}

			facetCos[facet] = col.cos[i]
			facetScores[facet] = scoring.ToPercent(col.cos[i])
		}

		overall[i] = scoring.Fuse(facetCos, weights)
		facets[i] = facetScores
	}

	return overall, facets
}

// order returns candidate indices sorted by overall score descending, candidate
// id ascending on ties. The tie-break keeps ordering deterministic across runs
// and across pagination windows, so offset paging never skips or duplicates a
// row when scores tie.
func order(overall []float64, candidates []Candidate) []int {
	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}

	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if overall[ia] != overall[ib] {
			return overall[ia] > overall[ib]
		}

		return candidates[ia].ID < candidates[ib].ID
	})

	return idx
}

func buildRows(indices []int, candidates []Candidate, overall []float64, facets []map[models.Facet]float64) []Row {
	rows := make([]Row, 0, len(indices))

	for _, i := range indices {
		rows = append(rows, Row{
			ID:      candidates[i].ID,
			Overall: overall[i],
			Facets:  facets[i],
		})
	}

	return rows
}

// TopK ranks candidates against the reference and returns the best k.
// k <= 0 or an empty candidate set returns an empty slice without error.
func TopK(reference map[models.Facet][]float32, candidates []Candidate, weights scoring.WeightMap, k int) []Row {
	if k <= 0 || len(candidates) == 0 {
		return []Row{}
	}

	sims := computeSims(reference, candidates)
	overall, facets := fuseBatch(sims, len(candidates), weights)
	ordered := order(overall, candidates)

	if k < len(ordered) {
		ordered = ordered[:k]
	}

	return buildRows(ordered, candidates, overall, facets)
}

// All ranks every candidate and returns the stably-ordered slice
// [offset, offset+limit) plus the total candidate count. limit <= 0 or an
// offset past the end yields an empty page with the correct total.
func All(reference map[models.Facet][]float32, candidates []Candidate, weights scoring.WeightMap, limit, offset int) ([]Row, int) {
	total := len(candidates)
	if total == 0 || limit <= 0 {
		return []Row{}, total
	}

	sims := computeSims(reference, candidates)
	overall, facets := fuseBatch(sims, total, weights)
	ordered := order(overall, candidates)

	start := offset
	if start < 0 {
		start = 0
	}

	if start >= total {
		return []Row{}, total
	}

	end := start + limit
	if end > total {
		end = total
	}

	return buildRows(ordered[start:end], candidates, overall, facets), total
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	return math.Sqrt(sum)
}

func clamp(v float64) float64 {
	return math.Max(-1.0, math.Min(1.0, v))
}
