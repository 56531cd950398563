// Package scoring computes cosine similarities and fuses per-facet similarities
// into 0-100 match scores.
package scoring

import (
	"math"

	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/vector"
)

// WeightMap assigns a non-negative weight to each facet. Built per request via
// ResolveWeights; never persisted.
type WeightMap map[models.Facet]float64

// ResolveWeights fills a client-supplied partial weight map out to the full
// facet set. Unspecified facets default to 1.0; non-positive weights resolve to
// 0. If every weight resolves to 0 the map falls back to all-1.0 so a score is
// always computable.
func ResolveWeights(partial map[models.Facet]float64) WeightMap {
	weights := make(WeightMap, len(models.Facets))
	allZero := true

	for _, facet := range models.Facets {
		w, ok := partial[facet]
		switch {
		case !ok:
			weights[facet] = 1.0
		case w > 0:
			weights[facet] = w
		default:
			weights[facet] = 0.0
		}

		if weights[facet] > 0 {
			allZero = false
		}
	}

	if allZero {
		for _, facet := range models.Facets {
			weights[facet] = 1.0
		}
	}

	return weights
}

// Cosine returns the cosine similarity of u and v, clamped to [-1, 1].
// Either operand having zero norm yields 0.0: no information means a neutral
// score, not an error. A length mismatch is a hard error; that is a caller bug,
// not a score of zero.
func Cosine(u, v []float32) (float64, error) {
	if len(u) != len(v) {
		return 0, apperrors.NewDimensionMismatchError("", len(u), len(v))
	}

	var dot, uu, vv float64

	for i := range u {
		du, dv := float64(u[i]), float64(v[i])
		dot += du * dv
		uu += du * du
		vv += dv * dv
	}

	if uu == 0 || vv == 0 {
		return 0, nil
	}

	value := dot / (math.Sqrt(uu) * math.Sqrt(vv))
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, nil
	}

	return clamp(value), nil
}

// ToPercent maps a cosine in [-1, 1] onto [0, 100] affinely:
// -1 -> 0, 0 -> 50, 1 -> 100.
func ToPercent(cos float64) float64 {
	return (clamp(cos) + 1.0) * 50.0
}

// Fuse combines per-facet cosines into one 0-100 score as a weighted average
// over the facets actually present. Missing facets contribute neither numerator
// nor denominator, so absent data never drags the score toward zero. If no
// facet carries positive weight the result is 0, not an error.
func Fuse(facetCos map[models.Facet]float64, weights WeightMap) float64 {
	if len(facetCos) == 0 {
		return 0
	}

	var totalWeight, weightedSum float64

	for facet, similarity := range facetCos {
		w := weights[facet]
		if w <= 0 {
			continue
		}

		totalWeight += w
		weightedSum += w * similarity
	}

	if totalWeight == 0 {
		return 0
	}

	return ToPercent(weightedSum / totalWeight)
}

// PairScore is the result of scoring two entities' facet vector sets.
// Facets holds a 0-100 entry for each facet present on both sides; facets
// missing on either side are omitted entirely.
type PairScore struct {
	Overall float64
	Facets  map[models.Facet]float64
}

// ScorePair scores two facet vector sets over the canonical six facets.
// A facet absent on either side is skipped. A zero-norm vector on either side
// records a facet score of 0 and is excluded from fusion. A per-facet length
// mismatch aborts with a DimensionMismatchError.
func ScorePair(a, b map[models.Facet][]float32, weights WeightMap) (PairScore, error) {
	facetScores := make(map[models.Facet]float64)
	facetCos := make(map[models.Facet]float64)

	for _, facet := range models.Facets {
		va, vb := a[facet], b[facet]
		if va == nil || vb == nil {
			continue
		}

		if len(va) != len(vb) {
			return PairScore{}, apperrors.NewDimensionMismatchError(string(facet), len(va), len(vb))
		}

		if vector.Norm(va) == 0 || vector.Norm(vb) == 0 {
			facetScores[facet] = 0.0

			continue
		}

		cos, err := Cosine(va, vb)
		if err != nil {
			return PairScore{}, err
		}

		facetCos[facet] = cos
		facetScores[facet] = ToPercent(cos)
	}

	return PairScore{
		Overall: Fuse(facetCos, weights),
		Facets:  facetScores,
	}, nil
}

func clamp(v float64) float64 {
	return math.Max(-1.0, math.Min(1.0, v))
}
