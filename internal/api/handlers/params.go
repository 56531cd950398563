package handlers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talentlink/matchengine/internal/models"
)

// pathEntity parses the {kind} and {id} segments of an entity-addressed route.
func pathEntity(r *http.Request) (models.EntityKind, int64, bool) {
	kind, ok := models.ParseEntityKind(chi.URLParam(r, "kind"))
	if !ok {
		return "", 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}

	return kind, id, true
}

// pathInt64 parses a single positive integer path segment.
func pathInt64(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// queryInt parses an integer query parameter, falling back to def when absent
// or malformed.
func queryInt(values url.Values, name string, def int) int {
	raw := values.Get(name)
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return value
}

// queryFloat parses a float query parameter, falling back to def when absent
// or malformed.
func queryFloat(values url.Values, name string, def float64) float64 {
	raw := values.Get(name)
	if raw == "" {
		return def
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}

	return value
}

// queryWeights collects per-facet weight overrides from "weights.<facet>"
// query parameters, e.g. ?weights.skills=2&weights.culture=0.5.
// Unknown facet names and malformed values are ignored.
func queryWeights(values url.Values) map[models.Facet]float64 {
	weights := make(map[models.Facet]float64)

	for _, facet := range models.Facets {
		raw := values.Get("weights." + string(facet))
		if raw == "" {
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		weights[facet] = value
	}

	if len(weights) == 0 {
		return nil
	}

	return weights
}

// round2 rounds a score to two decimal places for response payloads.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundFacetScores returns a copy of scores with each value rounded to two
// decimal places.
func roundFacetScores(scores map[models.Facet]float64) map[models.Facet]float64 {
	rounded := make(map[models.Facet]float64, len(scores))
	for facet, score := range scores {
		rounded[facet] = round2(score)
	}

	return rounded
}
