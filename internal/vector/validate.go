// Package vector validates and unit-normalizes raw embedding payloads.
//
// Validation runs once at ingest so that downstream cosine consumers can assume
// unit-length operands and skip re-normalizing on every comparison.
package vector

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/talentlink/matchengine/internal/apperrors"
)

const (
	// DefaultDim is the expected embedding dimensionality
	// (text-embedding-3-small).
	DefaultDim = 1536

	// DefaultTolerance is the relative/absolute tolerance applied during
	// strict validation of the payload's own norm.
	DefaultTolerance = 1e-5

	// BulkTolerance is the looser tolerance accepted in bulk-ingest and
	// legacy-migration contexts.
	BulkTolerance = 1e-2
)

// Result is a validated, unit-normalized embedding. WasNormalized is set when
// the input's own norm deviated from 1.0 beyond tolerance and the vector was
// rescaled; callers log the drift instead of failing the request.
type Result struct {
	Vector        []float32
	WasNormalized bool
}

// Extract pulls the raw float32 slice out of the supported payload shapes,
// tried in order:
//
//  1. []float32
//  2. []float64
//  3. []any of numbers (decoded JSON arrays)
//  4. map[string]any carrying an "embedding" key (recursively extracted)
//  5. string / []byte holding JSON for any of the above
//
// Anything else fails with a ValidationError.
func Extract(payload any) ([]float32, error) {
	switch value := payload.(type) {
	case []float32:
		out := make([]float32, len(value))
		copy(out, value)

		return out, nil
	case []float64:
		out := make([]float32, len(value))
		for i, f := range value {
			out[i] = float32(f)
		}

		return out, nil
	case []any:
		out := make([]float32, len(value))

		for i, elem := range value {
			f, ok := toFloat(elem)
			if !ok {
				return nil, apperrors.NewValidationError("", fmt.Sprintf("embedding element %d is not numeric", i))
			}

			out[i] = float32(f)
		}

		return out, nil
	case map[string]any:
		inner, ok := value["embedding"]
		if !ok {
			return nil, apperrors.NewValidationError("", "embedding payload object must carry an \"embedding\" key")
		}

		return Extract(inner)
	case json.RawMessage:
		return extractJSON(string(value))
	case []byte:
		return extractJSON(string(value))
	case string:
		return extractJSON(value)
	case nil:
		return nil, apperrors.NewValidationError("", "embedding payload is nil")
	default:
		return nil, apperrors.NewValidationError("", "embedding payload must be a numeric list or {\"embedding\": [...]}")
	}
}

func extractJSON(raw string) ([]float32, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("", "embedding payload is empty")
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, apperrors.NewValidationError("", "embedding payload is not valid JSON")
	}

	switch decoded.(type) {
	case []any, map[string]any:
		return Extract(decoded)
	default:
		return nil, apperrors.NewValidationError("", "embedding JSON must decode to a list or object")
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	}

	return 0, false
}

// Norm returns the L2 norm of v, accumulated in float64.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	return math.Sqrt(sum)
}

// Validate checks a raw embedding payload against the expected dimensionality
// and returns it unit-normalized. It rejects wrong lengths, non-finite
// elements, and zero-norm vectors; it never silently coerces a malformed
// payload into a different value.
func Validate(payload any, dim int, tolerance float64) (Result, error) {
	raw, err := Extract(payload)
	if err != nil {
		return Result{}, err
	}

	if len(raw) != dim {
		return Result{}, apperrors.NewValidationError("",
			fmt.Sprintf("expected dimension %d, received %d", dim, len(raw)))
	}

	for i, x := range raw {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Result{}, apperrors.NewValidationError("",
				fmt.Sprintf("embedding contains a non-finite value at index %d", i))
		}
	}

	norm := Norm(raw)
	if norm == 0 {
		return Result{}, apperrors.NewValidationError("", "embedding norm is zero")
	}

	wasNormalized := !withinTolerance(norm, 1.0, tolerance)
	if wasNormalized {
		inv := float32(1.0 / norm)
		for i := range raw {
			raw[i] *= inv
		}
	}

	return Result{Vector: raw, WasNormalized: wasNormalized}, nil
}

// withinTolerance reports whether a and b agree within tol, applied both
// relatively and absolutely (math.isclose semantics).
func withinTolerance(a, b, tol float64) bool {
	diff := math.Abs(a - b)

	return diff <= tol*math.Max(math.Abs(a), math.Abs(b)) || diff <= tol
}
