package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/talentlink/matchengine/internal/apperrors"
	"github.com/talentlink/matchengine/internal/embeddings"
	"github.com/talentlink/matchengine/internal/models"
	"github.com/talentlink/matchengine/internal/vector"
)

// DefaultModel is the embedding model recorded on rows when callers don't
// specify one.
const DefaultModel = "text-embedding-3-small"

// SyncStatus classifies the outcome of one sync call.
type SyncStatus string

const (
	SyncDisabled SyncStatus = "disabled"
	SyncSkipped  SyncStatus = "skipped"
	SyncApplied  SyncStatus = "applied"
	SyncPartial  SyncStatus = "partial"
	SyncError    SyncStatus = "error"
)

// SyncResult summarizes one facet sync: which facets changed, which were
// rejected and why, and non-fatal warnings such as normalization drift.
// Partial success is reported per facet rather than as an all-or-nothing bool.
type SyncResult struct {
	Status        SyncStatus        `json:"status"`
	DurationMS    float64           `json:"duration_ms"`
	ChangedFacets []models.Facet    `json:"changed_facets,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Message       string            `json:"message,omitempty"`
	Rematch       *RematchSummary   `json:"rematch,omitempty"`
}

// EmbeddingSyncService validates facet payloads and applies them to the store.
// The sync flag and the rematcher are injected at construction so callers and
// tests can build an instance with sync or the sweep disabled without touching
// shared state.
type EmbeddingSyncService struct {
	vectors   VectorsRepository
	embedder  embeddings.Client // nil when no provider is configured
	rematcher Rematcher         // nil disables the auto-rematch sweep
	enabled   bool
	model     string
	dim       int
	tolerance float64
}

// NewEmbeddingSyncService creates an embedding sync service.
// embedder and rematcher may be nil.
func NewEmbeddingSyncService(
	vectors VectorsRepository,
	embedder embeddings.Client,
	rematcher Rematcher,
	enabled bool,
	model string,
	dim int,
) *EmbeddingSyncService {
	if model == "" {
		model = DefaultModel
	}

	if dim <= 0 {
		dim = vector.DefaultDim
	}

	return &EmbeddingSyncService{
		vectors:   vectors,
		embedder:  embedder,
		rematcher: rematcher,
		enabled:   enabled,
		model:     model,
		dim:       dim,
		tolerance: vector.DefaultTolerance,
	}
}

// UpsertFacets validates the supplied raw facet payloads and applies them to
// the row addressed by (kind, entityID). Facets mapped to nil are cleared;
// unknown keys are ignored. A payload that fails vector validation but carries
// raw text falls back to the embedding provider; an absent provider marks the
// facet unfulfillable rather than failing the call. When any facet changed,
// the auto-rematch sweep runs and its summary is attached.
func (s *EmbeddingSyncService) UpsertFacets(
	ctx context.Context,
	kind models.EntityKind,
	entityID, ownerUserID int64,
	raw map[string]any,
) SyncResult {
	if !s.enabled {
		return SyncResult{Status: SyncDisabled, Message: "sync disabled by flag"}
	}

	start := time.Now()

	pending := make(map[models.Facet][]float32)
	warnings := []string{}
	facetErrors := map[string]string{}

	for name, payload := range raw {
		if !models.IsFacet(name) {
			continue
		}

		facet := models.Facet(name)

		if payload == nil {
			pending[facet] = nil

			continue
		}

		result, err := s.resolvePayload(ctx, facet, payload)
		if err != nil {
			facetErrors[name] = reasonForSyncError(err)

			continue
		}

		if result.WasNormalized {
			warnings = append(warnings, name+":normalized")
			slog.Warn("normalized non-unit embedding",
				"kind", kind, "entity_id", entityID, "facet", name)
		}

		pending[facet] = result.Vector
	}

	if len(pending) == 0 && len(facetErrors) == 0 {
		return SyncResult{
			Status:     SyncSkipped,
			DurationMS: durationMS(start),
			Message:    "no facets provided",
		}
	}

	if kind == models.KindJob && ownerUserID == 0 {
		slog.Warn("skipping company embedding sync: owner user id missing",
			"job_posting_id", entityID)

		if len(facetErrors) == 0 {
			facetErrors["job"] = "owner_user_id_missing"
		}

		return SyncResult{
			Status:     SyncError,
			DurationMS: durationMS(start),
			Errors:     facetErrors,
			Message:    "owner user id required for company embedding sync",
		}
	}

	row, changed, err := s.vectors.UpsertFacets(ctx, kind, entityID, ownerUserID, s.model, s.dim, pending)
	if err != nil {
		slog.Error("embedding sync failed",
			"kind", kind, "entity_id", entityID, "error", err)

		return SyncResult{
			Status:     SyncError,
			DurationMS: durationMS(start),
			Errors:     facetErrors,
			Warnings:   warnings,
			Message:    "failed to apply embedding updates",
		}
	}

	if len(changed) == 0 && len(facetErrors) > 0 {
		slog.Error("embedding sync applied nothing",
			"kind", kind, "entity_id", entityID, "errors", facetErrors)

		return SyncResult{
			Status:     SyncError,
			DurationMS: durationMS(start),
			Errors:     facetErrors,
			Warnings:   warnings,
			Message:    "failed to apply embedding updates",
		}
	}

	status := SyncApplied
	if len(facetErrors) > 0 || len(warnings) > 0 {
		status = SyncPartial
	}

	result := SyncResult{
		Status:        status,
		ChangedFacets: changed,
		Warnings:      warnings,
		Errors:        facetErrors,
	}

	if len(changed) > 0 && s.rematcher != nil {
		summary := s.rematcher.Rematch(ctx, row)
		result.Rematch = &summary
	}

	result.DurationMS = durationMS(start)

	logFn := slog.Info
	if status != SyncApplied {
		logFn = slog.Warn
		result.Message = "completed with warnings"
	}

	logFn("embedding sync completed",
		"kind", kind,
		"entity_id", entityID,
		"changed_facets", changed,
		"warnings", warnings,
		"errors", facetErrors,
		"duration_ms", result.DurationMS,
	)

	return result
}

// ClearFacets nulls out every stored facet of the addressed row.
func (s *EmbeddingSyncService) ClearFacets(ctx context.Context, kind models.EntityKind, entityID int64) SyncResult {
	if !s.enabled {
		return SyncResult{Status: SyncDisabled, Message: "sync disabled by flag"}
	}

	start := time.Now()

	_, changed, err := s.vectors.ClearAllFacets(ctx, kind, entityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return SyncResult{
				Status:     SyncSkipped,
				DurationMS: durationMS(start),
				Message:    "embedding row not found",
			}
		}

		slog.Error("clearing embeddings failed",
			"kind", kind, "entity_id", entityID, "error", err)

		return SyncResult{
			Status:     SyncError,
			DurationMS: durationMS(start),
			Message:    "failed to clear embeddings",
		}
	}

	if len(changed) == 0 {
		return SyncResult{
			Status:     SyncSkipped,
			DurationMS: durationMS(start),
			Message:    "no embedding facets to clear",
		}
	}

	slog.Info("cleared embeddings",
		"kind", kind, "entity_id", entityID, "changed_facets", changed)

	return SyncResult{
		Status:        SyncApplied,
		DurationMS:    durationMS(start),
		ChangedFacets: changed,
	}
}

// resolvePayload validates a facet payload as a vector; when that fails and
// the payload carries raw text, it falls back to the embedding provider.
func (s *EmbeddingSyncService) resolvePayload(ctx context.Context, facet models.Facet, payload any) (vector.Result, error) {
	result, err := vector.Validate(payload, s.dim, s.tolerance)
	if err == nil {
		return result, nil
	}

	if !errors.Is(err, apperrors.ErrValidation) {
		return vector.Result{}, err
	}

	text := extractTextPayload(payload)
	if text == "" {
		return vector.Result{}, err
	}

	if s.embedder == nil {
		slog.Warn("embedding pipeline not configured; skipping text embedding",
			"facet", facet, "model", s.model, "dim", s.dim)

		return vector.Result{}, apperrors.NewEmbeddingUnavailableError("")
	}

	embedded, embedErr := s.embedder.Embed(ctx, text)
	if embedErr != nil || embedded == nil {
		slog.Warn("embedding provider failed for text payload",
			"facet", facet, "error", embedErr)

		return vector.Result{}, apperrors.NewEmbeddingUnavailableError("")
	}

	return vector.Validate(embedded, s.dim, s.tolerance)
}

// extractTextPayload pulls embeddable raw text out of a payload: a bare string,
// or an object with a text/raw_text/value field.
func extractTextPayload(payload any) string {
	switch value := payload.(type) {
	case string:
		return strings.TrimSpace(value)
	case map[string]any:
		for _, key := range []string{"text", "raw_text", "value"} {
			if text, ok := value[key].(string); ok {
				if trimmed := strings.TrimSpace(text); trimmed != "" {
					return trimmed
				}
			}
		}
	}

	return ""
}

func reasonForSyncError(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrEmbeddingUnavailable):
		return "embedding_pipeline_unavailable"
	case errors.Is(err, apperrors.ErrValidation):
		return err.Error()
	default:
		return "unsupported_payload"
	}
}

func durationMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
