// Package apperrors provides sentinel and custom error types for the application.
package apperrors

import (
	"fmt"
	"strings"
)

// ErrNotFound represents a "not found" error.
// Use when a requested resource doesn't exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// ErrValidation represents a validation error.
// Use when an embedding payload or request input fails validation.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures. Field names the
// facet or request field the payload failed on, when known.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}

// ErrRoleMismatch is the sentinel for pairwise matches attempted across two
// vectors of the same role, or a candidate whose role is not the expected opposite.
var ErrRoleMismatch = &RoleMismatchError{}

// RoleMismatchError is a sentinel error for role precondition failures.
type RoleMismatchError struct {
	SourceRole string
	TargetRole string
	Message    string
}

// NewRoleMismatchError creates a RoleMismatchError for the given pair of roles.
func NewRoleMismatchError(sourceRole, targetRole, message string) *RoleMismatchError {
	return &RoleMismatchError{SourceRole: sourceRole, TargetRole: targetRole, Message: message}
}

// Error implements the error interface.
func (e *RoleMismatchError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.SourceRole != "" || e.TargetRole != "" {
		return fmt.Sprintf("cannot match roles %q and %q", e.SourceRole, e.TargetRole)
	}

	return "role mismatch"
}

// Is implements the error interface for error comparison.
func (e *RoleMismatchError) Is(target error) bool {
	_, ok := target.(*RoleMismatchError)

	return ok
}

// ErrIncompleteVector is the sentinel for strict pairwise matches invoked on a
// vector row missing one or more of the six required facets.
var ErrIncompleteVector = &IncompleteVectorError{}

// IncompleteVectorError is a sentinel error reporting which facets are missing.
type IncompleteVectorError struct {
	Label   string
	Missing []string
}

// NewIncompleteVectorError creates an IncompleteVectorError for the labeled side.
func NewIncompleteVectorError(label string, missing []string) *IncompleteVectorError {
	return &IncompleteVectorError{Label: label, Missing: missing}
}

// Error implements the error interface.
func (e *IncompleteVectorError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s vector is missing facets: %s", e.Label, strings.Join(e.Missing, ", "))
	}

	return "incomplete vector"
}

// Is implements the error interface for error comparison.
func (e *IncompleteVectorError) Is(target error) bool {
	_, ok := target.(*IncompleteVectorError)

	return ok
}

// ErrDimensionMismatch is the sentinel for two vectors of different lengths
// being compared. This is a caller or data bug; vectors are never truncated or
// padded to fit.
var ErrDimensionMismatch = &DimensionMismatchError{}

// DimensionMismatchError is a sentinel error for vector length disagreements.
type DimensionMismatchError struct {
	Facet string
	Want  int
	Got   int
}

// NewDimensionMismatchError creates a DimensionMismatchError for the given facet.
func NewDimensionMismatchError(facet string, want, got int) *DimensionMismatchError {
	return &DimensionMismatchError{Facet: facet, Want: want, Got: got}
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	if e.Facet != "" {
		return fmt.Sprintf("facet %s: vector dimension mismatch: %d vs %d", e.Facet, e.Want, e.Got)
	}

	return fmt.Sprintf("vector dimension mismatch: %d vs %d", e.Want, e.Got)
}

// Is implements the error interface for error comparison.
func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)

	return ok
}

// ErrEmbeddingUnavailable is the sentinel for raw-text facet payloads that could
// not be embedded because no embedding provider is configured or the provider
// returned nothing. This is a normal, non-fatal outcome for the sync path.
var ErrEmbeddingUnavailable = &EmbeddingUnavailableError{}

// EmbeddingUnavailableError is a sentinel error for unfulfillable text payloads.
type EmbeddingUnavailableError struct {
	Message string
}

// NewEmbeddingUnavailableError creates an EmbeddingUnavailableError with a custom message.
func NewEmbeddingUnavailableError(message string) *EmbeddingUnavailableError {
	return &EmbeddingUnavailableError{Message: message}
}

// Error implements the error interface.
func (e *EmbeddingUnavailableError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "embedding provider unavailable"
}

// Is implements the error interface for error comparison.
func (e *EmbeddingUnavailableError) Is(target error) bool {
	_, ok := target.(*EmbeddingUnavailableError)

	return ok
}
