// internal/app/system/apperr/apperr.go

// Package apperr defines the error taxonomy returned by the lifecycle
// services. Callers classify failures with errors.Is against the sentinel
// kinds; the HTTP boundary maps each kind to a status code. Lifecycle code
// never panics its way out of a bad transition.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrValidation means malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrPermissionDenied means a role, ownership, or verification gate failed.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateApplication means an active application already exists for
	// the (student, position) pair.
	ErrDuplicateApplication = errors.New("active application already exists")

	// ErrConflict means a uniqueness invariant other than the active-pair one
	// was violated, or an edit-locked record was targeted.
	ErrConflict = errors.New("conflict")

	// ErrCapacityExceeded means the position already has max_students approved
	// applications at approval time.
	ErrCapacityExceeded = errors.New("position capacity exceeded")

	// ErrInvalidTransition means the requested state change is not legal from
	// the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotEligible means the applicability policy is unmet.
	ErrNotEligible = errors.New("not eligible")
)

// E wraps a sentinel kind with human-readable context. The kind remains
// matchable with errors.Is.
func E(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

// Kind returns the taxonomy sentinel err belongs to, or nil when err is not
// an application error (infrastructure failures stay unclassified).
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrPermissionDenied,
		ErrNotFound,
		ErrDuplicateApplication,
		ErrConflict,
		ErrCapacityExceeded,
		ErrInvalidTransition,
		ErrNotEligible,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
