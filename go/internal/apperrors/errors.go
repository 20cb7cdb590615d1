// Package apperrors declares the error kinds returned across the roster
// services. Callers classify with errors.Is; messages carry the detail.
package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrValidation       = errors.New("validation failed")
	ErrCaptainConflict  = errors.New("captain conflict")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidStatus is a validation error for an unknown team status.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrValidation)

	// ErrStaleWrite is returned when an update lost an optimistic version check.
	ErrStaleWrite = errors.New("stale write")
	// ErrSyncInProgress is returned when another instance holds the sync lock.
	ErrSyncInProgress = errors.New("roster sync already in progress")
)

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound for an entity kind and id.
func NotFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

// CaptainConflict reports that userID already captains otherTeamID.
func CaptainConflict(userID, otherTeamID uuid.UUID) error {
	return fmt.Errorf("%w: user %s already captains team %s", ErrCaptainConflict, userID, otherTeamID)
}

// PartialFailure collects per-entity failures of a cascading operation.
type PartialFailure struct {
	Op     string
	Failed map[uuid.UUID]error
}

func (e *PartialFailure) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for id, err := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", id, err))
	}
	return fmt.Sprintf("%s partially failed for %d entities: %s", e.Op, len(e.Failed), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures so errors.Is sees e.g. ErrStoreUnavailable.
func (e *PartialFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// Code maps an error kind to the connect status code the services return.
func Code(err error) connect.Code {
	var partial *PartialFailure
	switch {
	case errors.Is(err, ErrUnauthorized):
		return connect.CodePermissionDenied
	case errors.Is(err, ErrValidation):
		return connect.CodeInvalidArgument
	case errors.Is(err, ErrCaptainConflict):
		return connect.CodeAlreadyExists
	case errors.Is(err, ErrNotFound):
		return connect.CodeNotFound
	case errors.As(err, &partial):
		return connect.CodeDataLoss
	case errors.Is(err, ErrStoreUnavailable):
		return connect.CodeUnavailable
	case errors.Is(err, ErrStaleWrite):
		return connect.CodeAborted
	case errors.Is(err, ErrSyncInProgress):
		return connect.CodeFailedPrecondition
	}
	return connect.CodeInternal
}

// ToConnect wraps err as a connect error with the mapped code.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	return connect.NewError(Code(err), err)
}
