package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a document, draft or version is absent within
	// the caller's tenant scope.
	NotFoundError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("version conflict")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrTenantMismatch    = errors.New("tenant mismatch")
	ErrTimeout           = errors.New("transaction timeout")
	ErrDuplicateSequence = errors.New("duplicate sequence number")
)

// ValidationError indicates a payload failed required-section or type checks.
// Fields carries field-level messages keyed by "section.field" paths.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports that a draft's baseline version is behind the
// document's current version. Promotion is rejected; resolution (force
// overwrite, re-merge, discard) belongs to the caller.
type ConflictError struct {
	DraftVersion   int
	CurrentVersion int
	DivergedFields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("draft baseline version %d is behind current version %d",
		e.DraftVersion, e.CurrentVersion)
}

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// TenantMismatchError indicates an access attempt across a tenant boundary.
// This is a broken invariant, not expected user behavior: it is rejected
// outright and logged as a security-relevant event, never silently filtered.
type TenantMismatchError struct {
	TenantID   string
	ResourceID string
}

func (e *TenantMismatchError) Error() string {
	return fmt.Sprintf("tenant %s attempted access to resource %s owned by another tenant",
		e.TenantID, e.ResourceID)
}

func (e *TenantMismatchError) StatusCode() int { return http.StatusForbidden }

func (e *TenantMismatchError) Is(target error) bool {
	return target == ErrTenantMismatch
}

// TransactionTimeoutError indicates the document row lock could not be
// acquired within the configured window. Safe to retry with backoff: the
// whole critical section is one transaction, so nothing half-committed.
type TransactionTimeoutError struct {
	Message string
}

func (e *TransactionTimeoutError) Error() string { return e.Message }

func (e *TransactionTimeoutError) StatusCode() int { return http.StatusServiceUnavailable }

func (e *TransactionTimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// DuplicateSequenceError should be unreachable: the allocator's atomic
// increment guarantees distinct numbers, and the uniqueness constraint on the
// formatted document number is defense in depth. If it ever fires, the
// allocator has a programming defect.
type DuplicateSequenceError struct {
	Number string
}

func (e *DuplicateSequenceError) Error() string {
	return fmt.Sprintf("document number %s was allocated twice", e.Number)
}

func (e *DuplicateSequenceError) StatusCode() int { return http.StatusInternalServerError }

func (e *DuplicateSequenceError) Is(target error) bool {
	return target == ErrDuplicateSequence
}
