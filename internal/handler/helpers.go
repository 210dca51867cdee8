package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"vellum/internal/domain"
	"vellum/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr   *domain.ConflictError
		validationErr *domain.ValidationError
		mismatchErr   *domain.TenantMismatchError
		timeoutErr    *domain.TransactionTimeoutError
	)

	switch {
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"draft_version":   conflictErr.DraftVersion,
			"current_version": conflictErr.CurrentVersion,
			"diverged_fields": conflictErr.DivergedFields,
		})
	case errors.As(err, &validationErr):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Message, map[string]interface{}{
			"fields": validationErr.Fields,
		})
	case errors.As(err, &mismatchErr):
		// The detailed message is for the security log, not the caller
		httputil.RespondError(w, http.StatusForbidden, "access denied")
	case errors.As(err, &timeoutErr):
		w.Header().Set("Retry-After", "1")
		httputil.RespondError(w, http.StatusServiceUnavailable, timeoutErr.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// documentID extracts and validates the {id} path segment
func documentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return "", false
	}
	return id, true
}

// versionNumber extracts and validates the {number} path segment
func versionNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || n < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "invalid version number")
		return 0, false
	}
	return n, true
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
