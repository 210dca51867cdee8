package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"vellum/internal/domain"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "not found",
			err:        &domain.NotFoundError{Message: "document x not found"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "validation sentinel",
			err:        fmt.Errorf("%w: cannot complete", domain.ErrValidation),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation with fields",
			err:        &domain.ValidationError{Message: "bad payload", Fields: map[string]string{"client.name": "required"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "conflict",
			err:        &domain.ConflictError{DraftVersion: 1, CurrentVersion: 3},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "tenant mismatch",
			err:        &domain.TenantMismatchError{TenantID: "t", ResourceID: "r"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "lock timeout",
			err:        &domain.TransactionTimeoutError{Message: "could not lock"},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "duplicate sequence stays internal",
			err:        &domain.DuplicateSequenceError{Number: "CON-000001"},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type = %s, want application/problem+json", ct)
			}
		})
	}
}

func TestHandleErrorConflictCarriesVersions(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, &domain.ConflictError{
		DraftVersion:   2,
		CurrentVersion: 5,
		DivergedFields: []string{"client.name", "notes.text"},
	})

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["draft_version"] != float64(2) || body["current_version"] != float64(5) {
		t.Errorf("versions = %v/%v, want 2/5", body["draft_version"], body["current_version"])
	}
	diverged, ok := body["diverged_fields"].([]interface{})
	if !ok || len(diverged) != 2 {
		t.Errorf("diverged_fields = %v, want two entries", body["diverged_fields"])
	}
}

func TestHandleErrorValidationCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, &domain.ValidationError{
		Message: "payload validation failed",
		Fields:  map[string]string{"billing.total": "cannot be negative"},
	})

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	fields, ok := body["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("fields = %v, want map", body["fields"])
	}
	if fields["billing.total"] != "cannot be negative" {
		t.Errorf("fields = %v", fields)
	}
}

func TestHandleErrorTimeoutSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, &domain.TransactionTimeoutError{Message: "could not lock document in time"})

	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
}

func TestHandleErrorTenantMismatchHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, &domain.TenantMismatchError{TenantID: "tenant-a", ResourceID: "doc-1"})

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// Neither the tenant nor the resource leaks to the caller.
	if detail, _ := body["detail"].(string); detail != "access denied" {
		t.Errorf("detail = %q, want access denied", detail)
	}
}
