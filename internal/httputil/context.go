package httputil

import (
	"context"
	"net/http"

	"vellum/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	tenantContextKey contextKey = "tenantContext"
)

// WithTenantContext adds the authenticated tenant context to the request
func WithTenantContext(r *http.Request, tc models.TenantContext) *http.Request {
	ctx := context.WithValue(r.Context(), tenantContextKey, tc)
	return r.WithContext(ctx)
}

// GetTenantContext retrieves the tenant context from the request.
// The zero value means the request never passed authentication.
func GetTenantContext(r *http.Request) models.TenantContext {
	tc, _ := r.Context().Value(tenantContextKey).(models.TenantContext)
	return tc
}
