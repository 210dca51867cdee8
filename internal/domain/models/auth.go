package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims represents the JWT claims issued by the upstream identity
// provider. The core never validates credentials itself; it only consumes the
// tenant and actor identity resolved from a verified token.
type AccessClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	TenantID             string `json:"tenant_id"`
	TenantRole           string `json:"tenant_role"` // owner, member, viewer
	SessionID            string `json:"session_id"`
}

// GetActorID returns the actor ID from the JWT subject claim.
func (c *AccessClaims) GetActorID() string {
	return c.Subject
}

// TenantContext is the per-request identity every core operation runs under.
// Every storage access is scoped by TenantID; crossing a tenant boundary is a
// fatal error, never a silent filter.
type TenantContext struct {
	TenantID string
	ActorID  string
	Role     string
}

// TenantContextFromClaims builds the request context from verified claims.
func TenantContextFromClaims(c *AccessClaims) TenantContext {
	return TenantContext{
		TenantID: c.TenantID,
		ActorID:  c.GetActorID(),
		Role:     c.TenantRole,
	}
}
