package middleware

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// principalKey is the key used to store the authenticated principal.
const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying the acting principal.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromContext retrieves the authenticated principal from the request.
// It returns false when the request was not authenticated.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	p, ok := c.Request.Context().Value(principalKey).(domain.Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
