package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tenantpress/internal/core/apperror"
	appctx "tenantpress/internal/core/context"
	"tenantpress/internal/core/tenant"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.Principal, error)
}

// Auth middleware validates bearer tokens. It must run after Tenant:
// the token's tenant has to match X-Tenant-ID.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		principal, err := validator.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token").WithCause(err))
			c.Abort()
			return
		}

		requested := tenant.IDString(c.Request.Context())
		if requested == "" || !strings.EqualFold(requested, principal.TenantID) {
			_ = c.Error(apperror.NewTenantMismatch(requested, principal.TenantID))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(appctx.WithPrincipal(c.Request.Context(), principal))
		c.Set("user_id", principal.UserID)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
