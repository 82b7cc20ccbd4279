package middleware

import (
	"github.com/gin-gonic/gin"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
)

// TenantHeader is the HTTP header for tenant identification.
const TenantHeader = "X-Tenant-ID"

// Tenant resolves the tenant from X-Tenant-ID and stores it in the
// request context. It does not touch the database: an unknown tenant
// simply sees no rows.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			_ = c.Error(
				apperror.NewValidation("tenant is required").
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}

		tenantID, err := tenant.ParseID(raw)
		if err != nil {
			appErr, _ := apperror.AsAppError(err)
			_ = c.Error(appErr.WithDetail("header", TenantHeader))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(tenant.WithID(c.Request.Context(), tenantID))
		c.Set("tenant_id", tenantID.String())

		c.Next()
	}
}

// TenantID returns the tenant resolved by the Tenant middleware.
func TenantID(c *gin.Context) (tenant.ID, error) {
	id, err := tenant.FromContext(c.Request.Context())
	if err != nil {
		return tenant.NilID, apperror.NewValidation("tenant is required").
			WithDetail("header", TenantHeader)
	}
	return id, nil
}
