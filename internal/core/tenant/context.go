package tenant

import (
	"context"
	"errors"
)

// ErrNoTenantInContext is returned when a request carries no tenant.
var ErrNoTenantInContext = errors.New("tenant not found in context")

type tenantKey struct{}

// WithID stores the tenant ID in context.
func WithID(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, tenantKey{}, id)
}

// FromContext retrieves the tenant ID from context.
func FromContext(ctx context.Context) (ID, error) {
	id, ok := ctx.Value(tenantKey{}).(ID)
	if !ok || id.IsNil() {
		return NilID, ErrNoTenantInContext
	}
	return id, nil
}

// IDString returns the tenant ID or empty string.
func IDString(ctx context.Context) string {
	if id, err := FromContext(ctx); err == nil {
		return id.String()
	}
	return ""
}
