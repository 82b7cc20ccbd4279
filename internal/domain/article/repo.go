package article

import (
	"context"

	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
)

// Repository persists articles and comments of the handle's tenant.
// Every query also filters by h.TenantID() on top of row-level security.
type Repository[R tx.ReadOnly, W tx.ReadWrite] interface {
	// FindByID returns nil, nil when no article matches the tenant and id.
	FindByID(ctx context.Context, h R, id ID) (*Dto, error)

	// FindMany lists the tenant's articles, newest first.
	FindMany(ctx context.Context, h R, tenantID tenant.ID) ([]Dto, error)

	Create(ctx context.Context, h W, in Create) (ID, error)

	// Delete fails with NOT_FOUND when no row matched for the tenant.
	Delete(ctx context.Context, h W, id ID) error

	AddComment(ctx context.Context, h W, in CommentCreate) (CommentID, error)
}
