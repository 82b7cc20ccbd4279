package user

import (
	"context"

	"tenantpress/internal/core/tx"
)

// Repository persists users of the handle's tenant.
type Repository[R tx.ReadOnly, W tx.ReadWrite] interface {
	// FindByID returns nil, nil when no user matches the tenant and id.
	FindByID(ctx context.Context, h R, id ID) (*Dto, error)

	// CreateActive registers an active user and returns its id.
	CreateActive(ctx context.Context, h W, in CreateActive) (ID, error)

	// Delete turns an active user into a deleted one.
	// Returns NOT_FOUND if no active user matches the tenant and id.
	Delete(ctx context.Context, h W, id ID) error
}
