package user

import (
	"context"
	"fmt"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
)

// Service implements user use cases on top of a tenant-scoped executor.
type Service[R tx.ReadOnly, W tx.ReadWrite] struct {
	exec tx.Executor[R, W]
	repo Repository[R, W]
}

// NewService creates a user service.
func NewService[R tx.ReadOnly, W tx.ReadWrite](exec tx.Executor[R, W], repo Repository[R, W]) *Service[R, W] {
	return &Service[R, W]{exec: exec, repo: repo}
}

// Get returns a user or NOT_FOUND.
func (s *Service[R, W]) Get(ctx context.Context, tenantID tenant.ID, id ID) (*Dto, error) {
	dto, err := tx.ReadOnlyResult(ctx, s.exec, tenantID, func(ctx context.Context, h R) (*Dto, error) {
		return s.repo.FindByID(ctx, h, id)
	})
	if err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, apperror.NewNotFound("user", id.Int64())
	}
	return dto, nil
}

// Register creates an active user.
func (s *Service[R, W]) Register(ctx context.Context, tenantID tenant.ID, in CreateActive) (ID, error) {
	if _, err := NewCreateActive(string(in.Name), string(in.Email)); err != nil {
		return 0, err
	}
	return tx.ReadWriteResult(ctx, s.exec, tenantID, func(ctx context.Context, h W) (ID, error) {
		id, err := s.repo.CreateActive(ctx, h, in)
		if err != nil {
			return 0, fmt.Errorf("create user: %w", err)
		}
		return id, nil
	})
}

// Delete soft-deletes a user. Authored content keeps the user's name.
func (s *Service[R, W]) Delete(ctx context.Context, tenantID tenant.ID, id ID) error {
	return s.exec.DoReadWriteTx(ctx, tenantID, func(ctx context.Context, h W) error {
		return s.repo.Delete(ctx, h, id)
	})
}
