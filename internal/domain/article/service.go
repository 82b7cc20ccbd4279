package article

import (
	"context"
	"fmt"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
)

// Service implements article use cases on top of a tenant-scoped executor.
type Service[R tx.ReadOnly, W tx.ReadWrite] struct {
	exec tx.Executor[R, W]
	repo Repository[R, W]
}

// NewService creates an article service.
func NewService[R tx.ReadOnly, W tx.ReadWrite](exec tx.Executor[R, W], repo Repository[R, W]) *Service[R, W] {
	return &Service[R, W]{exec: exec, repo: repo}
}

// Get returns an article or NOT_FOUND.
func (s *Service[R, W]) Get(ctx context.Context, tenantID tenant.ID, id ID) (*Dto, error) {
	dto, err := tx.ReadOnlyResult(ctx, s.exec, tenantID, func(ctx context.Context, h R) (*Dto, error) {
		return s.repo.FindByID(ctx, h, id)
	})
	if err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, apperror.NewNotFound("article", id.Int64())
	}
	return dto, nil
}

// List returns the tenant's articles, newest first.
func (s *Service[R, W]) List(ctx context.Context, tenantID tenant.ID) ([]Dto, error) {
	return tx.ReadOnlyResult(ctx, s.exec, tenantID, func(ctx context.Context, h R) ([]Dto, error) {
		return s.repo.FindMany(ctx, h, tenantID)
	})
}

// Create validates in and stores a new article.
func (s *Service[R, W]) Create(ctx context.Context, tenantID tenant.ID, in Create) (ID, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	return tx.ReadWriteResult(ctx, s.exec, tenantID, func(ctx context.Context, h W) (ID, error) {
		id, err := s.repo.Create(ctx, h, in)
		if err != nil {
			return 0, fmt.Errorf("create article: %w", err)
		}
		return id, nil
	})
}

// Delete removes an article and its comments.
func (s *Service[R, W]) Delete(ctx context.Context, tenantID tenant.ID, id ID) error {
	return s.exec.DoReadWriteTx(ctx, tenantID, func(ctx context.Context, h W) error {
		return s.repo.Delete(ctx, h, id)
	})
}

// AddComment validates in and attaches a comment to an existing article.
func (s *Service[R, W]) AddComment(ctx context.Context, tenantID tenant.ID, in CommentCreate) (CommentID, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	return tx.ReadWriteResult(ctx, s.exec, tenantID, func(ctx context.Context, h W) (CommentID, error) {
		id, err := s.repo.AddComment(ctx, h, in)
		if err != nil {
			return 0, fmt.Errorf("add comment: %w", err)
		}
		return id, nil
	})
}
