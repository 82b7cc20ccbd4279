package pgtest

import (
	"context"
	"fmt"
	"sync/atomic"

	"tenantpress/internal/domain/article"
	"tenantpress/internal/domain/user"
	"tenantpress/internal/infrastructure/storage/postgres"
	"tenantpress/internal/infrastructure/storage/postgres/article_repo"
	"tenantpress/internal/infrastructure/storage/postgres/user_repo"
)

var seq atomic.Int64

// ActiveUser creates an active user named name with a unique email.
func ActiveUser(ctx context.Context, h postgres.Writer, name string) (user.ID, error) {
	in, err := user.NewCreateActive(name, fmt.Sprintf("user%d@example.com", seq.Add(1)))
	if err != nil {
		return 0, err
	}
	return user_repo.New().CreateActive(ctx, h, in)
}

// DeletedUser creates a user and soft-deletes it.
func DeletedUser(ctx context.Context, h postgres.Writer, name string) (user.ID, error) {
	id, err := ActiveUser(ctx, h, name)
	if err != nil {
		return 0, err
	}
	return id, user_repo.New().Delete(ctx, h, id)
}

// Article creates an article by authorID.
func Article(ctx context.Context, h postgres.Writer, authorID user.ID, title, content string) (article.ID, error) {
	in, err := article.NewCreate(title, content, int64(authorID))
	if err != nil {
		return 0, err
	}
	return article_repo.New().Create(ctx, h, in)
}

// Comment adds a comment to articleID.
func Comment(ctx context.Context, h postgres.Writer, articleID article.ID, authorID user.ID, content string) (article.CommentID, error) {
	in, err := article.NewCommentCreate(articleID.Int64(), content, int64(authorID))
	if err != nil {
		return 0, err
	}
	return article_repo.New().AddComment(ctx, h, in)
}
