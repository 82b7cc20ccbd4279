package dto

import (
	"tenantpress/internal/domain/article"
)

// CreateArticleRequest is the body of POST /articles.
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID *int64 `json:"authorId" binding:"required"`
}

// ToCreate converts the request into a validated domain input.
func (r CreateArticleRequest) ToCreate() (article.Create, error) {
	return article.NewCreate(r.Title, r.Content, *r.AuthorID)
}

// CreateCommentRequest is the body of POST /articles/:id/comments.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	AuthorID *int64 `json:"authorId" binding:"required"`
}

// ToCommentCreate converts the request for the given article.
func (r CreateCommentRequest) ToCommentCreate(articleID article.ID) (article.CommentCreate, error) {
	return article.NewCommentCreate(articleID.Int64(), r.Content, *r.AuthorID)
}
