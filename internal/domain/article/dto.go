package article

import (
	"time"

	"tenantpress/internal/domain/user"
)

// CommentDto is a comment as shown under its article.
type CommentDto struct {
	ID      CommentID      `json:"id"`
	Content CommentContent `json:"content"`
	Author  user.Dto       `json:"author"`
}

// Dto is an article with its author and comments in insertion order.
type Dto struct {
	ID        ID           `json:"id"`
	Title     Title        `json:"title"`
	Content   Content      `json:"content"`
	Comments  []CommentDto `json:"comments"`
	Author    user.Dto     `json:"author"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Create is the input for a new article.
type Create struct {
	Title    Title
	Content  Content
	AuthorID user.ID
}

// NewCreate validates raw article input.
func NewCreate(title, content string, authorID int64) (Create, error) {
	t, err := ParseTitle(title)
	if err != nil {
		return Create{}, err
	}
	c, err := ParseContent(content)
	if err != nil {
		return Create{}, err
	}
	a, err := user.ParseID(authorID)
	if err != nil {
		return Create{}, err
	}
	return Create{Title: t, Content: c, AuthorID: a}, nil
}

// Validate re-checks the fields, e.g. for values built without NewCreate.
func (c Create) Validate() error {
	_, err := NewCreate(string(c.Title), string(c.Content), int64(c.AuthorID))
	return err
}

// CommentCreate is the input for a new comment.
type CommentCreate struct {
	ArticleID ID
	Content   CommentContent
	AuthorID  user.ID
}

// NewCommentCreate validates raw comment input.
func NewCommentCreate(articleID int64, content string, authorID int64) (CommentCreate, error) {
	aid, err := ParseID(articleID)
	if err != nil {
		return CommentCreate{}, err
	}
	c, err := ParseCommentContent(content)
	if err != nil {
		return CommentCreate{}, err
	}
	uid, err := user.ParseID(authorID)
	if err != nil {
		return CommentCreate{}, err
	}
	return CommentCreate{ArticleID: aid, Content: c, AuthorID: uid}, nil
}

// Validate re-checks the fields.
func (c CommentCreate) Validate() error {
	_, err := NewCommentCreate(int64(c.ArticleID), string(c.Content), int64(c.AuthorID))
	return err
}
