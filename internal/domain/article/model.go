// Package article contains article and comment value objects, DTOs,
// the repository contract and the use-case service.
package article

import (
	"strconv"
	"strings"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/validation"
)

// ID identifies an article.
type ID int64

// ParseID validates a raw article ID.
func ParseID(v int64) (ID, error) {
	if err := validation.Var("article_id", v, "gte=0"); err != nil {
		return 0, err
	}
	return ID(v), nil
}

// ParseIDString parses a decimal article ID.
func ParseIDString(s string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, apperror.NewFieldValidation("article_id", "must be an integer").WithCause(err)
	}
	return ParseID(v)
}

func (id ID) Int64() int64 { return int64(id) }

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// Title holds 1 to 80 characters.
type Title string

// ParseTitle validates an article title.
func ParseTitle(s string) (Title, error) {
	if err := validation.Var("title", s, "min=1,max=80"); err != nil {
		return "", err
	}
	return Title(s), nil
}

// Content holds 1 to 1000 characters.
type Content string

// ParseContent validates an article body.
func ParseContent(s string) (Content, error) {
	if err := validation.Var("content", s, "min=1,max=1000"); err != nil {
		return "", err
	}
	return Content(s), nil
}

// CommentID identifies a comment.
type CommentID int64

// ParseCommentID validates a raw comment ID.
func ParseCommentID(v int64) (CommentID, error) {
	if err := validation.Var("comment_id", v, "gte=0"); err != nil {
		return 0, err
	}
	return CommentID(v), nil
}

func (id CommentID) Int64() int64 { return int64(id) }

// CommentContent holds 1 to 1000 characters.
type CommentContent string

// ParseCommentContent validates a comment body.
func ParseCommentContent(s string) (CommentContent, error) {
	if err := validation.Var("content", s, "min=1,max=1000"); err != nil {
		return "", err
	}
	return CommentContent(s), nil
}
