package article_repo

import (
	"time"

	"tenantpress/internal/domain/article"
	"tenantpress/internal/domain/user"
	"tenantpress/internal/infrastructure/storage/postgres/user_repo"
)

// Row is an article joined with its author.
type Row struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Content     string    `db:"content"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	AuthorID    int64     `db:"author_id"`
	AuthorName  string    `db:"author_name"`
	AuthorEmail *string   `db:"author_email"`
}

// CommentRow is a comment joined with its author.
type CommentRow struct {
	ID          int64   `db:"id"`
	ArticleID   int64   `db:"article_id"`
	Content     string  `db:"content"`
	AuthorID    int64   `db:"author_id"`
	AuthorName  string  `db:"author_name"`
	AuthorEmail *string `db:"author_email"`
}

func author(id int64, name string, email *string) (user.Dto, error) {
	return user_repo.ToDto(user_repo.Row{ID: id, Name: name, Email: email})
}

// ToCommentDto converts a comment row.
func ToCommentDto(r CommentRow) (article.CommentDto, error) {
	id, err := article.ParseCommentID(r.ID)
	if err != nil {
		return article.CommentDto{}, err
	}
	content, err := article.ParseCommentContent(r.Content)
	if err != nil {
		return article.CommentDto{}, err
	}
	a, err := author(r.AuthorID, r.AuthorName, r.AuthorEmail)
	if err != nil {
		return article.CommentDto{}, err
	}
	return article.CommentDto{ID: id, Content: content, Author: a}, nil
}

// ToDto converts an article row and its comments, which must already be
// in display order.
func ToDto(r Row, comments []CommentRow) (article.Dto, error) {
	id, err := article.ParseID(r.ID)
	if err != nil {
		return article.Dto{}, err
	}
	title, err := article.ParseTitle(r.Title)
	if err != nil {
		return article.Dto{}, err
	}
	content, err := article.ParseContent(r.Content)
	if err != nil {
		return article.Dto{}, err
	}
	a, err := author(r.AuthorID, r.AuthorName, r.AuthorEmail)
	if err != nil {
		return article.Dto{}, err
	}

	dto := article.Dto{
		ID:        id,
		Title:     title,
		Content:   content,
		Comments:  make([]article.CommentDto, 0, len(comments)),
		Author:    a,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, c := range comments {
		cd, err := ToCommentDto(c)
		if err != nil {
			return article.Dto{}, err
		}
		dto.Comments = append(dto.Comments, cd)
	}
	return dto, nil
}
