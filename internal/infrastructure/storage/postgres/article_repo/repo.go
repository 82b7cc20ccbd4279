// Package article_repo provides the PostgreSQL article repository.
//
// Every statement filters by the handle's tenant in addition to the
// tenant_isolation policies.
package article_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/domain/article"
	"tenantpress/internal/infrastructure/storage/postgres"
	"tenantpress/internal/infrastructure/storage/postgres/user_repo"
)

const (
	authorJoin      = "users u ON u.id = %s.author_id AND u.tenant_id = %s.tenant_id"
	fkCommentAuthor = "comments_author_fk"
	fkCommentParent = "comments_article_fk"
	fkArticleAuthor = "articles_author_fk"
)

var articleColumns = []string{
	"a.id", "a.title", "a.content", "a.created_at", "a.updated_at",
	"u.id AS author_id", "u.name AS author_name", "ua.email AS author_email",
}

var commentColumns = []string{
	"c.id", "c.article_id", "c.content",
	"u.id AS author_id", "u.name AS author_name", "ua.email AS author_email",
}

// Repo implements article.Repository over the postgres handles.
type Repo struct{}

var _ article.Repository[postgres.Reader, postgres.Writer] = (*Repo)(nil)

// New creates an article repository.
func New() *Repo {
	return &Repo{}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) baseSelect(tenantID tenant.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(articleColumns...).
		From("articles a").
		Join(fmt.Sprintf(authorJoin, "a", "a")).
		LeftJoin(user_repo.ActiveJoin).
		Where(squirrel.Eq{"a.tenant_id": tenantID.String()})
}

func (r *Repo) findByIDQuery(tenantID tenant.ID, id article.ID) squirrel.SelectBuilder {
	return r.baseSelect(tenantID).
		Where(squirrel.Eq{"a.id": id.Int64()}).
		Limit(1)
}

func (r *Repo) findManyQuery(tenantID tenant.ID) squirrel.SelectBuilder {
	return r.baseSelect(tenantID).OrderBy("a.created_at DESC", "a.id DESC")
}

func (r *Repo) commentsQuery(tenantID tenant.ID, articleIDs []int64) squirrel.SelectBuilder {
	return r.Builder().
		Select(commentColumns...).
		From("comments c").
		Join(fmt.Sprintf(authorJoin, "c", "c")).
		LeftJoin(user_repo.ActiveJoin).
		Where(squirrel.Eq{"c.tenant_id": tenantID.String()}).
		Where(squirrel.Eq{"c.article_id": articleIDs}).
		OrderBy("c.article_id", "c.id")
}

// FindByID returns nil, nil when the article does not exist for the tenant.
func (r *Repo) FindByID(ctx context.Context, h postgres.Reader, id article.ID) (*article.Dto, error) {
	sql, args, err := r.findByIDQuery(h.TenantID(), id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row Row
	if err := pgxscan.Get(ctx, h.Querier(), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article by id: %w", err)
	}

	dtos, err := r.withComments(ctx, h, []Row{row})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// FindMany lists the tenant's articles, newest first. A tenantID other
// than the handle's yields an empty list.
func (r *Repo) FindMany(ctx context.Context, h postgres.Reader, tenantID tenant.ID) ([]article.Dto, error) {
	if tenantID != h.TenantID() {
		return []article.Dto{}, nil
	}

	sql, args, err := r.findManyQuery(tenantID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []Row
	if err := pgxscan.Select(ctx, h.Querier(), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return r.withComments(ctx, h, rows)
}

// withComments loads comments for rows in one query and converts.
func (r *Repo) withComments(ctx context.Context, h postgres.Reader, rows []Row) ([]article.Dto, error) {
	out := make([]article.Dto, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	sql, args, err := r.commentsQuery(h.TenantID(), ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var comments []CommentRow
	if err := pgxscan.Select(ctx, h.Querier(), &comments, sql, args...); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	byArticle := make(map[int64][]CommentRow, len(rows))
	for _, c := range comments {
		byArticle[c.ArticleID] = append(byArticle[c.ArticleID], c)
	}

	for _, row := range rows {
		dto, err := ToDto(row, byArticle[row.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

func (r *Repo) insertQuery(tenantID tenant.ID, in article.Create) squirrel.InsertBuilder {
	return r.Builder().
		Insert("articles").
		Columns("tenant_id", "author_id", "title", "content").
		Values(tenantID.String(), int64(in.AuthorID), string(in.Title), string(in.Content)).
		Suffix("RETURNING id")
}

// Create inserts an article for the handle's tenant.
func (r *Repo) Create(ctx context.Context, h postgres.Writer, in article.Create) (article.ID, error) {
	sql, args, err := r.insertQuery(h.TenantID(), in).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := h.Querier().QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if postgres.ConstraintName(err) == fkArticleAuthor {
			return 0, unknownAuthor(int64(in.AuthorID), err)
		}
		return 0, fmt.Errorf("insert articles: %w", err)
	}
	return article.ID(id), nil
}

func (r *Repo) deleteQuery(tenantID tenant.ID, id article.ID) squirrel.DeleteBuilder {
	return r.Builder().
		Delete("articles").
		Where(squirrel.Eq{"id": id.Int64()}).
		Where(squirrel.Eq{"tenant_id": tenantID.String()})
}

// Delete removes an article; comments go with it (ON DELETE CASCADE).
func (r *Repo) Delete(ctx context.Context, h postgres.Writer, id article.ID) error {
	sql, args, err := r.deleteQuery(h.TenantID(), id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := h.Querier().Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("article", id.Int64())
	}
	return nil
}

func (r *Repo) insertCommentQuery(tenantID tenant.ID, in article.CommentCreate) squirrel.InsertBuilder {
	return r.Builder().
		Insert("comments").
		Columns("tenant_id", "article_id", "author_id", "content").
		Values(tenantID.String(), in.ArticleID.Int64(), int64(in.AuthorID), string(in.Content)).
		Suffix("RETURNING id")
}

// AddComment appends a comment. The composite foreign keys reject an
// article or author of another tenant.
func (r *Repo) AddComment(ctx context.Context, h postgres.Writer, in article.CommentCreate) (article.CommentID, error) {
	sql, args, err := r.insertCommentQuery(h.TenantID(), in).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := h.Querier().QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		switch postgres.ConstraintName(err) {
		case fkCommentParent:
			return 0, apperror.NewNotFound("article", in.ArticleID.Int64()).WithCause(err)
		case fkCommentAuthor:
			return 0, unknownAuthor(int64(in.AuthorID), err)
		}
		return 0, fmt.Errorf("insert comments: %w", err)
	}
	return article.CommentID(id), nil
}

func unknownAuthor(id int64, cause error) error {
	return apperror.NewBusinessRule(apperror.CodeUnknownRef, "author does not exist").
		WithDetail("author_id", id).
		WithCause(cause)
}
