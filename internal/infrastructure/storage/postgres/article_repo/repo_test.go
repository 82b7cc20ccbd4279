package article_repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
	"tenantpress/internal/domain/article"
	"tenantpress/internal/domain/user"
	"tenantpress/internal/infrastructure/storage/postgres"
)

var mainTenant = tenant.MustParseID("E424CAD0-38C7-4A15-B06A-8F4FFC680EE8")

func TestFindByIDQuery(t *testing.T) {
	sql, args, err := New().findByIDQuery(mainTenant, 5).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT a.id, a.title, a.content, a.created_at, a.updated_at, "+
		"u.id AS author_id, u.name AS author_name, ua.email AS author_email "+
		"FROM articles a "+
		"JOIN users u ON u.id = a.author_id AND u.tenant_id = a.tenant_id "+
		"LEFT JOIN user_actives ua ON ua.user_id = u.id AND ua.tenant_id = u.tenant_id "+
		"WHERE a.tenant_id = $1 AND a.id = $2 LIMIT 1", sql)
	assert.Equal(t, []any{mainTenant.String(), int64(5)}, args)
}

func TestFindManyQuery_NewestFirst(t *testing.T) {
	sql, args, err := New().findManyQuery(mainTenant).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE a.tenant_id = $1 ORDER BY a.created_at DESC, a.id DESC")
	assert.Equal(t, []any{mainTenant.String()}, args)
}

func TestCommentsQuery_InsertionOrder(t *testing.T) {
	sql, args, err := New().commentsQuery(mainTenant, []int64{1, 2}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM comments c JOIN users u ON u.id = c.author_id AND u.tenant_id = c.tenant_id")
	assert.Contains(t, sql, "WHERE c.tenant_id = $1 AND c.article_id IN ($2,$3) ORDER BY c.article_id, c.id")
	assert.Equal(t, []any{mainTenant.String(), int64(1), int64(2)}, args)
}

func TestWriteQueries(t *testing.T) {
	sql, args, err := New().insertQuery(mainTenant, article.Create{Title: "Hello", Content: "World", AuthorID: 9}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO articles (tenant_id,author_id,title,content) VALUES ($1,$2,$3,$4) RETURNING id", sql)
	assert.Equal(t, []any{mainTenant.String(), int64(9), "Hello", "World"}, args)

	sql, _, err = New().deleteQuery(mainTenant, 5).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM articles WHERE id = $1 AND tenant_id = $2", sql)

	sql, _, err = New().insertCommentQuery(mainTenant, article.CommentCreate{ArticleID: 5, Content: "hi", AuthorID: 9}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO comments (tenant_id,article_id,author_id,content) VALUES ($1,$2,$3,$4) RETURNING id", sql)
}

func TestToDto(t *testing.T) {
	email := "alice@example.com"
	now := time.Now().UTC()
	row := Row{ID: 1, Title: "Hello", Content: "World", CreatedAt: now, UpdatedAt: now,
		AuthorID: 3, AuthorName: "Alice", AuthorEmail: &email}
	comments := []CommentRow{
		{ID: 10, ArticleID: 1, Content: "first", AuthorID: 4, AuthorName: "Bob"},
		{ID: 11, ArticleID: 1, Content: "second", AuthorID: 3, AuthorName: "Alice", AuthorEmail: &email},
	}

	dto, err := ToDto(row, comments)
	require.NoError(t, err)
	assert.Equal(t, article.Title("Hello"), dto.Title)
	assert.Equal(t, user.StatusActive, dto.Author.Status)
	require.Len(t, dto.Comments, 2)
	assert.Equal(t, article.CommentID(10), dto.Comments[0].ID)
	assert.Equal(t, user.StatusDeleted, dto.Comments[0].Author.Status)
	assert.Equal(t, user.Name("Alice"), dto.Comments[1].Author.Name)

	empty, err := ToDto(row, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Comments)
	assert.Empty(t, empty.Comments)
}

func TestToDto_InvalidPersistedValue(t *testing.T) {
	row := Row{ID: 1, Title: "", Content: "World", AuthorID: 3, AuthorName: "Alice"}
	_, err := ToDto(row, nil)
	assert.True(t, apperror.IsValidation(err))
}

// stubQuerier answers Exec and QueryRow with fixed results.
type stubQuerier struct {
	postgres.Querier
	tag    string
	rowErr error
}

func (q stubQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(q.tag), nil
}

func (q stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return errRow{q.rowErr} }

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

type writer struct {
	tx.Writable
	q postgres.Querier
}

func (w writer) TenantID() tenant.ID       { return mainTenant }
func (w writer) Querier() postgres.Querier { return w.q }

func TestDelete_ZeroRowsIsNotFound(t *testing.T) {
	err := New().Delete(context.Background(), writer{q: stubQuerier{tag: "DELETE 0"}}, 5)
	assert.True(t, apperror.IsNotFound(err))

	err = New().Delete(context.Background(), writer{q: stubQuerier{tag: "DELETE 1"}}, 5)
	assert.NoError(t, err)
}

func TestAddComment_ForeignKeyMapping(t *testing.T) {
	in := article.CommentCreate{ArticleID: 5, Content: "hi", AuthorID: 9}

	_, err := New().AddComment(context.Background(), writer{q: stubQuerier{
		rowErr: &pgconn.PgError{Code: "23503", ConstraintName: "comments_article_fk"},
	}}, in)
	assert.True(t, apperror.IsNotFound(err))

	_, err = New().AddComment(context.Background(), writer{q: stubQuerier{
		rowErr: &pgconn.PgError{Code: "23503", ConstraintName: "comments_author_fk"},
	}}, in)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnknownRef, appErr.Code)
	assert.True(t, postgres.IsForeignKeyViolation(err))
}

func TestCreate_PropagatesRLSViolation(t *testing.T) {
	rls := &pgconn.PgError{Code: "42501", Message: `new row violates row-level security policy for table "articles"`}

	_, err := New().Create(context.Background(), writer{q: stubQuerier{rowErr: rls}},
		article.Create{Title: "Hello", Content: "World", AuthorID: 1})

	assert.ErrorIs(t, err, rls)
	assert.True(t, postgres.IsRowLevelSecurityViolation(err))
}
