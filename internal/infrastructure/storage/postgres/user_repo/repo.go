// Package user_repo provides the PostgreSQL user repository.
//
// A user is a users row plus exactly one of user_actives (email) or
// user_deleteds. Soft deletion moves the user between the two.
package user_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/domain/user"
	"tenantpress/internal/infrastructure/storage/postgres"
)

// ActiveJoin attaches the optional active state to a users alias u.
const ActiveJoin = "user_actives ua ON ua.user_id = u.id AND ua.tenant_id = u.tenant_id"

// Repo implements user.Repository over the postgres handles.
type Repo struct{}

var _ user.Repository[postgres.Reader, postgres.Writer] = (*Repo)(nil)

// New creates a user repository.
func New() *Repo {
	return &Repo{}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) findByIDQuery(tenantID tenant.ID, id user.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select("u.id", "u.name", "ua.email").
		From("users u").
		LeftJoin(ActiveJoin).
		Where(squirrel.Eq{"u.id": id.Int64()}).
		Where(squirrel.Eq{"u.tenant_id": tenantID.String()}).
		Limit(1)
}

// FindByID returns nil, nil when the user does not exist for the tenant.
func (r *Repo) FindByID(ctx context.Context, h postgres.Reader, id user.ID) (*user.Dto, error) {
	sql, args, err := r.findByIDQuery(h.TenantID(), id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row Row
	if err := pgxscan.Get(ctx, h.Querier(), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	dto, err := ToDto(row)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (r *Repo) insertUserQuery(tenantID tenant.ID, name user.Name) squirrel.InsertBuilder {
	return r.Builder().
		Insert("users").
		Columns("tenant_id", "name").
		Values(tenantID.String(), string(name)).
		Suffix("RETURNING id")
}

// CreateActive inserts the user and its active state.
func (r *Repo) CreateActive(ctx context.Context, h postgres.Writer, in user.CreateActive) (user.ID, error) {
	q := h.Querier()
	tid := h.TenantID()

	sql, args, err := r.insertUserQuery(tid, in.Name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert users: %w", err)
	}

	sql, args, err = r.Builder().
		Insert("user_actives").
		Columns("user_id", "tenant_id", "email").
		Values(id, tid.String(), string(in.Email)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return 0, apperror.NewDuplicate("user", "email", string(in.Email)).WithCause(err)
		}
		return 0, fmt.Errorf("insert user_actives: %w", err)
	}

	return user.ID(id), nil
}

func (r *Repo) deleteActiveQuery(tenantID tenant.ID, id user.ID) squirrel.DeleteBuilder {
	return r.Builder().
		Delete("user_actives").
		Where(squirrel.Eq{"user_id": id.Int64()}).
		Where(squirrel.Eq{"tenant_id": tenantID.String()})
}

// Delete soft-deletes an active user. The users row and the name stay.
func (r *Repo) Delete(ctx context.Context, h postgres.Writer, id user.ID) error {
	q := h.Querier()
	tid := h.TenantID()

	sql, args, err := r.deleteActiveQuery(tid, id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete user_actives: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", id.Int64())
	}

	sql, args, err = r.Builder().
		Insert("user_deleteds").
		Columns("user_id", "tenant_id").
		Values(id.Int64(), tid.String()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user_deleteds: %w", err)
	}

	sql, args, err = r.Builder().
		Update("users").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id.Int64()}).
		Where(squirrel.Eq{"tenant_id": tid.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("touch users: %w", err)
	}
	return nil
}
