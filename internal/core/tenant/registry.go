package tenant

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Registry manages tenant rows.
//
// The tenants table is itself protected by row-level security, so a
// Registry must be backed by a connection that bypasses RLS (the admin
// role used for migrations). Request handling never goes through it.
type Registry interface {
	// GetByID retrieves tenant by ID.
	GetByID(ctx context.Context, id ID) (*Tenant, error)

	// List returns all tenants ordered by creation time.
	List(ctx context.Context) ([]*Tenant, error)

	// Create validates input and inserts a new tenant.
	Create(ctx context.Context, in CreateInput) (*Tenant, error)
}

// DB is the subset of pgxpool.Pool used by PostgresRegistry.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRegistry implements Registry on an RLS-bypassing connection.
type PostgresRegistry struct {
	db DB
}

func NewPostgresRegistry(db DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) GetByID(ctx context.Context, id ID) (*Tenant, error) {
	var t Tenant
	err := pgxscan.Get(ctx, r.db, &t, `
		SELECT id, name, created_at
		FROM tenants
		WHERE id = $1
	`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by id: %w", err)
	}
	return &t, nil
}

func (r *PostgresRegistry) List(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	err := pgxscan.Select(ctx, r.db, &tenants, `
		SELECT id, name, created_at
		FROM tenants
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (r *PostgresRegistry) Create(ctx context.Context, in CreateInput) (*Tenant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.ID.IsNil() {
		in.ID = NewID()
	}

	t := Tenant{ID: in.ID, Name: in.Name}
	err := r.db.QueryRow(ctx, `
		INSERT INTO tenants (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`, t.ID, t.Name).Scan(&t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return &t, nil
}

var _ Registry = (*PostgresRegistry)(nil)
