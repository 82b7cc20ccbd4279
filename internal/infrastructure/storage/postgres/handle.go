package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
)

// Querier is the statement surface a handle exposes to repositories.
// It deliberately omits Commit and Rollback: the executor owns those.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Reader is accepted by queries. Both handle types satisfy it.
type Reader interface {
	tx.ReadOnly
	Querier() Querier
}

// Writer is accepted by mutations. Only *ReadWriteTx satisfies it.
type Writer interface {
	tx.ReadWrite
	Querier() Querier
}

// ReadOnlyTx is handed to read-only units of work.
type ReadOnlyTx struct {
	tenantID tenant.ID
	pgTx     pgx.Tx
}

func (h *ReadOnlyTx) TenantID() tenant.ID { return h.tenantID }

func (h *ReadOnlyTx) Querier() Querier { return h.pgTx }

// ReadWriteTx is handed to read-write units of work.
type ReadWriteTx struct {
	ReadOnlyTx
	tx.Writable
}

var (
	_ Reader = (*ReadOnlyTx)(nil)
	_ Reader = (*ReadWriteTx)(nil)
	_ Writer = (*ReadWriteTx)(nil)
)
