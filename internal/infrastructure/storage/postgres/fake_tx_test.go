package postgres

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx records statements instead of talking to a server.
// Methods not overridden panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx

	mu        sync.Mutex
	log       []string
	args      [][]any
	execErr   map[string]error // statement prefix -> error
	commitErr error
}

func (f *fakeTx) record(sql string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, sql)
	f.args = append(f.args, args)
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	for prefix, err := range f.execErr {
		if strings.HasPrefix(sql, prefix) {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (f *fakeTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	return nil, errors.New("fakeTx: Query not supported")
}

func (f *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	return errRow{errors.New("fakeTx: QueryRow not supported")}
}

func (f *fakeTx) Commit(context.Context) error {
	f.record("COMMIT", nil)
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.record("ROLLBACK", nil)
	return nil
}

func (f *fakeTx) statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// fakeBeginner hands out one fakeTx and records how it was asked for.
type fakeBeginner struct {
	tx  *fakeTx
	err error

	calls       int
	opts        pgx.TxOptions
	hadDeadline bool
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.calls++
	b.opts = opts
	_, b.hadDeadline = ctx.Deadline()
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}
