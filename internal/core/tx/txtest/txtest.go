// Package txtest provides an in-memory tx.Executor for unit tests of code
// that only needs the handle types, not a database.
package txtest

import (
	"context"
	"sync"

	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
)

// ReadOnly is a fake read-only handle.
type ReadOnly struct {
	Tenant tenant.ID
}

func (h ReadOnly) TenantID() tenant.ID { return h.Tenant }

// ReadWrite is a fake read-write handle.
type ReadWrite struct {
	ReadOnly
	tx.Writable
}

// Call records one executor invocation.
type Call struct {
	Mode     string // "ro" or "rw"
	TenantID tenant.ID
	Options  tx.Options
	Err      error
}

// Executor runs callbacks inline. BeginErr, when set, is returned
// without invoking the callback.
type Executor struct {
	BeginErr error

	mu    sync.Mutex
	calls []Call
}

var _ tx.Executor[ReadOnly, ReadWrite] = (*Executor)(nil)

func (e *Executor) DoReadOnlyTx(ctx context.Context, id tenant.ID, fn func(context.Context, ReadOnly) error, opts ...tx.Option) error {
	return e.run("ro", id, opts, func() error { return fn(ctx, ReadOnly{Tenant: id}) })
}

func (e *Executor) DoReadWriteTx(ctx context.Context, id tenant.ID, fn func(context.Context, ReadWrite) error, opts ...tx.Option) error {
	return e.run("rw", id, opts, func() error { return fn(ctx, ReadWrite{ReadOnly: ReadOnly{Tenant: id}}) })
}

func (e *Executor) run(mode string, id tenant.ID, opts []tx.Option, fn func() error) error {
	err := e.BeginErr
	if err == nil {
		err = fn()
	}
	e.mu.Lock()
	e.calls = append(e.calls, Call{Mode: mode, TenantID: id, Options: tx.DefaultOptions().Apply(opts...), Err: err})
	e.mu.Unlock()
	return err
}

// Calls returns a copy of the recorded invocations.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}
