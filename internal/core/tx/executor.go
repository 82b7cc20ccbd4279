package tx

import (
	"context"
	"time"

	"tenantpress/internal/core/tenant"
)

// Executor runs units of work inside tenant-scoped transactions.
//
// Every statement issued through the handle runs in a transaction whose
// session is bound to tenantID before the callback starts. If fn returns
// an error the transaction is rolled back and that same error is returned.
// Otherwise the transaction is committed.
//
// Calls are independent: each opens its own transaction on its own
// connection and nothing is retried.
type Executor[R ReadOnly, W ReadWrite] interface {
	DoReadOnlyTx(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h R) error, opts ...Option) error
	DoReadWriteTx(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h W) error, opts ...Option) error
}

// Options bounds how long a transaction may wait and run.
type Options struct {
	// MaxWait bounds acquiring a connection and starting the transaction.
	MaxWait time.Duration

	// Timeout bounds the whole transaction, callback and commit included.
	Timeout time.Duration
}

// DefaultOptions is 2s to start and 5s to finish.
func DefaultOptions() Options {
	return Options{
		MaxWait: 2 * time.Second,
		Timeout: 5 * time.Second,
	}
}

// Option adjusts Options for a single call.
type Option func(*Options)

// WithMaxWait overrides Options.MaxWait. Zero disables the bound.
func WithMaxWait(d time.Duration) Option {
	return func(o *Options) { o.MaxWait = d }
}

// WithTimeout overrides Options.Timeout. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// Apply returns base with opts applied in order.
func (base Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		if opt != nil {
			opt(&base)
		}
	}
	return base
}

// ReadOnlyResult runs fn in a read-only transaction and returns its value.
func ReadOnlyResult[T any, R ReadOnly, W ReadWrite](
	ctx context.Context,
	ex Executor[R, W],
	tenantID tenant.ID,
	fn func(ctx context.Context, h R) (T, error),
	opts ...Option,
) (T, error) {
	var out T
	err := ex.DoReadOnlyTx(ctx, tenantID, func(ctx context.Context, h R) error {
		var err error
		out, err = fn(ctx, h)
		return err
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// ReadWriteResult runs fn in a read-write transaction and returns its value.
func ReadWriteResult[T any, R ReadOnly, W ReadWrite](
	ctx context.Context,
	ex Executor[R, W],
	tenantID tenant.ID,
	fn func(ctx context.Context, h W) (T, error),
	opts ...Option,
) (T, error) {
	var out T
	err := ex.DoReadWriteTx(ctx, tenantID, func(ctx context.Context, h W) error {
		var err error
		out, err = fn(ctx, h)
		return err
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
