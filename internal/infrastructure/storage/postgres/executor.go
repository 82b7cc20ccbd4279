package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
	"tenantpress/pkg/logger"
)

var tracer = otel.Tracer("tenantpress/tx")

// bindTenantSQL must be the first statement of every transaction.
// is_local=true scopes the setting to the transaction.
const bindTenantSQL = "SELECT set_config('app.tenant_id', $1, true)"

const (
	modeReadOnly  = "readonly"
	modeReadWrite = "readwrite"
)

var _ tx.Executor[Reader, Writer] = (*Executor)(nil)

// Beginner starts transactions. *pgxpool.Pool and *Pool satisfy it.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// Primary serves read-write transactions, and read-only ones when
	// Reader is nil.
	Primary Beginner

	// Reader optionally serves read-only transactions (replica).
	Reader Beginner

	// Defaults apply to every call before per-call options.
	// Nil means tx.DefaultOptions; zero fields disable that bound.
	Defaults *tx.Options

	// Metrics is optional.
	Metrics *Metrics
}

// Executor runs units of work in transactions bound to one tenant.
type Executor struct {
	primary  Beginner
	reader   Beginner
	defaults tx.Options
	metrics  *Metrics
}

// NewExecutor creates an executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	defaults := tx.DefaultOptions()
	if cfg.Defaults != nil {
		defaults = *cfg.Defaults
	}
	reader := cfg.Reader
	if reader == nil {
		reader = cfg.Primary
	}
	return &Executor{
		primary:  cfg.Primary,
		reader:   reader,
		defaults: defaults,
		metrics:  cfg.Metrics,
	}
}

// DoReadOnlyTx runs fn in a read-only transaction bound to tenantID.
func (e *Executor) DoReadOnlyTx(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h Reader) error, opts ...tx.Option) error {
	return e.run(ctx, e.reader, modeReadOnly, pgx.ReadOnly, tenantID, opts, func(ctx context.Context, t pgx.Tx) error {
		return fn(ctx, &ReadOnlyTx{tenantID: tenantID, pgTx: t})
	})
}

// DoReadWriteTx runs fn in a read-write transaction bound to tenantID.
func (e *Executor) DoReadWriteTx(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h Writer) error, opts ...tx.Option) error {
	return e.run(ctx, e.primary, modeReadWrite, pgx.ReadWrite, tenantID, opts, func(ctx context.Context, t pgx.Tx) error {
		return fn(ctx, &ReadWriteTx{ReadOnlyTx: ReadOnlyTx{tenantID: tenantID, pgTx: t}})
	})
}

func (e *Executor) run(
	ctx context.Context,
	db Beginner,
	mode string,
	access pgx.TxAccessMode,
	tenantID tenant.ID,
	opts []tx.Option,
	body func(ctx context.Context, t pgx.Tx) error,
) (err error) {
	if tenantID.IsNil() {
		return apperror.NewFieldValidation("tenant_id", "must not be the nil UUID")
	}
	o := e.defaults.Apply(opts...)

	ctx = tenant.WithID(ctx, tenantID)
	ctx, span := tracer.Start(ctx, "tx."+mode,
		trace.WithAttributes(
			attribute.String("tx.mode", mode),
			attribute.String("tenant.id", tenantID.String()),
		))
	defer span.End()

	start := time.Now()
	outcome := outcomeError
	defer func() {
		e.metrics.observe(mode, outcome, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
	}()

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	t, err := e.begin(ctx, db, access, o.MaxWait)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := t.Exec(ctx, bindTenantSQL, tenantID.String()); err != nil {
		e.rollback(ctx, t, err)
		return fmt.Errorf("bind tenant: %w", err)
	}

	if o.Timeout > 0 {
		if _, err := t.Exec(ctx, statementTimeoutSQL(o.Timeout)); err != nil {
			e.rollback(ctx, t, err)
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	// Covers panics and runtime.Goexit (t.FailNow in tests) in body.
	finished := false
	defer func() {
		if finished {
			return
		}
		p := recover()
		outcome = outcomePanic
		e.rollback(ctx, t, fmt.Errorf("unit of work aborted: %v", p))
		if p != nil {
			panic(p)
		}
	}()

	bodyErr := body(ctx, t)
	finished = true
	if bodyErr != nil {
		outcome = outcomeRollback
		e.rollback(ctx, t, bodyErr)
		return bodyErr
	}

	if err := t.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	outcome = outcomeCommit
	return nil
}

// begin starts a transaction, giving up after maxWait (0 = no bound).
func (e *Executor) begin(ctx context.Context, db Beginner, access pgx.TxAccessMode, maxWait time.Duration) (pgx.Tx, error) {
	beginCtx := ctx
	if maxWait > 0 {
		var cancel context.CancelFunc
		beginCtx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
	}
	return db.BeginTx(beginCtx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: access,
	})
}

// rollback uses a background context so it completes even after ctx
// was cancelled or timed out.
func (e *Executor) rollback(ctx context.Context, t pgx.Tx, cause error) {
	if rbErr := t.Rollback(context.Background()); rbErr != nil {
		logger.Error(ctx, "rollback failed", "error", rbErr, "cause", cause)
	}
}

// statementTimeoutSQL rounds up to whole milliseconds: PostgreSQL reads
// 0 as "no timeout", so sub-millisecond bounds must not truncate to it.
func statementTimeoutSQL(d time.Duration) string {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", ms)
}
