package postgres

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx"
)

var testTenant = tenant.MustParseID("E424CAD0-38C7-4A15-B06A-8F4FFC680EE8")

func newTestExecutor(t *testing.T) (*Executor, *fakeBeginner, *Metrics) {
	t.Helper()
	b := &fakeBeginner{tx: &fakeTx{}}
	m := NewMetrics(prometheus.NewRegistry())
	return NewExecutor(ExecutorConfig{Primary: b, Metrics: m}), b, m
}

func TestExecutor_BindsTenantBeforeAnythingElse(t *testing.T) {
	ex, b, m := newTestExecutor(t)

	err := ex.DoReadWriteTx(context.Background(), testTenant, func(ctx context.Context, h Writer) error {
		assert.Equal(t, testTenant, h.TenantID())
		got, err := tenant.FromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, testTenant, got)

		_, err = h.Querier().Exec(ctx, "INSERT INTO articles DEFAULT VALUES")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		bindTenantSQL,
		"SET LOCAL statement_timeout = '5000ms'",
		"INSERT INTO articles DEFAULT VALUES",
		"COMMIT",
	}, b.tx.statements())
	assert.Equal(t, []any{"e424cad0-38c7-4a15-b06a-8f4ffc680ee8"}, b.tx.args[0])
	assert.Equal(t, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}, b.opts)
	assert.True(t, b.hadDeadline, "begin must be bounded by MaxWait")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxTotal.WithLabelValues(modeReadWrite, outcomeCommit)))
}

func TestExecutor_ReadOnlyUsesReaderPool(t *testing.T) {
	primary := &fakeBeginner{tx: &fakeTx{}}
	reader := &fakeBeginner{tx: &fakeTx{}}
	ex := NewExecutor(ExecutorConfig{Primary: primary, Reader: reader})

	err := ex.DoReadOnlyTx(context.Background(), testTenant, func(context.Context, Reader) error { return nil })
	require.NoError(t, err)

	assert.Zero(t, primary.calls)
	assert.Equal(t, 1, reader.calls)
	assert.Equal(t, pgx.ReadOnly, reader.opts.AccessMode)
	assert.Equal(t, bindTenantSQL, reader.tx.statements()[0])
}

func TestExecutor_CallbackErrorRollsBackAndIsReturnedAsIs(t *testing.T) {
	ex, b, m := newTestExecutor(t)
	boom := apperror.NewNotFound("article", 1)

	err := ex.DoReadWriteTx(context.Background(), testTenant, func(context.Context, Writer) error {
		return boom
	})

	assert.Same(t, boom, err)
	stmts := b.tx.statements()
	assert.Equal(t, "ROLLBACK", stmts[len(stmts)-1])
	assert.NotContains(t, stmts, "COMMIT")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxTotal.WithLabelValues(modeReadWrite, outcomeRollback)))
}

func TestExecutor_PanicRollsBackAndRepanics(t *testing.T) {
	ex, b, m := newTestExecutor(t)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = ex.DoReadOnlyTx(context.Background(), testTenant, func(context.Context, Reader) error {
			panic("kaboom")
		})
	})

	stmts := b.tx.statements()
	assert.Equal(t, "ROLLBACK", stmts[len(stmts)-1])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxTotal.WithLabelValues(modeReadOnly, outcomePanic)))
}

func TestExecutor_BindFailureAborts(t *testing.T) {
	ex, b, _ := newTestExecutor(t)
	bindErr := errors.New("invalid input syntax for type uuid")
	b.tx.execErr = map[string]error{"SELECT set_config": bindErr}

	called := false
	err := ex.DoReadWriteTx(context.Background(), testTenant, func(context.Context, Writer) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, bindErr)
	assert.Contains(t, err.Error(), "bind tenant")
	assert.False(t, called)
	assert.Equal(t, []string{bindTenantSQL, "ROLLBACK"}, b.tx.statements())
}

func TestExecutor_BeginAndCommitFailuresAreWrapped(t *testing.T) {
	ex, b, _ := newTestExecutor(t)
	b.err = errors.New("too many connections")

	err := ex.DoReadOnlyTx(context.Background(), testTenant, func(context.Context, Reader) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, b.err)
	assert.Contains(t, err.Error(), "begin transaction")

	ex, b, _ = newTestExecutor(t)
	b.tx.commitErr = errors.New("serialization failure")
	err = ex.DoReadWriteTx(context.Background(), testTenant, func(context.Context, Writer) error { return nil })
	assert.ErrorIs(t, err, b.tx.commitErr)
	assert.Contains(t, err.Error(), "commit transaction")
}

func TestExecutor_NilTenantRejectedBeforeBegin(t *testing.T) {
	ex, b, _ := newTestExecutor(t)

	err := ex.DoReadOnlyTx(context.Background(), tenant.NilID, func(context.Context, Reader) error { return nil })

	assert.True(t, apperror.IsValidation(err))
	assert.Zero(t, b.calls)
}

func TestExecutor_OptionsDisableBounds(t *testing.T) {
	ex, b, _ := newTestExecutor(t)

	err := ex.DoReadWriteTx(context.Background(), testTenant, func(ctx context.Context, _ Writer) error {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return nil
	}, tx.WithMaxWait(0), tx.WithTimeout(0))
	require.NoError(t, err)

	assert.False(t, b.hadDeadline)
	assert.Equal(t, []string{bindTenantSQL, "COMMIT"}, b.tx.statements())
}

func TestExecutor_ExplicitZeroDefaultsDisableBounds(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	ex := NewExecutor(ExecutorConfig{Primary: b, Defaults: &tx.Options{}})

	err := ex.DoReadWriteTx(context.Background(), testTenant, func(ctx context.Context, _ Writer) error {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	assert.False(t, b.hadDeadline)
	assert.Equal(t, []string{bindTenantSQL, "COMMIT"}, b.tx.statements())
}

func TestExecutor_ConfiguredDefaults(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	ex := NewExecutor(ExecutorConfig{Primary: b, Defaults: &tx.Options{Timeout: 750 * time.Millisecond}})

	require.NoError(t, ex.DoReadOnlyTx(context.Background(), testTenant, func(context.Context, Reader) error {
		return nil
	}))

	assert.False(t, b.hadDeadline, "zero MaxWait leaves begin unbounded")
	assert.Equal(t, "SET LOCAL statement_timeout = '750ms'", b.tx.statements()[1])
}

func TestExecutor_SubMillisecondTimeoutRoundsUp(t *testing.T) {
	ex, b, _ := newTestExecutor(t)

	_ = ex.DoReadWriteTx(context.Background(), testTenant, func(context.Context, Writer) error {
		return nil
	}, tx.WithTimeout(500*time.Microsecond))

	stmts := b.tx.statements()
	require.GreaterOrEqual(t, len(stmts), 2)
	assert.Equal(t, "SET LOCAL statement_timeout = '1ms'", stmts[1])
}

func TestStatementTimeoutSQL(t *testing.T) {
	cases := map[time.Duration]string{
		time.Nanosecond:                    "SET LOCAL statement_timeout = '1ms'",
		time.Millisecond:                   "SET LOCAL statement_timeout = '1ms'",
		time.Millisecond + time.Nanosecond: "SET LOCAL statement_timeout = '2ms'",
		5 * time.Second:                    "SET LOCAL statement_timeout = '5000ms'",
	}
	for d, want := range cases {
		assert.Equal(t, want, statementTimeoutSQL(d), d.String())
	}
}

func TestExecutor_TimeoutBoundsCallback(t *testing.T) {
	ex, _, _ := newTestExecutor(t)

	err := ex.DoReadWriteTx(context.Background(), testTenant, func(ctx context.Context, _ Writer) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(250*time.Millisecond), deadline, 200*time.Millisecond)
		return nil
	}, tx.WithTimeout(250*time.Millisecond))
	require.NoError(t, err)
}

func TestHandles_CapabilityTyping(t *testing.T) {
	writer := reflect.TypeOf((*Writer)(nil)).Elem()
	reader := reflect.TypeOf((*Reader)(nil)).Elem()

	assert.False(t, reflect.TypeOf(&ReadOnlyTx{}).Implements(writer), "read-only handle must not be accepted by mutations")
	assert.True(t, reflect.TypeOf(&ReadOnlyTx{}).Implements(reader))
	assert.True(t, reflect.TypeOf(&ReadWriteTx{}).Implements(writer))
	assert.True(t, reflect.TypeOf(&ReadWriteTx{}).Implements(reader))
}

func TestExecutor_GoexitInCallbackStillRollsBack(t *testing.T) {
	ex, b, _ := newTestExecutor(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ex.DoReadWriteTx(context.Background(), testTenant, func(context.Context, Writer) error {
			runtime.Goexit()
			return nil
		})
	}()
	<-done

	stmts := b.tx.statements()
	assert.Equal(t, "ROLLBACK", stmts[len(stmts)-1])
}
