package pgtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"tenantpress/internal/core/tenant"
	"tenantpress/internal/infrastructure/storage/postgres"
	"tenantpress/internal/infrastructure/storage/postgres/migrations"
)

// DB is what a test body needs, whatever the isolation strategy.
type DB interface {
	ReadOnly(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h postgres.Reader) error) error
	ReadWrite(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h postgres.Writer) error) error
}

// Harness owns the pools for one test binary's integration tests.
type Harness struct {
	App     *postgres.Pool
	Admin   *postgres.Pool
	Exec    *postgres.Executor
	Backend string
	Repeat  int

	server *embeddedServer
}

var (
	setupOnce sync.Once
	setupErr  error
	shared    *Harness

	mainRunning atomic.Bool
)

// New returns the process-wide harness, skipping t when the database
// is not configured. Pools live until the test binary exits; an
// embedded server is stopped by Main.
func New(t *testing.T) *Harness {
	t.Helper()
	env, ok := LoadEnv()
	if !ok {
		t.Skip("integration database not configured")
	}
	if env.Embedded() && !mainRunning.Load() {
		t.Fatal("pgtest: call pgtest.Main from TestMain to use the embedded server")
	}

	setupOnce.Do(func() {
		shared, setupErr = setup(context.Background(), env)
	})
	require.NoError(t, setupErr)
	return shared
}

// Main runs the package's tests and then releases the harness. Packages
// that call New use it as their TestMain:
//
//	func TestMain(m *testing.M) { pgtest.Main(m) }
func Main(m *testing.M) {
	mainRunning.Store(true)
	code := m.Run()
	if shared != nil {
		if err := shared.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "pgtest:", err)
		}
	}
	os.Exit(code)
}

// Close closes the pools and stops the embedded server, if any.
func (h *Harness) Close() error {
	h.App.Close()
	h.Admin.Close()
	if h.server != nil {
		return h.server.stop()
	}
	return nil
}

func setup(ctx context.Context, env Env) (*Harness, error) {
	h := &Harness{Backend: env.Backend, Repeat: env.Repeat}
	if env.Embedded() {
		server, err := startEmbedded()
		if err != nil {
			return nil, err
		}
		h.server = server
		env.AdminURL = server.adminURL()
		env.AppURL = server.appURL()
	}
	if err := h.connect(ctx, env); err != nil {
		_ = h.Close()
		return nil, err
	}
	h.Exec = postgres.NewExecutor(postgres.ExecutorConfig{Primary: h.App})
	return h, nil
}

func (h *Harness) connect(ctx context.Context, env Env) error {
	var err error
	if h.Admin, err = postgres.NewPool(ctx, postgres.DefaultPoolConfig(env.AdminURL)); err != nil {
		return fmt.Errorf("admin pool: %w", err)
	}
	if _, err := migrations.Run(ctx, h.Admin); err != nil {
		return err
	}
	if h.server != nil {
		if err := createAppLogin(ctx, h.Admin); err != nil {
			return err
		}
	}
	if err := seedTenants(ctx, h.Admin); err != nil {
		return err
	}
	if h.App, err = postgres.NewPool(ctx, postgres.DefaultPoolConfig(env.AppURL)); err != nil {
		return fmt.Errorf("app pool: %w", err)
	}
	return nil
}

func seedTenants(ctx context.Context, admin *postgres.Pool) error {
	for name, id := range map[string]tenant.ID{"main": MainTenant, "other": OtherTenant} {
		_, err := admin.Exec(ctx,
			"INSERT INTO tenants (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING",
			id.String(), name)
		if err != nil {
			return fmt.Errorf("seed tenant %s: %w", name, err)
		}
	}
	return nil
}

// Each runs body under both isolation strategies on the harness backend,
// Repeat times each. Subtests are named backend/strategy.
func (h *Harness) Each(t *testing.T, body func(t *testing.T, db DB)) {
	t.Run(h.Backend, func(t *testing.T) {
		t.Run("rollback", func(t *testing.T) {
			h.repeat(t, func(t *testing.T) { h.Rollback(t, body) })
		})
		t.Run("truncate", func(t *testing.T) {
			h.repeat(t, func(t *testing.T) { h.Truncate(t, body) })
		})
	})
}

func (h *Harness) repeat(t *testing.T, fn func(t *testing.T)) {
	if h.Repeat <= 1 {
		fn(t)
		return
	}
	for i := 0; i < h.Repeat; i++ {
		t.Run(fmt.Sprintf("run%d", i), fn)
	}
}

// errRollback ends the outer transaction of the rollback strategy.
var errRollback = errors.New("pgtest: rollback")

// Rollback runs body inside one read-write transaction bound to
// MainTenant and rolls it back afterwards. Each DB call becomes a
// savepoint re-bound to the requested tenant.
func (h *Harness) Rollback(t *testing.T, body func(t *testing.T, db DB)) {
	t.Helper()
	err := h.Exec.DoReadWriteTx(context.Background(), MainTenant, func(ctx context.Context, w postgres.Writer) error {
		body(t, &rollbackDB{outer: w})
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)
}

type rollbackDB struct {
	outer postgres.Writer
}

func (d *rollbackDB) ReadOnly(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h postgres.Reader) error) error {
	return postgres.Rebind(ctx, d.outer, tenantID, func(ctx context.Context, h postgres.Writer) error {
		return fn(ctx, h)
	})
}

func (d *rollbackDB) ReadWrite(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h postgres.Writer) error) error {
	return postgres.Rebind(ctx, d.outer, tenantID, fn)
}

// Truncate runs body with real commits and empties every tenant-owned
// table afterwards. Tenants themselves are kept.
func (h *Harness) Truncate(t *testing.T, body func(t *testing.T, db DB)) {
	t.Helper()
	t.Cleanup(func() {
		_, err := h.Admin.Exec(context.Background(),
			"TRUNCATE comments, articles, user_deleteds, user_actives, users RESTART IDENTITY")
		require.NoError(t, err)
	})
	body(t, &executorDB{exec: h.Exec})
}

type executorDB struct {
	exec *postgres.Executor
}

func (d *executorDB) ReadOnly(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h postgres.Reader) error) error {
	return d.exec.DoReadOnlyTx(ctx, tenantID, fn)
}

func (d *executorDB) ReadWrite(ctx context.Context, tenantID tenant.ID, fn func(ctx context.Context, h postgres.Writer) error) error {
	return d.exec.DoReadWriteTx(ctx, tenantID, fn)
}
