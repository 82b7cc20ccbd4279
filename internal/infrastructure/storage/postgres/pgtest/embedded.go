package pgtest

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"tenantpress/internal/infrastructure/storage/postgres"
)

// Credentials of the embedded cluster. It listens on localhost only and
// lives for one test binary.
const (
	embeddedDatabase     = "tenantpress_test"
	embeddedSuperuser    = "postgres"
	embeddedSuperuserPwd = "postgres"
	embeddedAppLogin     = "tenantpress_test_app"
	embeddedAppLoginPwd  = "tenantpress_test_app"
)

// embeddedServer is a PostgreSQL started by the harness. Each test
// binary gets its own port and data directory, so packages may run in
// parallel.
type embeddedServer struct {
	pg   *embeddedpostgres.EmbeddedPostgres
	dir  string
	port uint32
}

func startEmbedded() (*embeddedServer, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("embedded postgres port: %w", err)
	}
	dir, err := os.MkdirTemp("", "tenantpress-pgtest-")
	if err != nil {
		return nil, fmt.Errorf("embedded postgres dir: %w", err)
	}

	var out bytes.Buffer
	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(port).
		Database(embeddedDatabase).
		Username(embeddedSuperuser).
		Password(embeddedSuperuserPwd).
		RuntimePath(filepath.Join(dir, "runtime")).
		DataPath(filepath.Join(dir, "data")).
		StartTimeout(2 * time.Minute).
		Logger(&out))
	if err := pg.Start(); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("start embedded postgres: %w\n%s", err, out.String())
	}
	return &embeddedServer{pg: pg, dir: dir, port: port}, nil
}

func (s *embeddedServer) url(user, password string) string {
	return fmt.Sprintf("postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		user, password, s.port, embeddedDatabase)
}

func (s *embeddedServer) adminURL() string { return s.url(embeddedSuperuser, embeddedSuperuserPwd) }
func (s *embeddedServer) appURL() string   { return s.url(embeddedAppLogin, embeddedAppLoginPwd) }

func (s *embeddedServer) stop() error {
	err := s.pg.Stop()
	if rmErr := os.RemoveAll(s.dir); err == nil {
		err = rmErr
	}
	return err
}

// createAppLogin adds the login role the app pool connects as. It is a
// member of tenantpress_app, so it must run after migrations, and it
// carries neither SUPERUSER nor BYPASSRLS.
func createAppLogin(ctx context.Context, admin *postgres.Pool) error {
	_, err := admin.Exec(ctx, fmt.Sprintf(
		"CREATE ROLE %s LOGIN PASSWORD '%s' NOSUPERUSER NOBYPASSRLS IN ROLE tenantpress_app",
		embeddedAppLogin, embeddedAppLoginPwd))
	if err != nil {
		return fmt.Errorf("create app login: %w", err)
	}
	return nil
}

func freePort() (uint32, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return uint32(l.Addr().(*net.TCPAddr).Port), nil
}
