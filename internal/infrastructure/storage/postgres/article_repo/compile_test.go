package article_repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// typeCheckWith loads this package with one extra source file and
// returns the type errors the compiler would report.
func typeCheckWith(t *testing.T, body string) []string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)

	src := `package article_repo

import (
	"context"

	"tenantpress/internal/domain/article"
	"tenantpress/internal/infrastructure/storage/postgres"
)

var (
	_ context.Context
	_ article.ID
	_ postgres.Reader
)

` + body
	cfg := &packages.Config{
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:     dir,
		Overlay: map[string][]byte{filepath.Join(dir, "zz_handle_usage.go"): []byte(src)},
	}
	pkgs, err := packages.Load(cfg, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	var errs []string
	for _, e := range pkgs[0].Errors {
		errs = append(errs, e.Msg)
	}
	return errs
}

func TestMutationsRejectReadOnlyHandlesAtCompileTime(t *testing.T) {
	if testing.Short() {
		t.Skip("type-checks the package from source")
	}

	cases := map[string]string{
		"create with ReadOnlyTx": `
func createReadOnly(ctx context.Context, h *postgres.ReadOnlyTx, in article.Create) {
	_, _ = New().Create(ctx, h, in)
}`,
		"create with Reader": `
func createReader(ctx context.Context, h postgres.Reader, in article.Create) {
	_, _ = New().Create(ctx, h, in)
}`,
		"delete with ReadOnlyTx": `
func deleteReadOnly(ctx context.Context, h *postgres.ReadOnlyTx, id article.ID) {
	_ = New().Delete(ctx, h, id)
}`,
		"comment with Reader": `
func commentReader(ctx context.Context, h postgres.Reader, in article.CommentCreate) {
	_, _ = New().AddComment(ctx, h, in)
}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			errs := typeCheckWith(t, body)
			require.NotEmpty(t, errs, "read-only handle accepted by a mutation")
			joined := strings.Join(errs, "\n")
			assert.Contains(t, joined, "does not implement postgres.Writer (missing method writable)")
		})
	}
}

func TestMutationsAcceptReadWriteHandles(t *testing.T) {
	if testing.Short() {
		t.Skip("type-checks the package from source")
	}

	errs := typeCheckWith(t, `
func createReadWrite(ctx context.Context, h *postgres.ReadWriteTx, in article.Create) {
	_, _ = New().Create(ctx, h, in)
	_, _ = New().FindByID(ctx, h, 1)
}

func findReadOnly(ctx context.Context, h *postgres.ReadOnlyTx) {
	_, _ = New().FindByID(ctx, h, 1)
}`)
	assert.Empty(t, errs)
}
