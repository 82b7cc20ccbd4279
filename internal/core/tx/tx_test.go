package tx

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantpress/internal/core/tenant"
)

type roHandle struct{ id tenant.ID }

func (h roHandle) TenantID() tenant.ID { return h.id }

type rwHandle struct {
	roHandle
	Writable
}

// fakeExecutor runs callbacks without a database and records options.
type fakeExecutor struct {
	last Options
}

func (f *fakeExecutor) DoReadOnlyTx(ctx context.Context, id tenant.ID, fn func(context.Context, roHandle) error, opts ...Option) error {
	f.last = DefaultOptions().Apply(opts...)
	return fn(ctx, roHandle{id: id})
}

func (f *fakeExecutor) DoReadWriteTx(ctx context.Context, id tenant.ID, fn func(context.Context, rwHandle) error, opts ...Option) error {
	f.last = DefaultOptions().Apply(opts...)
	return fn(ctx, rwHandle{roHandle: roHandle{id: id}})
}

var _ Executor[roHandle, rwHandle] = (*fakeExecutor)(nil)

func TestWritableMarker(t *testing.T) {
	rw := reflect.TypeOf((*ReadWrite)(nil)).Elem()
	ro := reflect.TypeOf((*ReadOnly)(nil)).Elem()

	assert.True(t, reflect.TypeOf(rwHandle{}).Implements(rw))
	assert.True(t, reflect.TypeOf(rwHandle{}).Implements(ro))
	assert.False(t, reflect.TypeOf(roHandle{}).Implements(rw), "read-only handle must not carry write capability")
}

func TestReadOnlyResult(t *testing.T) {
	ex := &fakeExecutor{}
	id := tenant.NewID()

	got, err := ReadOnlyResult(context.Background(), Executor[roHandle, rwHandle](ex), id,
		func(_ context.Context, h roHandle) (string, error) {
			return h.TenantID().String(), nil
		})
	require.NoError(t, err)
	assert.Equal(t, id.String(), got)
}

func TestReadWriteResult_ErrorDropsValue(t *testing.T) {
	ex := &fakeExecutor{}
	boom := errors.New("boom")

	got, err := ReadWriteResult(context.Background(), Executor[roHandle, rwHandle](ex), tenant.NewID(),
		func(context.Context, rwHandle) (int, error) {
			return 7, boom
		}, WithTimeout(time.Second))
	assert.Same(t, boom, err)
	assert.Zero(t, got)
	assert.Equal(t, time.Second, ex.last.Timeout)
	assert.Equal(t, DefaultOptions().MaxWait, ex.last.MaxWait)
}

func TestOptionsApply(t *testing.T) {
	o := DefaultOptions().Apply(WithMaxWait(0), nil, WithTimeout(30*time.Second))
	assert.Zero(t, o.MaxWait)
	assert.Equal(t, 30*time.Second, o.Timeout)
}
