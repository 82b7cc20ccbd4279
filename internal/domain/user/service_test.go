package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/tenant"
	"tenantpress/internal/core/tx/txtest"
)

type memRepo struct {
	users  map[ID]Dto
	nextID ID
	err    error
}

func newMemRepo() *memRepo { return &memRepo{users: map[ID]Dto{}, nextID: 1} }

func (r *memRepo) FindByID(_ context.Context, _ txtest.ReadOnly, id ID) (*Dto, error) {
	if r.err != nil {
		return nil, r.err
	}
	d, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memRepo) CreateActive(_ context.Context, _ txtest.ReadWrite, in CreateActive) (ID, error) {
	if r.err != nil {
		return 0, r.err
	}
	id := r.nextID
	r.nextID++
	r.users[id] = Dto{Status: StatusActive, ID: id, Name: in.Name, Email: in.Email}
	return id, nil
}

func (r *memRepo) Delete(_ context.Context, _ txtest.ReadWrite, id ID) error {
	d, ok := r.users[id]
	if !ok || !d.IsActive() {
		return apperror.NewNotFound("user", id.Int64())
	}
	r.users[id] = Dto{Status: StatusDeleted, Name: d.Name}
	return nil
}

func TestService_RegisterGetDelete(t *testing.T) {
	ctx := context.Background()
	exec := &txtest.Executor{}
	svc := NewService[txtest.ReadOnly, txtest.ReadWrite](exec, newMemRepo())
	tid := tenant.NewID()

	in, err := NewCreateActive("Alice", "alice@example.com")
	require.NoError(t, err)

	id, err := svc.Register(ctx, tid, in)
	require.NoError(t, err)

	got, err := svc.Get(ctx, tid, id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, Name("Alice"), got.Name)

	require.NoError(t, svc.Delete(ctx, tid, id))

	got, err = svc.Get(ctx, tid, id)
	require.NoError(t, err)
	assert.Equal(t, Dto{Status: StatusDeleted, Name: "Alice"}, *got)

	calls := exec.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, []string{"rw", "ro", "rw", "ro"}, []string{calls[0].Mode, calls[1].Mode, calls[2].Mode, calls[3].Mode})
	for _, c := range calls {
		assert.Equal(t, tid, c.TenantID)
	}
}

func TestService_GetMissingIsNotFound(t *testing.T) {
	svc := NewService[txtest.ReadOnly, txtest.ReadWrite](&txtest.Executor{}, newMemRepo())

	_, err := svc.Get(context.Background(), tenant.NewID(), 99)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_RegisterValidatesBeforeTx(t *testing.T) {
	exec := &txtest.Executor{}
	svc := NewService[txtest.ReadOnly, txtest.ReadWrite](exec, newMemRepo())

	_, err := svc.Register(context.Background(), tenant.NewID(), CreateActive{Name: "", Email: "x@example.com"})
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, exec.Calls())
}

func TestService_RepoErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	repo := newMemRepo()
	repo.err = boom
	svc := NewService[txtest.ReadOnly, txtest.ReadWrite](&txtest.Executor{}, repo)

	_, err := svc.Get(context.Background(), tenant.NewID(), 1)
	assert.Same(t, boom, err)

	_, err = svc.Register(context.Background(), tenant.NewID(), CreateActive{Name: "A", Email: "a@example.com"})
	assert.ErrorIs(t, err, boom)
}
