// Package tx defines tenant-scoped transaction contracts.
//
// A unit of work never touches the database directly: it receives a handle
// from an Executor. The handle's static type states what the unit of work
// may do. ReadOnly handles are accepted by queries; only ReadWrite handles
// are accepted by mutations. The distinction is checked by the compiler
// and carries no runtime state.
//
// The concrete handles live in infrastructure/storage/postgres.
package tx

import (
	"tenantpress/internal/core/tenant"
)

// ReadOnly is a handle to a transaction bound to one tenant.
type ReadOnly interface {
	// TenantID is the tenant the transaction's session is bound to.
	TenantID() tenant.ID
}

// ReadWrite is a handle to a transaction that may also mutate data.
//
// The unexported method cannot be declared outside this package, so the
// only way to satisfy ReadWrite is to embed Writable.
type ReadWrite interface {
	ReadOnly
	writable()
}

// Writable is the write capability marker. Embed it in a handle type
// that is handed out by a read-write transaction and by nothing else.
type Writable struct{}

func (Writable) writable() {}
