package postgres

import (
	"context"
	"fmt"
	"time"

	"tenantpress/internal/core/tenant"
	"tenantpress/pkg/logger"
)

// Rebind runs fn inside a savepoint of h's transaction with the session
// bound to tenantID. The savepoint is rolled back if fn fails and released
// otherwise; h's own tenant binding is restored in both cases.
//
// Test harnesses use it to act as several tenants inside one transaction
// that is rolled back at the end of the test.
func Rebind(ctx context.Context, h Writer, tenantID tenant.ID, fn func(ctx context.Context, h Writer) error) (err error) {
	rw, ok := h.(*ReadWriteTx)
	if !ok {
		return fmt.Errorf("rebind: unsupported handle %T", h)
	}
	t := rw.pgTx

	savepoint := fmt.Sprintf("sp_%d", time.Now().UnixNano())
	if _, err := t.Exec(ctx, "SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	defer func() {
		if _, rErr := t.Exec(ctx, bindTenantSQL, rw.tenantID.String()); rErr != nil && err == nil {
			err = fmt.Errorf("restore tenant: %w", rErr)
		}
	}()

	err = func() error {
		if _, err := t.Exec(ctx, bindTenantSQL, tenantID.String()); err != nil {
			return fmt.Errorf("bind tenant: %w", err)
		}
		inner := &ReadWriteTx{ReadOnlyTx: ReadOnlyTx{tenantID: tenantID, pgTx: t}}
		return fn(tenant.WithID(ctx, tenantID), inner)
	}()
	if err != nil {
		if _, rbErr := t.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			logger.Error(ctx, "rollback to savepoint failed", "savepoint", savepoint, "error", rbErr)
		}
		return err
	}

	if _, err := t.Exec(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
