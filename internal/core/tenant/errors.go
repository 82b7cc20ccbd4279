package tenant

import "errors"

// ErrTenantNotFound is returned when tenant does not exist.
var ErrTenantNotFound = errors.New("tenant not found")
