// Package tenant defines the tenant identity that every row and every
// transaction in the service is scoped to.
//
// All tenants share one PostgreSQL database; isolation is enforced by
// row-level security policies that compare each row's tenant_id with the
// session setting bound by the transaction executor.
package tenant

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"tenantpress/internal/core/apperror"
)

// ID identifies a tenant. The zero value is not a valid tenant.
type ID uuid.UUID

// NilID is the zero ID.
var NilID ID

// NewID generates a new time-ordered (v7) tenant ID.
func NewID() ID {
	u, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return ID(uuid.New())
	}
	return ID(u)
}

// ParseID validates s as a tenant ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return NilID, apperror.NewFieldValidation("tenant_id", "must be a UUID").
			WithDetail("value", s)
	}
	if u == uuid.Nil {
		return NilID, apperror.NewFieldValidation("tenant_id", "must not be the nil UUID")
	}
	return ID(u), nil
}

// MustParseID parses s or panics. Use only for constants and tests.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical lower-case form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero ID.
func (id ID) IsNil() bool {
	return id == NilID
}

// UUID returns the underlying UUID.
func (id ID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// Value implements driver.Valuer so IDs can be passed as query arguments.
func (id ID) Value() (driver.Value, error) {
	if id.IsNil() {
		return nil, fmt.Errorf("tenant: nil id")
	}
	return id.String(), nil
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src any) error {
	var u uuid.UUID
	if err := u.Scan(src); err != nil {
		return fmt.Errorf("tenant: scan id: %w", err)
	}
	*id = ID(u)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Tenant represents a row of the tenants table.
type Tenant struct {
	ID        ID        `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MaxNameLength bounds tenant display names.
const MaxNameLength = 100

// CreateInput contains data for creating a new tenant.
type CreateInput struct {
	// ID is optional; a v7 UUID is generated when nil.
	ID   ID
	Name string
}

// Validate checks if input is valid.
func (i *CreateInput) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return apperror.NewFieldValidation("name", "is required")
	}
	if utf8.RuneCountInString(i.Name) > MaxNameLength {
		return apperror.NewFieldValidation("name", fmt.Sprintf("must be %d characters or less", MaxNameLength))
	}
	return nil
}
