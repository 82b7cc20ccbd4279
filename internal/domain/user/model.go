// Package user contains the user value objects, DTOs and use cases.
//
// A user is either active (has an email) or deleted (only the display
// name survives, so authored articles and comments still render).
package user

import (
	"strconv"
	"strings"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/core/validation"
)

// ID identifies a user.
type ID int64

// ParseID validates a raw user ID.
func ParseID(v int64) (ID, error) {
	if err := validation.Var("user_id", v, "gte=0"); err != nil {
		return 0, err
	}
	return ID(v), nil
}

// ParseIDString parses a decimal user ID, e.g. from a path parameter.
func ParseIDString(s string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, apperror.NewFieldValidation("user_id", "must be an integer").WithCause(err)
	}
	return ParseID(v)
}

func (id ID) Int64() int64 { return int64(id) }

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// Name is a display name of 1 to 20 characters.
type Name string

// ParseName validates a display name.
func ParseName(s string) (Name, error) {
	if err := validation.Var("name", s, "min=1,max=20"); err != nil {
		return "", err
	}
	return Name(s), nil
}

// Email is the address of an active user.
type Email string

// ParseEmail validates an email address.
func ParseEmail(s string) (Email, error) {
	if err := validation.Var("email", s, "required,email"); err != nil {
		return "", err
	}
	return Email(s), nil
}
