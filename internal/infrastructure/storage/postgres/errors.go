package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the service reacts to.
const (
	CodeInsufficientPrivilege = "42501"
	CodeForeignKeyViolation   = "23503"
	CodeUniqueViolation       = "23505"
	CodeQueryCanceled         = "57014"
)

// PgErrorCode returns the SQLSTATE of err, or "" if err is not a server error.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsRowLevelSecurityViolation reports whether err is a rejected write
// by a row-level security policy.
func IsRowLevelSecurityViolation(err error) bool {
	return PgErrorCode(err) == CodeInsufficientPrivilege
}

func IsForeignKeyViolation(err error) bool {
	return PgErrorCode(err) == CodeForeignKeyViolation
}

func IsUniqueViolation(err error) bool {
	return PgErrorCode(err) == CodeUniqueViolation
}

// IsStatementTimeout reports whether the server cancelled a statement,
// e.g. because of statement_timeout.
func IsStatementTimeout(err error) bool {
	return PgErrorCode(err) == CodeQueryCanceled
}

// ConstraintName returns the violated constraint of err, or "".
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
