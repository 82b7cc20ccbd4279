package user_repo

import (
	"tenantpress/internal/domain/user"
)

// Row is a user joined with its optional active state.
// Email is NULL for deleted users.
type Row struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	Email *string `db:"email"`
}

// ToDto converts a persisted row into a validated user.Dto.
func ToDto(r Row) (user.Dto, error) {
	if r.Email != nil {
		return user.NewActiveDto(r.ID, r.Name, *r.Email)
	}
	return user.NewDeletedDto(r.Name)
}
