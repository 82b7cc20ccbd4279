package dto

import (
	"tenantpress/internal/domain/user"
)

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToCreateActive converts the request into a validated domain input.
func (r CreateUserRequest) ToCreateActive() (user.CreateActive, error) {
	return user.NewCreateActive(r.Name, r.Email)
}
