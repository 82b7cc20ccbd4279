package user

import "tenantpress/internal/core/apperror"

// Status discriminates the Dto variants.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Dto is the user shape returned to callers.
// Active users carry ID and Email; deleted users carry only Name.
type Dto struct {
	Status Status `json:"status"`
	ID     ID     `json:"id,omitempty"`
	Name   Name   `json:"name"`
	Email  Email  `json:"email,omitempty"`
}

// NewActiveDto builds an active user Dto from raw values.
func NewActiveDto(id int64, name, email string) (Dto, error) {
	uid, err := ParseID(id)
	if err != nil {
		return Dto{}, err
	}
	n, err := ParseName(name)
	if err != nil {
		return Dto{}, err
	}
	e, err := ParseEmail(email)
	if err != nil {
		return Dto{}, err
	}
	return Dto{Status: StatusActive, ID: uid, Name: n, Email: e}, nil
}

// NewDeletedDto builds a deleted user Dto.
func NewDeletedDto(name string) (Dto, error) {
	n, err := ParseName(name)
	if err != nil {
		return Dto{}, err
	}
	return Dto{Status: StatusDeleted, Name: n}, nil
}

// IsActive reports whether the user is active.
func (d Dto) IsActive() bool { return d.Status == StatusActive }

// Validate re-checks the variant invariants.
func (d Dto) Validate() error {
	switch d.Status {
	case StatusActive:
		_, err := NewActiveDto(int64(d.ID), string(d.Name), string(d.Email))
		return err
	case StatusDeleted:
		if d.ID != 0 || d.Email != "" {
			return apperror.NewFieldValidation("status", "deleted user must not carry id or email")
		}
		_, err := ParseName(string(d.Name))
		return err
	default:
		return apperror.NewFieldValidation("status", "must be one of [active deleted]")
	}
}

// CreateActive is the input for registering a user.
type CreateActive struct {
	Name  Name
	Email Email
}

// NewCreateActive validates raw registration input.
func NewCreateActive(name, email string) (CreateActive, error) {
	n, err := ParseName(name)
	if err != nil {
		return CreateActive{}, err
	}
	e, err := ParseEmail(email)
	if err != nil {
		return CreateActive{}, err
	}
	return CreateActive{Name: n, Email: e}, nil
}
