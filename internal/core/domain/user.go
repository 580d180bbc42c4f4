package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleStandard = "standard"
)

var ErrUserNotFound = errors.New("user not found")
var ErrMissingFields = errors.New("missing required fields")

// User models an account resolved by its email plus opaque API token.
// The chat handshake never mutates users.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	APIToken  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the admin role. Admin grants
// access to the admin usage routes only; it does not bypass profile
// visibility (see Profile.AccessibleBy).
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
