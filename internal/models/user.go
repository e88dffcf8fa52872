package models

import (
	"time"
)

// User represents an account allowed to work with the inventory
type User struct {
	ID                   int64     `json:"id" db:"id"`
	Username             string    `json:"username" db:"username"`
	Name                 string    `json:"name" db:"name"`
	PasswordHash         string    `json:"-" db:"password"` // Never expose in JSON
	PendingPasswordReset bool      `json:"pendingPasswordReset" db:"pending_password_reset"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`
}

// RegisterRequest represents the request body for creating a new user.
// Fields are pointers so a missing key can be told apart from an empty one.
type RegisterRequest struct {
	Username *string `json:"username" validate:"required,min=1,max=16"`
	Name     *string `json:"name" validate:"required,min=1,max=32"`
	Password *string `json:"password" validate:"required,min=1,max=50,password"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Username *string `json:"username" validate:"required,min=1,max=16"`
	Password *string `json:"password" validate:"required,min=1,max=50"`
}

// Redacted returns a copy of the user with sensitive fields removed
func (u *User) Redacted() User {
	return User{
		ID:                   u.ID,
		Username:             u.Username,
		Name:                 u.Name,
		PendingPasswordReset: u.PendingPasswordReset,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
