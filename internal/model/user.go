// Package model defines domain entities for the application.
//
// Struct tags drive the serializer layer:
//   - json:     wire name of the field
//   - db:       column name
//   - validate: go-playground/validator rules applied on write
//   - field:    serializer options (readonly, required, label=..., fk=...)
package model

import "github.com/oklog/ulid/v2"

// User is an account that receivers can point at.
type User struct {
	ID       string  `json:"id" db:"id" field:"readonly,label=ID"`
	Email    string  `json:"email" db:"email" field:"required" validate:"required,email"`
	IsActive bool    `json:"is_active" db:"is_active" field:"required"`
	Phone    string  `json:"phone" db:"phone" field:"required" validate:"required,max=20"`
	First    *string `json:"first" db:"first" validate:"omitempty,max=20"`
}

// GetID returns the user identifier.
func (u *User) GetID() string { return u.ID }

// SetID assigns the user identifier.
func (u *User) SetID(id string) { u.ID = id }

// NewID returns a new lexicographically sortable identifier.
func NewID() string {
	return ulid.Make().String()
}
