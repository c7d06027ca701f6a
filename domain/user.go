package domain

import (
	"slices"
	"time"
)

// User represents an authenticated identity in the platform.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash []byte     `json:"-"`
	Roles        []string   `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = slices.Clone(u.PasswordHash)
	c.Roles = slices.Clone(u.Roles)
	if u.LastLogin != nil {
		at := *u.LastLogin
		c.LastLogin = &at
	}
	return &c
}

func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}
