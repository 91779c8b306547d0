// Package models defines the data structures that map to database tables
// and the content lifecycle rules that operate on them.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role decides what an author may change besides their own content.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// Valid reports whether r is one of the roles the users table accepts.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleAuthor:
		return true
	}
	return false
}

// User is an author signing in to the content API. Content items record
// their author's ID.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Byline is the name shown for the author in logs: the display name, or
// the email when none is set.
func (u *User) Byline() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// CanManageTaxonomy reports whether the user may change categories and
// tags. Plain authors may only write content.
func (u *User) CanManageTaxonomy() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}
