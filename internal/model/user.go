// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an account that can sign in to the admin.
//
// Users sign in either with a password (accounts created by `conftrack user add`)
// or through GitHub OAuth. GitHubID is nil for password-only accounts, and
// PasswordHash is empty for GitHub-only accounts. Admin maps onto a
// mass-assignment Role via RoleFor.
type User struct {
	ID           string    `json:"id"        db:"id"`
	GitHubID     *int64    `json:"githubId"  db:"github_id"` // GitHub's numeric user ID, nil for password accounts
	Login        string    `json:"login"     db:"login"`
	Email        string    `json:"email"     db:"email"`
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`
	PasswordHash string    `json:"-"         db:"password_hash"` // bcrypt, never serialized
	Admin        bool      `json:"admin"     db:"admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Role returns the mass-assignment role the user acts under.
func (u *User) Role() Role {
	if u == nil {
		return RoleDefault
	}
	return RoleFor(u.Admin)
}
