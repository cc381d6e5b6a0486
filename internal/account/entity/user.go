package entity

import "time"

// User represents a row in the `users` table. The password hash never leaves
// the account package in serialized form.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	Group        string    `db:"grp" json:"group"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsSuperuser  bool      `db:"is_superuser" json:"is_superuser"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// PublicUser is the projection exposed by API responses and embedded into
// token claims. No credential material.
type PublicUser struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Group       string `json:"group"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Public returns the exposable projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Group:       u.Group,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
}

// DefaultGroup is assigned when a create request leaves the group empty.
const DefaultGroup = "users"
