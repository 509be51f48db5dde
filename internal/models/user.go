package models

import "time"

// RoleMember is the default role assigned at registration.
const RoleMember = "member"

// RoleAdmin may update or delete any post and any profile.
const RoleAdmin = "admin"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
