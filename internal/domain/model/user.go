package model

import "time"

// Role defines what a storefront user is allowed to do.
type Role string

const (
	RoleBuyer Role = "buyer"
	RoleAdmin Role = "admin"
)

// Valid reports whether role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleAdmin
}

// User represents a registered storefront account.
type User struct {
	ID           int64
	Login        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// DisplayName returns the name shown next to orders.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// Session is the verified identity behind a request.
type Session struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
