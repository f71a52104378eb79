package domain

import (
	"strings"
	"time"
)

// Role is the access level of a user.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// ParseRole accepts roles case-insensitively; CLIENTE is kept as an alias of CLIENT.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN":
		return RoleAdmin, true
	case "CLIENT", "CLIENTE":
		return RoleClient, true
	}
	return "", false
}

// User models a registered buyer or administrator.
type User struct {
	ID        string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may mutate events.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
