package models

import "time"

// Role is the account type chosen at registration
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Label is the display name shown after a nickname
func (r Role) Label() string {
	switch r {
	case RoleParent:
		return "Parent"
	case RoleChild:
		return "Child"
	default:
		return ""
	}
}

// Color is the accent used for the role in the web UI
func (r Role) Color() string {
	switch r {
	case RoleParent:
		return "#1E90FF"
	case RoleChild:
		return "#FF8C00"
	default:
		return "#808080"
	}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleParent || r == RoleChild
}

// User represents a registered account, keyed by nickname
type User struct {
	Nickname     string    `db:"nickname" json:"nickname"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Avatar       string    `db:"avatar" json:"avatar,omitempty"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DisplayName renders "nickname (Role)"
func (u *User) DisplayName() string {
	if label := u.Role.Label(); label != "" {
		return u.Nickname + " (" + label + ")"
	}
	return u.Nickname
}

// Session represents an authenticated browser session
type Session struct {
	ID        string    `db:"id"`
	Nickname  string    `db:"nickname"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// IsExpiredAt reports whether the session is no longer valid at now
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
