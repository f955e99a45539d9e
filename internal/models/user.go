package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID        int64
	Name      string
	Role      string
	SessionID string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsAuthenticated() bool {
	return p.ID != 0
}
