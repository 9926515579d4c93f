package model

import (
	"github.com/google/uuid"
)

// Role of a clinic user. Each role maps onto the service line it books by default.
type Role string

const (
	RoleDoctor      Role = "doctor"
	RoleEsthetician Role = "esthetician"
)

func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleEsthetician
}

// ServiceType returns the service line a user of this role books into.
func (r Role) ServiceType() ServiceType {
	switch r {
	case RoleEsthetician:
		return ServiceTypeEsthetician
	case RoleDoctor:
		return ServiceTypeDoctor
	default:
		return ""
	}
}

// User represents a clinic staff account
type User struct {
	Base
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Name         string `json:"name" db:"name"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Name     string    `json:"name"`
}

func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role, Name: u.Name}
}
