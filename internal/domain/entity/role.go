package entity

import "github.com/google/uuid"

// Role is the single role a user account holds
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
