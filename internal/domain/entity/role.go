package entity

import "github.com/google/uuid"

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin    = 1
	RoleIDDoctor   = 2
	RoleIDPatient  = 3
	RoleIDHospital = 4
)

// RoleNames constants
const (
	RoleAdmin    = "admin"
	RoleDoctor   = "doctor"
	RolePatient  = "patient"
	RoleHospital = "hospital"
)

// Principal is the authenticated caller of a use case.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsDoctor() bool {
	return p.Role == RoleDoctor
}

func (p Principal) IsPatient() bool {
	return p.Role == RolePatient
}

func (p Principal) IsHospital() bool {
	return p.Role == RoleHospital
}

// Ref returns the user id as an audit actor reference.
func (p Principal) Ref() *uuid.UUID {
	id := p.UserID
	return &id
}
