package entity

import (
	"time"

	"github.com/google/uuid"
)

type HospitalStatus string

const (
	HospitalStatusPending  HospitalStatus = "pending"
	HospitalStatusApproved HospitalStatus = "approved"
	HospitalStatusRejected HospitalStatus = "rejected"
)

// Hospital owns doctor accounts and manages their schedules.
type Hospital struct {
	UserID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Address    string         `gorm:"type:text" json:"address,omitempty"`
	Phone      string         `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Status     HospitalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

func (h *Hospital) IsApproved() bool {
	return h.Status == HospitalStatusApproved
}
