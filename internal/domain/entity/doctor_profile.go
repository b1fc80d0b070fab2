package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	HospitalID  *uuid.UUID      `gorm:"type:uuid;index" json:"hospital_id,omitempty"`
	Speciality  string          `gorm:"type:varchar(100);not null;index" json:"speciality"`
	Degree      string          `gorm:"type:varchar(100)" json:"degree,omitempty"`
	Experience  string          `gorm:"type:varchar(50)" json:"experience,omitempty"`
	About       string          `gorm:"type:text" json:"about,omitempty"`
	Fees        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fees"`
	Address     string          `gorm:"type:text" json:"address,omitempty"`
	Available   bool            `gorm:"not null" json:"available"`
	Approved    bool            `gorm:"not null;default:false;index" json:"approved"`
	Rating      float64         `gorm:"not null;default:0" json:"rating"`
	RatingCount int             `gorm:"not null;default:0" json:"rating_count"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID;references:UserID" json:"hospital,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// IsBookable reports whether patients may book the doctor right now.
func (d *DoctorProfile) IsBookable() bool {
	return d.Available && d.Approved
}

// ManagedBy reports whether the principal may edit this doctor's schedule.
func (d *DoctorProfile) ManagedBy(p Principal) bool {
	switch {
	case p.IsAdmin():
		return true
	case p.IsDoctor():
		return p.UserID == d.UserID
	case p.IsHospital():
		return d.HospitalID != nil && *d.HospitalID == p.UserID
	}
	return false
}
