package entity

import "github.com/google/uuid"

// DoctorFilter is a domain-level filter for the doctor directory.
type DoctorFilter struct {
	Speciality        string     // ILIKE match
	HospitalID        *uuid.UUID // doctors owned by a hospital
	IncludeUnapproved bool
}

// AppointmentScope selects a slice of the ledger. Nil fields are ignored;
// an empty scope selects every appointment.
type AppointmentScope struct {
	DoctorID   *uuid.UUID
	HospitalID *uuid.UUID
	PatientID  *uuid.UUID
}
