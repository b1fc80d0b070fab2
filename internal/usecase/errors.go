package usecase

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers translate these to status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrDoctorUnavailable  = errors.New("doctor is not available for booking")
	ErrSlotUnavailable    = errors.New("slot is not available")
	ErrMissingDescription = errors.New("a description or a voice note is required")
	ErrAlreadyRated       = errors.New("appointment is already rated")
	ErrNotEligible        = errors.New("appointment is not eligible")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrUpstreamFailure    = errors.New("upstream service failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
)

var (
	ErrAppointmentNotFound = fmt.Errorf("appointment %w", ErrNotFound)
	ErrDoctorNotFound      = fmt.Errorf("doctor %w", ErrNotFound)
	ErrHospitalNotFound    = fmt.Errorf("hospital %w", ErrNotFound)
	ErrPatientNotFound     = fmt.Errorf("patient %w", ErrNotFound)
	ErrAuditLogNotFound    = fmt.Errorf("audit log %w", ErrNotFound)
	ErrCustomSlotsNotFound = fmt.Errorf("custom slots %w", ErrNotFound)

	ErrHospitalNotApproved = fmt.Errorf("%w: hospital is not approved", ErrForbidden)
	ErrEmailExists         = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrAlreadyReviewed     = fmt.Errorf("%w: already reviewed", ErrConflict)
	ErrInvalidFees         = fmt.Errorf("%w: fees must not be negative", ErrInvalidInput)
)

// upstream marks a collaborator failure.
func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamFailure, op, err)
}
