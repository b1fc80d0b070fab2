package converter

import (
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
)

func PatientProfileToResponse(p *entity.PatientProfile) *dto.PatientProfileResponse {
	if p == nil {
		return nil
	}

	return &dto.PatientProfileResponse{
		UserID:      p.UserID,
		FullName:    p.User.FullName,
		Email:       p.User.Email,
		PhoneNumber: p.PhoneNumber,
		Gender:      p.Gender,
		DateOfBirth: p.DateOfBirth,
		Address:     p.Address,
	}
}

// PatientSnapshotOf captures the patient as shown on a new appointment.
// A patient without a profile row is snapshotted from the user alone.
func PatientSnapshotOf(user *entity.User, profile *entity.PatientProfile) entity.PatientSnapshot {
	snapshot := entity.PatientSnapshot{
		Name:  user.FullName,
		Email: user.Email,
	}
	if profile != nil {
		snapshot.PhoneNumber = profile.PhoneNumber
		snapshot.Gender = profile.Gender
		if profile.DateOfBirth != nil {
			snapshot.DateOfBirth = profile.DateOfBirth.Format("2006-01-02")
		}
	}
	return snapshot
}
