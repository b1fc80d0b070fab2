package converter

import (
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"
)

// DoctorToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorToResponse(d *entity.DoctorProfile) *dto.DoctorResponse {
	if d == nil {
		return nil
	}

	resp := &dto.DoctorResponse{
		ID:          d.UserID,
		Name:        d.User.FullName,
		Email:       d.User.Email,
		ImageURL:    d.User.ImageURL,
		Speciality:  d.Speciality,
		Degree:      d.Degree,
		Experience:  d.Experience,
		About:       d.About,
		Fees:        d.Fees.StringFixed(2),
		Address:     d.Address,
		Available:   d.Available,
		Approved:    d.Approved,
		Rating:      d.Rating,
		RatingCount: d.RatingCount,
		HospitalID:  d.HospitalID,
	}
	if d.Hospital != nil {
		resp.HospitalName = d.Hospital.Name
	}
	return resp
}

func DoctorsToResponses(doctors []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}

// DoctorSnapshotOf captures the doctor as shown on a new appointment.
func DoctorSnapshotOf(d *entity.DoctorProfile) entity.DoctorSnapshot {
	snapshot := entity.DoctorSnapshot{
		Name:       d.User.FullName,
		Email:      d.User.Email,
		ImageURL:   d.User.ImageURL,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Address:    d.Address,
		Fees:       d.Fees.StringFixed(2),
	}
	if d.Hospital != nil {
		snapshot.HospitalName = d.Hospital.Name
	}
	return snapshot
}

func ReviewsToResponses(reviews []entity.Review) []dto.ReviewResponse {
	responses := make([]dto.ReviewResponse, len(reviews))
	for i, r := range reviews {
		responses[i] = dto.ReviewResponse{
			PatientID:   r.PatientID,
			PatientName: r.PatientName,
			Rating:      r.Rating,
			Review:      r.Review,
			CreatedAt:   r.CreatedAt,
		}
	}
	return responses
}

// BookedSlotsToMap groups booked slots into date-key -> times.
func BookedSlotsToMap(booked []entity.BookedSlot) map[string][]string {
	out := make(map[string][]string)
	for _, b := range booked {
		key := b.SlotDate.String()
		out[key] = append(out[key], b.SlotTime.String())
	}
	return out
}

func CustomSlotsToMap(customs []entity.CustomSlot) map[string][]string {
	out := make(map[string][]string, len(customs))
	for _, c := range customs {
		out[c.SlotDate.String()] = TimeSlotsToStrings(c.Times)
	}
	return out
}

func TimeSlotsToStrings(times []slot.TimeSlot) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.String()
	}
	return out
}
