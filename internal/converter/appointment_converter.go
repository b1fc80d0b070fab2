package converter

import (
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:               a.ID,
		DoctorID:         a.DoctorID,
		PatientID:        a.PatientID,
		SlotDate:         a.SlotDate.String(),
		SlotTime:         a.SlotTime.String(),
		Amount:           a.Amount.StringFixed(2),
		ConsultationMode: string(a.ConsultationMode),
		Description:      a.Description,
		VoiceNoteURL:     a.VoiceNoteURL,
		MeetingLink:      a.MeetingLink,
		Status:           string(a.Status()),
		Cancelled:        a.Cancelled,
		Payment:          a.Payment,
		IsCompleted:      a.IsCompleted,
		Rating:           a.Rating,
		Review:           a.Review,
		Doctor:           a.DoctorSnapshot,
		Patient:          a.PatientSnapshot,
		CreatedAt:        a.CreatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
