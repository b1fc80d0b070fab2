package converter

import (
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
)

func HospitalToResponse(h *entity.Hospital) *dto.HospitalResponse {
	if h == nil {
		return nil
	}

	return &dto.HospitalResponse{
		ID:        h.UserID,
		Name:      h.Name,
		Email:     h.User.Email,
		Address:   h.Address,
		Phone:     h.Phone,
		Status:    string(h.Status),
		CreatedAt: h.CreatedAt,
	}
}

func HospitalsToResponses(hospitals []entity.Hospital) []dto.HospitalResponse {
	responses := make([]dto.HospitalResponse, len(hospitals))
	for i := range hospitals {
		responses[i] = *HospitalToResponse(&hospitals[i])
	}
	return responses
}
