package handler

import (
	"net/http"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/usecase"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/response"
)

type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
	}
}

func (h *AdminHandler) ListPendingHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.adminUsecase.ListPendingHospitals(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get pending hospitals")
		return
	}

	response.Success(w, http.StatusOK, "Pending hospitals retrieved successfully", hospitals)
}

func (h *AdminHandler) ApproveHospital(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	hospital, err := h.adminUsecase.ApproveHospital(r.Context(), p, hospitalID)
	if err != nil {
		writeError(w, err, "Failed to approve hospital")
		return
	}

	response.Success(w, http.StatusOK, "Hospital approved successfully", hospital)
}

func (h *AdminHandler) RejectHospital(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	hospital, err := h.adminUsecase.RejectHospital(r.Context(), p, hospitalID)
	if err != nil {
		writeError(w, err, "Failed to reject hospital")
		return
	}

	response.Success(w, http.StatusOK, "Hospital rejected successfully", hospital)
}

func (h *AdminHandler) ListPendingDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.adminUsecase.ListPendingDoctors(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get pending doctors")
		return
	}

	response.Success(w, http.StatusOK, "Pending doctors retrieved successfully", doctors)
}

func (h *AdminHandler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.adminUsecase.ApproveDoctor(r.Context(), p, doctorID)
	if err != nil {
		writeError(w, err, "Failed to approve doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor approved successfully", doctor)
}
