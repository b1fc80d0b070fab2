package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/usecase"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/response"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/validator"

	"github.com/gorilla/mux"
)

type SlotHandler struct {
	calendarUsecase usecase.SlotCalendarUsecase
	validator       *validator.CustomValidator
}

func NewSlotHandler(calendarUsecase usecase.SlotCalendarUsecase, validator *validator.CustomValidator) *SlotHandler {
	return &SlotHandler{
		calendarUsecase: calendarUsecase,
		validator:       validator,
	}
}

// GetSlots answers GET /doctors/{id}/slots?date=D_M_YYYY.
func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date query parameter is required")
		return
	}

	slots, err := h.calendarUsecase.GetSlotsForDate(r.Context(), doctorID, date)
	if err != nil {
		writeError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

func (h *SlotHandler) GetCustomSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	custom, err := h.calendarUsecase.GetCustomSlots(r.Context(), doctorID, mux.Vars(r)["date"])
	if err != nil {
		writeError(w, err, "Failed to get custom slots")
		return
	}

	response.Success(w, http.StatusOK, "Custom slots retrieved successfully", custom)
}

func (h *SlotHandler) SetCustomSlots(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	var req dto.SetCustomSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	custom, err := h.calendarUsecase.SetCustomSlots(r.Context(), p, doctorID, &req)
	if err != nil {
		writeError(w, err, "Failed to set custom slots")
		return
	}

	response.Success(w, http.StatusOK, "Custom slots saved successfully", custom)
}

func (h *SlotHandler) ClearCustomSlots(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	if err := h.calendarUsecase.ClearCustomSlots(r.Context(), p, doctorID, mux.Vars(r)["date"]); err != nil {
		writeError(w, err, "Failed to clear custom slots")
		return
	}

	response.Success(w, http.StatusOK, "Custom slots cleared successfully", nil)
}
