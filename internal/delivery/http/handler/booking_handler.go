package handler

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/usecase"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/response"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/validator"

	"github.com/google/uuid"
)

const maxVoiceNoteBytes = 10 << 20

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	ratingUsecase  usecase.RatingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, ratingUsecase usecase.RatingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		ratingUsecase:  ratingUsecase,
		validator:      validator,
	}
}

// Book accepts either a JSON body or a multipart form carrying a voice_note file.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.BookAppointmentRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxVoiceNoteBytes+(1<<20))
		if err := r.ParseMultipartForm(maxVoiceNoteBytes); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		doctorID, err := uuid.Parse(r.FormValue("doctor_id"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
			return
		}
		req = dto.BookAppointmentRequest{
			DoctorID:         doctorID,
			SlotDate:         r.FormValue("slot_date"),
			SlotTime:         r.FormValue("slot_time"),
			ConsultationMode: r.FormValue("consultation_mode"),
			Description:      r.FormValue("description"),
		}

		file, header, err := r.FormFile("voice_note")
		switch {
		case err == nil:
			defer file.Close()
			req.VoiceNote = &gateway.Upload{
				Reader:      file,
				FileName:    header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
			}
		case err != http.ErrMissingFile:
			response.Error(w, http.StatusBadRequest, "Invalid voice note", nil)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.Book(r.Context(), p, &req)
	if err != nil {
		writeError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *BookingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.RateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.ratingUsecase.SubmitRating(r.Context(), p, appointmentID, &req)
	if err != nil {
		writeError(w, err, "Failed to submit rating")
		return
	}

	response.Success(w, http.StatusOK, "Rating submitted successfully", appointment)
}
