package handler

import (
	"errors"
	"net/http"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/http/middleware"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/usecase"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps a usecase error kind onto a status code. Anything without a
// known kind becomes a 500 with the fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrSlotUnavailable),
		errors.Is(err, usecase.ErrDoctorUnavailable),
		errors.Is(err, usecase.ErrAlreadyRated),
		errors.Is(err, usecase.ErrConflict):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrMissingDescription),
		errors.Is(err, usecase.ErrInvalidRating),
		errors.Is(err, usecase.ErrNotEligible),
		errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, slot.ErrInvalidDateKey),
		errors.Is(err, slot.ErrInvalidTimeSlot):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrUpstreamFailure):
		response.BadGateway(w, "A downstream service is unavailable, try again")
	default:
		response.InternalServerError(w, fallback)
	}
}

// principal returns the caller set by AuthMiddleware. Routes that reach a
// handler without one are misconfigured, so it answers 401 and reports false.
func principal(w http.ResponseWriter, r *http.Request) (entity.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
	}
	return p, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
