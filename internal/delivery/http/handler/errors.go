package handler

import (
	"errors"
	"net/http"

	"dental-booking/internal/usecase"
	"dental-booking/pkg/response"
)

// writeAppointmentError maps lifecycle errors to status codes. Validation
// failures keep their user-facing message; anything unknown becomes a 500
// with fallback as the message.
func writeAppointmentError(w http.ResponseWriter, err error, fallback string) {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		if errors.Is(verr, usecase.ErrSlotTaken) {
			response.Conflict(w, verr.Message)
			return
		}
		response.Error(w, http.StatusBadRequest, verr.Message, map[string]string{"reason": verr.Reason.Error()})
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrServiceNotFound):
		response.NotFound(w, "Service not found")
	case errors.Is(err, usecase.ErrIllegalTransition):
		response.Conflict(w, "This status change is not allowed")
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "You can only manage your own appointments")
	case errors.Is(err, usecase.ErrUserNotInContext):
		response.Unauthorized(w, "Invalid token")
	default:
		response.InternalServerError(w, fallback)
	}
}
