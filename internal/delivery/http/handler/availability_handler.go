package handler

import (
	"net/http"

	"dental-booking/internal/calendar"
	"dental-booking/internal/usecase"
	"dental-booking/pkg/response"
	"dental-booking/pkg/validator"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// GetAvailableSlots lists free and booked slots for a date
// @Summary Available slots for a date
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /available-slots [get]
func (h *AvailabilityHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if err := h.validator.Var(raw, "required,calendar_date"); err != nil {
		response.BadRequest(w, "Invalid date. Use the format YYYY-MM-DD.")
		return
	}

	date, err := calendar.ParseDate(raw)
	if err != nil {
		response.BadRequest(w, "Invalid date. Use the format YYYY-MM-DD.")
		return
	}

	availability, err := h.availabilityUsecase.ListAvailable(r.Context(), date)
	if err != nil {
		response.InternalServerError(w, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", availability)
}
