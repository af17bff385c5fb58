package usecase

import "errors"

// Booking validation reasons. They reach callers wrapped in a *ValidationError.
var (
	ErrInvalidDate     = errors.New("invalid appointment date")
	ErrClinicClosed    = errors.New("clinic is closed on this day")
	ErrBeforeHorizon   = errors.New("date is before the booking horizon")
	ErrOutsideHours    = errors.New("time is outside clinic hours")
	ErrInvalidSlotTime = errors.New("time is not a valid slot")
	ErrSlotTaken       = errors.New("slot is already booked")
	ErrInvalidStatus   = errors.New("unknown appointment status")
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrIllegalTransition   = errors.New("status change is not allowed")
	ErrAppointmentNotOwned = errors.New("appointment does not belong to you")
	ErrUserNotInContext    = errors.New("user not found in context")
)

// ValidationError carries a reason sentinel and the message shown to the user
type ValidationError struct {
	Reason  error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func newValidationError(reason error, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

// reasonLabel names a booking outcome for metrics
func reasonLabel(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrClinicClosed):
		return "clinic_closed"
	case errors.Is(err, ErrBeforeHorizon):
		return "before_horizon"
	case errors.Is(err, ErrOutsideHours):
		return "outside_hours"
	case errors.Is(err, ErrInvalidSlotTime):
		return "invalid_slot"
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, ErrServiceNotFound):
		return "service_not_found"
	}
	return "error"
}
