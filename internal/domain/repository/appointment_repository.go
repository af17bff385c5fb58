package repository

import (
	"context"
	"errors"
	"time"

	"dental-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDuplicateSlot is returned by Create when another active appointment already
// holds the same date and time.
var ErrDuplicateSlot = errors.New("an active appointment already holds this slot")

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	// FindActiveByDate returns non-cancelled appointments on date in creation order.
	FindActiveByDate(ctx context.Context, date time.Time) ([]entity.Appointment, error)
	// FindActiveBySlot returns the non-cancelled appointment at date/slot, or nil.
	FindActiveBySlot(ctx context.Context, date time.Time, slot string) (*entity.Appointment, error)
	// FindPending returns pending appointments with patient and service loaded.
	FindPending(ctx context.Context) ([]entity.Appointment, error)
	FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)
	FindAll(ctx context.Context) ([]entity.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.AppointmentStatus) error
	// CancelIfPending cancels only while the appointment is still pending.
	// Returns affected rows: 1 = cancelled, 0 = no longer pending.
	CancelIfPending(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
