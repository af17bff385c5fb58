package usecase

import (
	"context"
	"time"

	"dental-booking/internal/calendar"
	"dental-booking/internal/delivery/dto"
	"dental-booking/internal/domain/entity"
	"dental-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type AvailabilityUsecase interface {
	// ListAvailable returns the free grid slots of date in grid order plus every
	// non-cancelled booked time in booking order. Closed days never touch storage.
	ListAvailable(ctx context.Context, date time.Time) (*dto.AvailabilityResponse, error)
	IsSlotFree(ctx context.Context, date time.Time, slot string) (bool, error)
}

type availabilityUsecase struct {
	log             *logrus.Logger
	policy          *calendar.Policy
	appointmentRepo repository.AppointmentRepository
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	policy *calendar.Policy,
	appointmentRepo repository.AppointmentRepository,
) AvailabilityUsecase {
	return &availabilityUsecase{
		log:             log,
		policy:          policy,
		appointmentRepo: appointmentRepo,
	}
}

func (u *availabilityUsecase) ListAvailable(ctx context.Context, date time.Time) (*dto.AvailabilityResponse, error) {
	date = calendar.DateOf(date)
	day := u.policy.DayPolicy(date)

	result := &dto.AvailabilityResponse{
		Date:           date.Format(entity.DateLayout),
		Closed:         !day.IsOpen,
		ClinicHours:    day.HoursLabel(),
		AvailableSlots: []string{},
		BookedSlots:    []string{},
	}
	if !day.IsOpen {
		return result, nil
	}

	appointments, err := u.appointmentRepo.FindActiveByDate(ctx, date)
	if err != nil {
		u.log.Warnf("Failed to find appointments on %s: %+v", result.Date, err)
		return nil, err
	}

	booked := make(map[string]struct{}, len(appointments))
	for _, a := range appointments {
		booked[a.Time] = struct{}{}
		result.BookedSlots = append(result.BookedSlots, a.Time)
	}

	for _, slot := range u.policy.GenerateSlots(date) {
		if _, taken := booked[slot]; !taken {
			result.AvailableSlots = append(result.AvailableSlots, slot)
		}
	}

	return result, nil
}

func (u *availabilityUsecase) IsSlotFree(ctx context.Context, date time.Time, slot string) (bool, error) {
	existing, err := u.appointmentRepo.FindActiveBySlot(ctx, calendar.DateOf(date), slot)
	if err != nil {
		u.log.Warnf("Failed to check slot %s %s: %+v", date.Format(entity.DateLayout), slot, err)
		return false, err
	}
	return existing == nil, nil
}
