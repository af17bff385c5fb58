package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dental-booking/internal/calendar"
	"dental-booking/internal/converter"
	"dental-booking/internal/delivery/dto"
	"dental-booking/internal/delivery/http/middleware"
	"dental-booking/internal/domain/entity"
	"dental-booking/internal/domain/repository"
	"dental-booking/internal/infrastructure/metrics"
	"dental-booking/internal/service"
	"dental-booking/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const humanDateLayout = "Monday, January 2, 2006"

// DateLocker serializes booking writes for one calendar date
type DateLocker interface {
	LockDate(date time.Time) func()
}

type AppointmentOptions struct {
	// MinDaysAhead is how many days after today the first bookable date is
	MinDaysAhead int
	// StrictTransitions rejects status changes outside the lifecycle table
	StrictTransitions bool
}

type AppointmentUsecase interface {
	// Create books a website appointment for the logged-in patient
	Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	// CreateFromChatbot books for a guest, linking an existing account by email then phone
	CreateFromChatbot(ctx context.Context, req *dto.ChatbotAppointmentRequest) (*dto.AppointmentResponse, error)
	// CreateForGuest books a phone or walk-in appointment entered by staff
	CreateForGuest(ctx context.Context, req *dto.StaffAppointmentRequest) (*dto.AppointmentResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentResponse, error)
	CancelOwn(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetMine(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetAll(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	policy          *calendar.Policy
	clock           clock.Clock
	appointmentRepo repository.AppointmentRepository
	serviceRepo     repository.ServiceRepository
	userRepo        repository.UserRepository
	availability    AvailabilityUsecase
	dateLocker      DateLocker
	notifier        service.Notifier
	audit           service.AuditService
	metrics         *metrics.SchedulingMetrics
	opts            AppointmentOptions
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	policy *calendar.Policy,
	clk clock.Clock,
	appointmentRepo repository.AppointmentRepository,
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	availability AvailabilityUsecase,
	dateLocker DateLocker,
	notifier service.Notifier,
	audit service.AuditService,
	m *metrics.SchedulingMetrics,
	opts AppointmentOptions,
) AppointmentUsecase {
	if opts.MinDaysAhead < 0 {
		opts.MinDaysAhead = 0
	}
	return &appointmentUsecase{
		log:             log,
		policy:          policy,
		clock:           clk,
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		userRepo:        userRepo,
		availability:    availability,
		dateLocker:      dateLocker,
		notifier:        notifier,
		audit:           audit,
		metrics:         m,
		opts:            opts,
	}
}

// bookingCandidate is a requested appointment before validation
type bookingCandidate struct {
	patientID   *uuid.UUID
	guestName   string
	guestPhone  string
	guestEmail  string
	serviceID   *uuid.UUID
	serviceType string
	date        string
	time        string
	notes       string
	source      entity.AppointmentSource
}

func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	return u.book(ctx, bookingCandidate{
		patientID: &userID,
		serviceID: req.ServiceID,
		date:      req.Date,
		time:      req.Time,
		notes:     req.Notes,
		source:    entity.AppointmentSourceWebsite,
	})
}

func (u *appointmentUsecase) CreateFromChatbot(ctx context.Context, req *dto.ChatbotAppointmentRequest) (*dto.AppointmentResponse, error) {
	candidate := bookingCandidate{
		guestName:   strings.TrimSpace(req.Name),
		guestPhone:  strings.TrimSpace(req.Phone),
		guestEmail:  strings.ToLower(strings.TrimSpace(req.Email)),
		serviceType: strings.TrimSpace(req.ServiceType),
		date:        req.Date,
		time:        req.Time,
		notes:       req.Notes,
		source:      entity.AppointmentSourceChatbot,
	}

	if patient := u.findExistingPatient(ctx, candidate.guestEmail, candidate.guestPhone); patient != nil {
		candidate.patientID = &patient.ID
	}

	return u.book(ctx, candidate)
}

func (u *appointmentUsecase) CreateForGuest(ctx context.Context, req *dto.StaffAppointmentRequest) (*dto.AppointmentResponse, error) {
	source := entity.AppointmentSource(req.Source)
	if source != entity.AppointmentSourcePhone && source != entity.AppointmentSourceWalkIn {
		source = entity.AppointmentSourcePhone
	}

	return u.book(ctx, bookingCandidate{
		guestName:   strings.TrimSpace(req.GuestName),
		guestPhone:  strings.TrimSpace(req.GuestPhone),
		guestEmail:  strings.ToLower(strings.TrimSpace(req.GuestEmail)),
		serviceID:   req.ServiceID,
		serviceType: strings.TrimSpace(req.ServiceType),
		date:        req.Date,
		time:        req.Time,
		notes:       req.Notes,
		source:      source,
	})
}

// findExistingPatient looks an account up by email, then by phone. Lookup failures
// only cost the link, never the booking.
func (u *appointmentUsecase) findExistingPatient(ctx context.Context, email, phone string) *entity.User {
	if email != "" {
		user, err := u.userRepo.FindByEmail(ctx, email)
		if err != nil {
			u.log.Warnf("Failed to look up user by email: %+v", err)
		} else if user != nil {
			return user
		}
	}
	if phone != "" {
		user, err := u.userRepo.FindByPhone(ctx, phone)
		if err != nil {
			u.log.Warnf("Failed to look up user by phone: %+v", err)
		} else if user != nil {
			return user
		}
	}
	return nil
}

func (u *appointmentUsecase) book(ctx context.Context, c bookingCandidate) (*dto.AppointmentResponse, error) {
	appointment, err := u.insert(ctx, c)
	u.metrics.ObserveBooking(string(c.source), reasonLabel(err))
	if err != nil {
		return nil, err
	}

	if err := u.audit.LogCreate(ctx, middleware.ActorFromContext(ctx), entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), appointment); err != nil {
		u.log.Warnf("Failed to audit appointment %s creation: %+v", appointment.ID, err)
	}

	full, err := u.appointmentRepo.FindByID(ctx, appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}

	u.log.Infof("Appointment created: id=%s, date=%s, time=%s, source=%s", full.ID, full.DateString(), full.Time, full.Source)
	return converter.AppointmentToResponse(full), nil
}

// insert validates c and writes it as a pending appointment. The free-slot check
// and the write run under the date lock; the unique index catches other processes.
func (u *appointmentUsecase) insert(ctx context.Context, c bookingCandidate) (*entity.Appointment, error) {
	date, err := calendar.ParseDate(c.date)
	if err != nil {
		return nil, newValidationError(ErrInvalidDate, "Invalid date. Use the format YYYY-MM-DD.")
	}

	if err := u.validateSlot(date, c.time); err != nil {
		return nil, err
	}

	if c.serviceID != nil {
		svc, err := u.serviceRepo.FindByID(ctx, *c.serviceID)
		if err != nil {
			u.log.Warnf("Failed to find service %s: %+v", *c.serviceID, err)
			return nil, err
		}
		if svc == nil {
			return nil, ErrServiceNotFound
		}
	}

	unlock := u.dateLocker.LockDate(date)
	defer unlock()

	free, err := u.availability.IsSlotFree(ctx, date, c.time)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, slotTakenError()
	}

	appointment := &entity.Appointment{
		PatientID:   c.patientID,
		GuestName:   c.guestName,
		GuestPhone:  c.guestPhone,
		GuestEmail:  c.guestEmail,
		ServiceID:   c.serviceID,
		ServiceType: c.serviceType,
		Date:        date,
		Time:        c.time,
		Status:      entity.AppointmentStatusPending,
		Source:      c.source,
		Notes:       strings.TrimSpace(c.notes),
	}

	if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, slotTakenError()
		}
		u.log.Errorf("Failed to insert appointment: %+v", err)
		return nil, err
	}

	return appointment, nil
}

// validateSlot checks, in order: the clinic is open that day, the date is far
// enough ahead, the time is inside the opening window and on the slot grid.
func (u *appointmentUsecase) validateSlot(date time.Time, slot string) error {
	day := u.policy.DayPolicy(date)
	if !day.IsOpen {
		return newValidationError(ErrClinicClosed,
			fmt.Sprintf("Clinic is closed on %ss. Please select another day.", day.Weekday))
	}

	earliest := u.policy.Today(u.clock.Now()).AddDate(0, 0, u.opts.MinDaysAhead)
	if date.Before(earliest) {
		return newValidationError(ErrBeforeHorizon,
			fmt.Sprintf("Appointments can only be booked from %s onwards. Please select a later date.", earliest.Format(humanDateLayout)))
	}

	hour, minute, err := calendar.ParseSlot(slot)
	if err != nil {
		return newValidationError(ErrInvalidSlotTime, "Invalid time. Use the format HH:MM.")
	}

	if !u.policy.AllowsTime(date, hour, minute) {
		return newValidationError(ErrOutsideHours,
			fmt.Sprintf("Invalid time slot. %s clinic hours: %s", day.Weekday, day.HoursLabel()))
	}

	if !calendar.IsGridAligned(minute) {
		return newValidationError(ErrInvalidSlotTime, "Invalid time slot. Appointments start on the hour or half hour.")
	}

	return nil
}

func slotTakenError() *ValidationError {
	return newValidationError(ErrSlotTaken, "This time slot is already booked. Please select another time.")
}

func (u *appointmentUsecase) SetStatus(ctx context.Context, id uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentResponse, error) {
	if !status.IsValid() {
		return nil, newValidationError(ErrInvalidStatus,
			fmt.Sprintf("Invalid status %q. Use pending, approved, cancelled or completed.", status))
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return u.transition(ctx, appointment, status)
}

func (u *appointmentUsecase) transition(ctx context.Context, appointment *entity.Appointment, status entity.AppointmentStatus) (*dto.AppointmentResponse, error) {
	previous := appointment.Status
	if previous == status {
		return converter.AppointmentToResponse(appointment), nil
	}

	if u.opts.StrictTransitions && !previous.CanTransitionTo(status) {
		return nil, ErrIllegalTransition
	}

	if err := u.appointmentRepo.UpdateStatus(ctx, appointment.ID, status); err != nil {
		// Only reachable when a permissive update revives a cancelled appointment
		// whose slot has since been taken.
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, slotTakenError()
		}
		u.log.Warnf("Failed to update appointment %s status: %+v", appointment.ID, err)
		return nil, err
	}
	appointment.Status = status
	u.metrics.ObserveTransition(string(previous), string(status))

	switch status {
	case entity.AppointmentStatusApproved:
		u.notify(ctx, service.NotificationApproval, appointment)
	case entity.AppointmentStatusCancelled:
		u.notify(ctx, service.NotificationCancellation, appointment)
	}

	if err := u.audit.LogUpdate(ctx, middleware.ActorFromContext(ctx), entity.AuditActionAppointmentStatus, "appointment", appointment.ID.String(),
		map[string]interface{}{"status": previous}, map[string]interface{}{"status": status}); err != nil {
		u.log.Warnf("Failed to audit appointment %s status change: %+v", appointment.ID, err)
	}

	u.log.Infof("Appointment %s status changed: %s -> %s", appointment.ID, previous, status)
	return converter.AppointmentToResponse(appointment), nil
}

// notify sends a best-effort email; failures are logged and swallowed.
func (u *appointmentUsecase) notify(ctx context.Context, kind service.NotificationKind, appointment *entity.Appointment) {
	err := u.notifier.Send(ctx, kind, appointment.Contact(), service.NotificationDataFor(appointment))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoRecipient):
		u.log.Infof("No email available for appointment %s, skipping %s notification", appointment.ID, kind)
	default:
		u.log.Warnf("Failed to send %s notification for appointment %s: %+v", kind, appointment.ID, err)
	}
}

func (u *appointmentUsecase) CancelOwn(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsOwnedBy(userID) {
		return nil, ErrAppointmentNotOwned
	}

	return u.transition(ctx, appointment, entity.AppointmentStatusCancelled)
}

func (u *appointmentUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	u.notify(ctx, service.NotificationCancellation, appointment)

	if err := u.appointmentRepo.Delete(ctx, id); err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return err
	}

	if err := u.audit.LogDelete(ctx, middleware.ActorFromContext(ctx), entity.AuditActionAppointmentDelete, "appointment", id.String(), appointment); err != nil {
		u.log.Warnf("Failed to audit appointment %s deletion: %+v", id, err)
	}

	u.log.Infof("Appointment %s deleted", id)
	return nil
}

func (u *appointmentUsecase) GetMine(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	appointments, err := u.appointmentRepo.FindByPatientID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAll(ctx context.Context) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}
