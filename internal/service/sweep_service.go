package service

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"dental-booking/internal/calendar"
	"dental-booking/internal/domain/entity"
	"dental-booking/internal/domain/repository"
	"dental-booking/internal/infrastructure/metrics"
	"dental-booking/pkg/clock"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	// SweepLeaderLockKey ensures a single sweeping instance per minute
	SweepLeaderLockKey = "sweep:leader"

	defaultSweepCronSpec  = "* * * * *"
	fallbackSweepCronSpec = "@every 1m"
)

// Sweep windows, in whole minutes before the appointment starts (inclusive)
const (
	reminderWindowFrom   = 59
	reminderWindowTo     = 61
	autoCancelWindowFrom = 14
	autoCancelWindowTo   = 16
)

// SweepResult summarises one tick
type SweepResult struct {
	Scanned       int
	Skipped       int
	Reminders     int
	AutoCancelled int
	Failures      int
}

// SweepOptions tunes the scheduler; zero values take the defaults.
type SweepOptions struct {
	CronSpec string
	LockTTL  time.Duration
	// IncludeGuests also sweeps bookings that have a reachable guest contact
	// but no linked patient or service.
	IncludeGuests bool
}

// SweepService reminds patients whose appointment is still pending an hour
// ahead and auto-cancels it fifteen minutes ahead.
type SweepService struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	notifier        Notifier
	dedup           DedupStore
	locker          Locker
	audit           AuditService
	policy          *calendar.Policy
	clock           clock.Clock
	metrics         *metrics.SchedulingMetrics
	opts            SweepOptions

	running atomic.Bool
	cron    *cron.Cron
	runCtx  context.Context
	cancel  context.CancelFunc
}

// NewSweepService wires the sweep. locker may be nil when Redis is not
// configured; overlapping ticks in this process are skipped either way.
func NewSweepService(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	notifier Notifier,
	dedup DedupStore,
	locker Locker,
	audit AuditService,
	policy *calendar.Policy,
	clk clock.Clock,
	m *metrics.SchedulingMetrics,
	opts SweepOptions,
) *SweepService {
	if opts.CronSpec == "" {
		opts.CronSpec = defaultSweepCronSpec
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 55 * time.Second
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &SweepService{
		log:             log,
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		dedup:           dedup,
		locker:          locker,
		audit:           audit,
		policy:          policy,
		clock:           clk,
		metrics:         m,
		opts:            opts,
	}
}

// Start schedules RunOnce on the cron spec. An invalid spec falls back to
// once a minute.
func (s *SweepService) Start(ctx context.Context) {
	s.runCtx, s.cancel = context.WithCancel(ctx)
	c := cron.New()
	_, err := c.AddFunc(s.opts.CronSpec, func() { s.RunOnce(s.runCtx) })
	if err != nil {
		s.log.Warnf("Invalid sweep cron spec %q, falling back to %s: %+v", s.opts.CronSpec, fallbackSweepCronSpec, err)
		c = cron.New()
		_, _ = c.AddFunc(fallbackSweepCronSpec, func() { s.RunOnce(s.runCtx) })
	}
	c.Start()
	s.cron = c
	s.log.Infof("Appointment sweep scheduled (%s)", s.opts.CronSpec)
}

// Stop cancels in-flight work and waits for a running tick to return.
func (s *SweepService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info("Appointment sweep stopped")
	}
}

// RunOnce performs a guarded tick: it is skipped while the previous tick is
// still running here or while another instance holds the leader lease.
func (s *SweepService) RunOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("Previous sweep still running, skipping tick")
		s.metrics.ObserveSweepTick("skipped", 0)
		return
	}
	defer s.running.Store(false)

	var token string
	if s.locker != nil {
		acquired, t, err := s.locker.TryLock(ctx, SweepLeaderLockKey, s.opts.LockTTL)
		if err != nil {
			s.log.Warnf("Sweep leader lock attempt failed: %+v", err)
			s.metrics.ObserveSweepTick("error", 0)
			return
		}
		if !acquired {
			s.log.Debug("Sweep leader lock held by another instance, skipping tick")
			s.metrics.ObserveSweepTick("skipped", 0)
			return
		}
		token = t
	}

	started := time.Now()
	result, err := s.Tick(ctx)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		s.log.Errorf("Sweep tick failed: %+v", err)
		s.metrics.ObserveSweepTick("error", elapsed)
		// Give the lease back so a peer can retry this minute.
		if s.locker != nil {
			if unlockErr := s.locker.Unlock(context.Background(), SweepLeaderLockKey, token); unlockErr != nil {
				s.log.Warnf("Failed to release sweep leader lock: %+v", unlockErr)
			}
		}
		return
	}
	// On success the lease is left to expire so a peer whose cron fires
	// later in the same minute does not repeat the tick.

	s.metrics.ObserveSweepTick("ok", elapsed)
	if result.Reminders > 0 || result.AutoCancelled > 0 || result.Failures > 0 {
		s.log.WithFields(logrus.Fields{
			"scanned":        result.Scanned,
			"skipped":        result.Skipped,
			"reminders":      result.Reminders,
			"auto_cancelled": result.AutoCancelled,
			"failures":       result.Failures,
		}).Info("Sweep tick finished")
	}
}

// Tick scans pending appointments once. Per-appointment failures are logged
// and counted; only a failure to load the pending set is returned.
func (s *SweepService) Tick(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	appointments, err := s.appointmentRepo.FindPending(ctx)
	if err != nil {
		return result, err
	}

	now := s.clock.Now()
	for i := range appointments {
		a := &appointments[i]
		result.Scanned++

		if !s.sweepable(a) {
			result.Skipped++
			continue
		}

		startsAt, err := s.policy.At(a.Date, a.Time)
		if err != nil {
			s.log.Warnf("Appointment %s has unparseable time %q: %+v", a.ID, a.Time, err)
			result.Failures++
			continue
		}
		minutesUntil := int(math.Floor(startsAt.Sub(now).Minutes()))

		if minutesUntil >= reminderWindowFrom && minutesUntil <= reminderWindowTo {
			switch s.remind(ctx, a) {
			case actionDone:
				result.Reminders++
			case actionFailed:
				result.Failures++
			}
		}

		if minutesUntil >= autoCancelWindowFrom && minutesUntil <= autoCancelWindowTo {
			switch s.autoCancel(ctx, a) {
			case actionDone:
				result.AutoCancelled++
			case actionFailed:
				result.Failures++
			}
		}
	}

	return result, nil
}

// sweepable mirrors the booking rules for who gets reminded: a linked patient
// and a linked service, or any reachable guest when IncludeGuests is set.
func (s *SweepService) sweepable(a *entity.Appointment) bool {
	if a.Patient != nil && a.Service != nil {
		return true
	}
	if !s.opts.IncludeGuests {
		return false
	}
	contact := a.Contact()
	return contact != nil && contact.Email() != ""
}

type actionOutcome int

const (
	actionNoop actionOutcome = iota
	actionDone
	actionFailed
)

func (s *SweepService) remind(ctx context.Context, a *entity.Appointment) actionOutcome {
	key := DedupKey(a.ID, DedupActionReminder)
	logger := s.log.WithFields(logrus.Fields{"appointment_id": a.ID, "action": DedupActionReminder})

	claimed, err := s.dedup.Claim(ctx, key)
	if err != nil {
		logger.Warnf("Failed to claim dedup key: %+v", err)
		return actionFailed
	}
	if !claimed {
		return actionNoop
	}

	err = s.notifier.Send(ctx, NotificationPendingReminder, a.Contact(), NotificationDataFor(a))
	if errors.Is(err, ErrNoRecipient) {
		logger.Info("No email address on file, reminder skipped")
		return actionNoop
	}
	s.metrics.ObserveSweepAction("reminder", err)
	if err != nil {
		logger.Warnf("Failed to send pending reminder: %+v", err)
		s.release(ctx, key, logger)
		return actionFailed
	}

	logger.Info("Pending reminder sent")
	return actionDone
}

func (s *SweepService) autoCancel(ctx context.Context, a *entity.Appointment) actionOutcome {
	key := DedupKey(a.ID, DedupActionAutoCancel)
	logger := s.log.WithFields(logrus.Fields{"appointment_id": a.ID, "action": DedupActionAutoCancel})

	claimed, err := s.dedup.Claim(ctx, key)
	if err != nil {
		logger.Warnf("Failed to claim dedup key: %+v", err)
		return actionFailed
	}
	if !claimed {
		return actionNoop
	}

	rows, err := s.appointmentRepo.CancelIfPending(ctx, a.ID)
	if err != nil {
		logger.Warnf("Failed to auto-cancel appointment: %+v", err)
		s.metrics.ObserveSweepAction("auto_cancel", err)
		s.release(ctx, key, logger)
		return actionFailed
	}
	if rows == 0 {
		logger.Info("Appointment no longer pending, auto-cancel skipped")
		return actionNoop
	}

	s.metrics.ObserveSweepAction("auto_cancel", nil)
	s.metrics.ObserveTransition(string(entity.AppointmentStatusPending), string(entity.AppointmentStatusCancelled))
	if s.audit != nil {
		_ = s.audit.LogUpdate(ctx, nil, entity.AuditActionAppointmentAutoCancel, "appointment", a.ID.String(),
			entity.JSON{"status": entity.AppointmentStatusPending},
			entity.JSON{"status": entity.AppointmentStatusCancelled})
	}

	// The status change stands even if the email does not go out.
	if err := s.notifier.Send(ctx, NotificationCancellation, a.Contact(), NotificationDataFor(a)); err != nil {
		logger.Warnf("Appointment auto-cancelled but cancellation email failed: %+v", err)
	} else {
		logger.Info("Appointment auto-cancelled")
	}
	return actionDone
}

func (s *SweepService) release(ctx context.Context, key string, logger *logrus.Entry) {
	if err := s.dedup.Release(ctx, key); err != nil {
		logger.Warnf("Failed to release dedup key: %+v", err)
	}
}
