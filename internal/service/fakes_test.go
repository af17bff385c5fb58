package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"dental-booking/internal/domain/entity"
	"dental-booking/internal/domain/repository"
	"dental-booking/internal/infrastructure/mailer"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeAppointmentRepo struct {
	mu               sync.Mutex
	items            map[uuid.UUID]*entity.Appointment
	order            []uuid.UUID
	findPendingCalls int
	findPendingErr   error
	cancelErr        error
}

func newFakeAppointmentRepo(appointments ...*entity.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{items: make(map[uuid.UUID]*entity.Appointment)}
	for _, a := range appointments {
		_ = r.Create(context.Background(), a)
	}
	return r
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = entity.AppointmentStatusPending
	}
	cp := *a
	r.items[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) filter(keep func(*entity.Appointment) bool) []entity.Appointment {
	var out []entity.Appointment
	for _, id := range r.order {
		if a, ok := r.items[id]; ok && keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (r *fakeAppointmentRepo) FindActiveByDate(_ context.Context, date time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := date.Format(entity.DateLayout)
	return r.filter(func(a *entity.Appointment) bool {
		return a.DateString() == day && !a.IsCancelled()
	}), nil
}

func (r *fakeAppointmentRepo) FindActiveBySlot(_ context.Context, date time.Time, slot string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := date.Format(entity.DateLayout)
	found := r.filter(func(a *entity.Appointment) bool {
		return a.DateString() == day && a.Time == slot && !a.IsCancelled()
	})
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *fakeAppointmentRepo) FindPending(_ context.Context) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findPendingCalls++
	if r.findPendingErr != nil {
		return nil, r.findPendingErr
	}
	return r.filter(func(a *entity.Appointment) bool { return a.IsPending() }), nil
}

func (r *fakeAppointmentRepo) FindByPatientID(_ context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(a *entity.Appointment) bool { return a.IsOwnedBy(patientID) }), nil
}

func (r *fakeAppointmentRepo) FindAll(_ context.Context) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(func(*entity.Appointment) bool { return true })
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].DateString() != all[j].DateString() {
			return all[i].DateString() < all[j].DateString()
		}
		return all[i].Time < all[j].Time
	})
	return all, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.items[id]; ok {
		a.Status = status
	}
	return nil
}

func (r *fakeAppointmentRepo) CancelIfPending(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelErr != nil {
		return 0, r.cancelErr
	}
	a, ok := r.items[id]
	if !ok || !a.IsPending() {
		return 0, nil
	}
	a.Status = entity.AppointmentStatusCancelled
	return 1, nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeAppointmentRepo) status(id uuid.UUID) entity.AppointmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Status
}

var _ repository.AppointmentRepository = (*fakeAppointmentRepo)(nil)

type sentNotification struct {
	kind  NotificationKind
	email string
	data  NotificationData
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []sentNotification
	failures int // number of upcoming sends that fail
}

func (n *fakeNotifier) Send(_ context.Context, kind NotificationKind, recipient entity.Contact, data NotificationData) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if recipient == nil || recipient.Email() == "" {
		return ErrNoRecipient
	}
	if n.failures > 0 {
		n.failures--
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentNotification{kind: kind, email: recipient.Email(), data: data})
	return nil
}

func (n *fakeNotifier) count(kind NotificationKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.kind == kind {
			c++
		}
	}
	return c
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
	err  error
}

func (r *fakeAuditRepo) Create(_ context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(context.Context) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditLog(nil), r.logs...), nil
}

func (r *fakeAuditRepo) FindByID(_ context.Context, id int64) (*entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			cp := r.logs[i]
			return &cp, nil
		}
	}
	return nil, nil
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}
