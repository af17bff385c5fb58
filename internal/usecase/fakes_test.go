package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"dental-booking/internal/domain/entity"
	"dental-booking/internal/domain/repository"
	"dental-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeAppointmentRepo has no uniqueness of its own; double bookings are only
// prevented by the caller. createDelay widens the check-then-insert window.
type fakeAppointmentRepo struct {
	mu          sync.Mutex
	items       map[uuid.UUID]*entity.Appointment
	order       []uuid.UUID
	services    *fakeServiceRepo
	users       *fakeUserRepo
	createDelay time.Duration
	createErr   error
	findErr     error
	dateReads   int
}

func newFakeAppointmentRepo(services *fakeServiceRepo, users *fakeUserRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		items:    make(map[uuid.UUID]*entity.Appointment),
		services: services,
		users:    users,
	}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	if r.createDelay > 0 {
		time.Sleep(r.createDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.items[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return nil
}

// preload attaches patient and service the way the gorm repository does
func (r *fakeAppointmentRepo) preload(a entity.Appointment) entity.Appointment {
	if a.ServiceID != nil && r.services != nil {
		a.Service, _ = r.services.FindByID(context.Background(), *a.ServiceID)
	}
	if a.PatientID != nil && r.users != nil {
		a.Patient, _ = r.users.FindByID(context.Background(), *a.PatientID)
	}
	return a
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := r.preload(*a)
	return &cp, nil
}

func (r *fakeAppointmentRepo) filter(keep func(*entity.Appointment) bool) []entity.Appointment {
	out := []entity.Appointment{}
	for _, id := range r.order {
		if a, ok := r.items[id]; ok && keep(a) {
			out = append(out, r.preload(*a))
		}
	}
	return out
}

func (r *fakeAppointmentRepo) FindActiveByDate(_ context.Context, date time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dateReads++
	if r.findErr != nil {
		return nil, r.findErr
	}
	day := date.Format(entity.DateLayout)
	return r.filter(func(a *entity.Appointment) bool {
		return a.DateString() == day && !a.IsCancelled()
	}), nil
}

func (r *fakeAppointmentRepo) FindActiveBySlot(_ context.Context, date time.Time, slot string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
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
	return r.filter(func(a *entity.Appointment) bool { return a.IsPending() }), nil
}

func (r *fakeAppointmentRepo) FindByPatientID(_ context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mine := r.filter(func(a *entity.Appointment) bool { return a.IsOwnedBy(patientID) })
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].DateString()+mine[i].Time > mine[j].DateString()+mine[j].Time
	})
	return mine, nil
}

func (r *fakeAppointmentRepo) FindAll(_ context.Context) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(func(*entity.Appointment) bool { return true })
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].DateString()+all[i].Time < all[j].DateString()+all[j].Time
	})
	return all, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return errors.New("record not found")
	}
	if status != entity.AppointmentStatusCancelled && a.IsCancelled() {
		for _, other := range r.items {
			if other.ID != id && !other.IsCancelled() && other.DateString() == a.DateString() && other.Time == a.Time {
				return repository.ErrDuplicateSlot
			}
		}
	}
	a.Status = status
	return nil
}

func (r *fakeAppointmentRepo) CancelIfPending(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

// active counts non-cancelled appointments at date/slot
func (r *fakeAppointmentRepo) active(date, slot string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.items {
		if a.DateString() == date && a.Time == slot && !a.IsCancelled() {
			n++
		}
	}
	return n
}

func (r *fakeAppointmentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

var _ repository.AppointmentRepository = (*fakeAppointmentRepo)(nil)

type fakeServiceRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]entity.Service
}

func newFakeServiceRepo(services ...entity.Service) *fakeServiceRepo {
	r := &fakeServiceRepo{items: make(map[uuid.UUID]entity.Service)}
	for _, s := range services {
		r.items[s.ID] = s
	}
	return r
}

func (r *fakeServiceRepo) Create(_ context.Context, s *entity.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Name == s.Name {
			return repository.ErrServiceNameTaken
		}
	}
	s.ID = uuid.New()
	r.items[s.ID] = *s
	return nil
}

func (r *fakeServiceRepo) FindAll(context.Context) ([]entity.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Service, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

type fakeUserRepo struct {
	items []entity.User
	err   error
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.items {
		if r.items[i].Email == email {
			u := r.items[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.items {
		if r.items[i].Phone == phone {
			u := r.items[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			u := r.items[i]
			return &u, nil
		}
	}
	return nil, nil
}

type sentNotification struct {
	kind  service.NotificationKind
	email string
	data  service.NotificationData
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, kind service.NotificationKind, recipient entity.Contact, data service.NotificationData) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if recipient == nil || recipient.Email() == "" {
		return service.ErrNoRecipient
	}
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{kind: kind, email: recipient.Email(), data: data})
	return nil
}

func (n *fakeNotifier) byKind(kind service.NotificationKind) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.kind == kind {
			out = append(out, s)
		}
	}
	return out
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

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	for i, l := range r.logs {
		out[i] = l.Action
	}
	return out
}
