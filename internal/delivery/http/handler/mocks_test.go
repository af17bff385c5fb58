package handler

import (
	"context"
	"time"

	"dental-booking/internal/delivery/dto"
	"dental-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAppointmentUsecase struct {
	mock.Mock
}

func (m *MockAppointmentUsecase) appointment(args mock.Arguments) (*dto.AppointmentResponse, error) {
	res, _ := args.Get(0).(*dto.AppointmentResponse)
	return res, args.Error(1)
}

func (m *MockAppointmentUsecase) list(args mock.Arguments) (*dto.AppointmentListResponse, error) {
	res, _ := args.Get(0).(*dto.AppointmentListResponse)
	return res, args.Error(1)
}

func (m *MockAppointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	return m.appointment(m.Called(ctx, req))
}

func (m *MockAppointmentUsecase) CreateFromChatbot(ctx context.Context, req *dto.ChatbotAppointmentRequest) (*dto.AppointmentResponse, error) {
	return m.appointment(m.Called(ctx, req))
}

func (m *MockAppointmentUsecase) CreateForGuest(ctx context.Context, req *dto.StaffAppointmentRequest) (*dto.AppointmentResponse, error) {
	return m.appointment(m.Called(ctx, req))
}

func (m *MockAppointmentUsecase) SetStatus(ctx context.Context, id uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentResponse, error) {
	return m.appointment(m.Called(ctx, id, status))
}

func (m *MockAppointmentUsecase) CancelOwn(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return m.appointment(m.Called(ctx, id))
}

func (m *MockAppointmentUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAppointmentUsecase) GetMine(ctx context.Context) (*dto.AppointmentListResponse, error) {
	return m.list(m.Called(ctx))
}

func (m *MockAppointmentUsecase) GetAll(ctx context.Context) (*dto.AppointmentListResponse, error) {
	return m.list(m.Called(ctx))
}

func (m *MockAppointmentUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return m.appointment(m.Called(ctx, id))
}

type MockAvailabilityUsecase struct {
	mock.Mock
}

func (m *MockAvailabilityUsecase) ListAvailable(ctx context.Context, date time.Time) (*dto.AvailabilityResponse, error) {
	args := m.Called(ctx, date)
	res, _ := args.Get(0).(*dto.AvailabilityResponse)
	return res, args.Error(1)
}

func (m *MockAvailabilityUsecase) IsSlotFree(ctx context.Context, date time.Time, slot string) (bool, error) {
	args := m.Called(ctx, date, slot)
	return args.Bool(0), args.Error(1)
}

type MockServiceUsecase struct {
	mock.Mock
}

func (m *MockServiceUsecase) Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.ServiceResponse)
	return res, args.Error(1)
}

func (m *MockServiceUsecase) GetAll(ctx context.Context) (*dto.ServiceListResponse, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*dto.ServiceListResponse)
	return res, args.Error(1)
}

func (m *MockServiceUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*dto.ServiceResponse)
	return res, args.Error(1)
}

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*dto.UserResponse)
	return res, args.Error(1)
}

func (m *MockAuthUsecase) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return m.Called(ctx, tokenID, expiresAt).Error(0)
}

type MockAuditLogUsecase struct {
	mock.Mock
}

func (m *MockAuditLogUsecase) GetAllAuditLogs(ctx context.Context) (*dto.AuditLogListResponse, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*dto.AuditLogListResponse)
	return res, args.Error(1)
}

func (m *MockAuditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*dto.AuditLogResponse)
	return res, args.Error(1)
}
