package usecase

import (
	"context"
	"errors"
	"strings"

	"dental-booking/internal/converter"
	"dental-booking/internal/delivery/dto"
	"dental-booking/internal/delivery/http/middleware"
	"dental-booking/internal/domain/entity"
	"dental-booking/internal/domain/repository"
	"dental-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrServiceNameTaken = errors.New("a service with this name already exists")
)

const defaultServiceDuration = "30 minutes"

type ServiceUsecase interface {
	Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetAll(ctx context.Context) (*dto.ServiceListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
}

type serviceUsecase struct {
	log         *logrus.Logger
	serviceRepo repository.ServiceRepository
	audit       service.AuditService
}

func NewServiceUsecase(log *logrus.Logger, serviceRepo repository.ServiceRepository, audit service.AuditService) ServiceUsecase {
	return &serviceUsecase{
		log:         log,
		serviceRepo: serviceRepo,
		audit:       audit,
	}
}

func (u *serviceUsecase) Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	svc := &entity.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
	}
	if svc.Duration == "" {
		svc.Duration = defaultServiceDuration
	}

	if err := u.serviceRepo.Create(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrServiceNameTaken) {
			return nil, ErrServiceNameTaken
		}
		u.log.Warnf("Failed to create service: %+v", err)
		return nil, err
	}

	if err := u.audit.LogCreate(ctx, middleware.ActorFromContext(ctx), entity.AuditActionServiceCreate, "service", svc.ID.String(), svc); err != nil {
		u.log.Warnf("Failed to audit service %s creation: %+v", svc.ID, err)
	}

	return converter.ServiceToResponse(svc), nil
}

func (u *serviceUsecase) GetAll(ctx context.Context) (*dto.ServiceListResponse, error) {
	services, err := u.serviceRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find all services: %+v", err)
		return nil, err
	}

	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Total:    len(services),
	}, nil
}

func (u *serviceUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	return converter.ServiceToResponse(svc), nil
}
