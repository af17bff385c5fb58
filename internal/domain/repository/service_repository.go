package repository

import (
	"context"
	"errors"

	"dental-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrServiceNameTaken is returned by Create when a service with the same name exists
var ErrServiceNameTaken = errors.New("service name already exists")

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	FindAll(ctx context.Context) ([]entity.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
}
