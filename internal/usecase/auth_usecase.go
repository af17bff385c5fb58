package usecase

import (
	"context"
	"errors"
	"time"

	"dental-booking/internal/converter"
	"dental-booking/internal/delivery/dto"
	"dental-booking/internal/domain/repository"
	"dental-booking/pkg/clock"
	"dental-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRevocationDisabled = errors.New("token revocation requires redis")
)

const minRevocationRemaining = time.Second

// AuthUsecase covers the session operations this service owns. Tokens are issued
// by the clinic's auth service; here they can only be inspected and revoked.
type AuthUsecase interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	// Logout denylists tokenID until expiresAt
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type authUsecase struct {
	log         *logrus.Logger
	userRepo    repository.UserRepository
	redisClient *redis.Client
	clock       clock.Clock
}

func NewAuthUsecase(log *logrus.Logger, userRepo repository.UserRepository, redisClient *redis.Client, clk clock.Clock) AuthUsecase {
	return &authUsecase{
		log:         log,
		userRepo:    userRepo,
		redisClient: redisClient,
		clock:       clk,
	}
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if u.redisClient == nil {
		return ErrRevocationDisabled
	}

	ttl := expiresAt.Sub(u.clock.Now())
	if ttl < minRevocationRemaining {
		// Already expired, nothing to revoke
		return nil
	}

	if err := u.redisClient.Set(ctx, jwt.RevokedTokenKey(tokenID), 1, ttl).Err(); err != nil {
		u.log.Warnf("Failed to revoke token: %+v", err)
		return err
	}

	return nil
}
