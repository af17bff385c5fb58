package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLockNotOwned is returned by Unlock when the key is held by another token
var ErrLockNotOwned = errors.New("lock not owned by this client")

// unlockScript deletes the key only if it still holds our token, in one round
// trip so an expired-and-reacquired lock is never released by the old owner.
var unlockScript = redis.NewScript(`
	local current = redis.call('GET', KEYS[1])
	if not current then
		return 0
	end
	if current ~= ARGV[1] then
		return -1
	end
	return redis.call('DEL', KEYS[1])
`)

// Locker hands out short-lived exclusive leases.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, token string) error
}

// LockerService implements Locker with Redis SETNX.
type LockerService struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewLockerService(client *redis.Client, log *logrus.Logger) *LockerService {
	return &LockerService{client: client, log: log}
}

// TryLock attempts to take key for ttl. On success it returns the token that
// must be presented to Unlock.
func (s *LockerService) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	token := uuid.NewString()
	acquired, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("try lock %s: %w", key, err)
	}
	if !acquired {
		s.log.Debugf("Lock %s held elsewhere", key)
		return false, "", nil
	}
	return true, token, nil
}

func (s *LockerService) Unlock(ctx context.Context, key, token string) error {
	result, err := unlockScript.Run(ctx, s.client, []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("unlock %s: %w", key, err)
	}
	if result == -1 {
		return ErrLockNotOwned
	}
	return nil
}
