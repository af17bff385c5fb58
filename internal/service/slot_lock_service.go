package service

import (
	"sync"
	"sync/atomic"
	"time"

	"dental-booking/internal/domain/entity"
	"dental-booking/pkg/clock"

	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SlotLockService serializes booking writes per calendar date inside this
// process, so the "is the slot free" check and the insert cannot interleave
// with another booking for the same day. Across processes the partial unique
// index on appointments is the backstop.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire the date mutex FIRST
// 2. Then perform DB operations
type SlotLockService struct {
	log   *logrus.Logger
	clock clock.Clock

	// Per-date mutex, keyed by YYYY-MM-DD
	dateMu sync.Map // map[string]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSlotLockService starts the background cleanup goroutine.
// Call Stop() during graceful shutdown.
func NewSlotLockService(log *logrus.Logger, clk clock.Clock) *SlotLockService {
	if clk == nil {
		clk = clock.Real()
	}
	svc := &SlotLockService{
		log:      log,
		clock:    clk,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *SlotLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotLockService stopped")
	}
}

// LockDate blocks until the caller holds the booking lock for date and
// returns the function that releases it.
func (s *SlotLockService) LockDate(date time.Time) func() {
	mt := s.getDateMutex(date.Format(entity.DateLayout))
	mt.mu.Lock()
	return mt.mu.Unlock
}

// getDateMutex returns mutex for a specific date key
func (s *SlotLockService) getDateMutex(key string) *mutexWithTimestamp {
	mt, _ := s.dateMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(s.clock.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (s *SlotLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes using TryLock for safety.
// lastUsed is checked inside the lock so nobody can refresh it in between.
func (s *SlotLockService) cleanupStaleMutexes() int {
	cutoffTime := s.clock.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	s.dateMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		// TryLock first - if we can't get lock, someone is using it
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				s.dateMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale date mutexes", cleaned)
	}
	return cleaned
}
