package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SlotLocker serialises work on one (doctor, date, time) inside this process.
// It only narrows contention; the database constraint is what rejects a double booking.
type SlotLocker struct {
	log *logrus.Logger

	slotMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSlotLocker starts the background cleanup goroutine. Call Stop on shutdown.
func NewSlotLocker(log *logrus.Logger) *SlotLocker {
	l := &SlotLocker{
		log:      log,
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupMutexMapLoop(mutexCleanupInterval)

	return l
}

// Lock blocks until the slot is free and returns the matching unlock.
func (l *SlotLocker) Lock(doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) func() {
	mt := l.getSlotMutex(slotLockKey(doctorID, date, t))
	mt.mu.Lock()
	return func() {
		mt.lastUsed.Store(time.Now().Unix())
		mt.mu.Unlock()
	}
}

// Stop gracefully shuts down the cleanup loop. Safe to call multiple times.
func (l *SlotLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("SlotLocker stopped")
	}
}

func slotLockKey(doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) string {
	return fmt.Sprintf("%s|%s|%s", doctorID, date, t)
}

// getSlotMutex returns mutex for a specific slot key
func (l *SlotLocker) getSlotMutex(key string) *mutexWithTimestamp {
	mt, _ := l.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (l *SlotLocker) cleanupMutexMapLoop(every time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			l.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			l.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes removes mutexes unused since cutoff. TryLock skips any
// that are held, and lastUsed is re-read under the lock.
func (l *SlotLocker) cleanupStaleMutexes(cutoff time.Time) int {
	cutoffTime := cutoff.Unix()
	var cleaned int

	l.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				l.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
	return cleaned
}
