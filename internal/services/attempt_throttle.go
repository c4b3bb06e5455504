package services

import (
	"log"
	"sync"
	"time"
)

const (
	DefaultAttemptThreshold = 10
	DefaultThrottleWindow   = 15 * time.Minute
)

type attemptRecord struct {
	failureCount int
	windowStart  time.Time
}

// AttemptThrottle считает неудачные попытки входа по ключу запроса
// (обычно IP). Окно скользящее: первая неудача открывает окно, по его
// истечении счёт начинается заново.
type AttemptThrottle struct {
	mu        sync.Mutex
	attempts  map[string]*attemptRecord
	threshold int
	window    time.Duration
	now       func() time.Time
	stop      chan struct{}
	once      sync.Once
}

func NewAttemptThrottle(threshold int, window time.Duration) *AttemptThrottle {
	if threshold <= 0 {
		threshold = DefaultAttemptThreshold
	}
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	return &AttemptThrottle{
		attempts:  make(map[string]*attemptRecord),
		threshold: threshold,
		window:    window,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

func NewAttemptThrottleWithClock(threshold int, window time.Duration, now func() time.Time) *AttemptThrottle {
	t := NewAttemptThrottle(threshold, window)
	t.now = now
	return t
}

// RecordFailure adds one failure to the requester's window, opening a new
// window when none is live.
func (t *AttemptThrottle) RecordFailure(requesterKey string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	rec, ok := t.attempts[requesterKey]
	if !ok || now.Sub(rec.windowStart) >= t.window {
		t.attempts[requesterKey] = &attemptRecord{failureCount: 1, windowStart: now}
		return
	}
	rec.failureCount++
}

func (t *AttemptThrottle) IsBlocked(requesterKey string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[requesterKey]
	if !ok {
		return false
	}
	if t.now().Sub(rec.windowStart) >= t.window {
		delete(t.attempts, requesterKey)
		return false
	}
	return rec.failureCount >= t.threshold
}

// Clear drops the requester's record entirely; called after a successful
// login so one success resets the count to zero.
func (t *AttemptThrottle) Clear(requesterKey string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, requesterKey)
}

func (t *AttemptThrottle) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = t.window
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := t.sweep(); n > 0 {
					log.Printf("[auth][throttle][sweep] removed=%d", n)
				}
			case <-t.stop:
				return
			}
		}
	}()
}

func (t *AttemptThrottle) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *AttemptThrottle) sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for key, rec := range t.attempts {
		if now.Sub(rec.windowStart) >= t.window {
			delete(t.attempts, key)
			removed++
		}
	}
	return removed
}
