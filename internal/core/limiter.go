package core

// limiter.go bounds how many remote fetches run at once.
//
// Every Data Endpoint call streams a whole object and decodes it in memory,
// so a burst of requests multiplies memory use. The limiter is a semaphore:
// callers wait up to maxWait for a slot and then fail with
// ErrTooManyFetches. Drain blocks shutdown until in-flight fetches finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyFetches is returned when no fetch slot frees up within the wait
// time. Clients should retry after a short delay.
var ErrTooManyFetches = errors.New("too many concurrent fetches, please try again later")

// DefaultMaxConcurrentFetches is used when the configured limit is not positive.
const DefaultMaxConcurrentFetches = 5

// DefaultMaxWaitTime is used when the configured wait is not positive.
const DefaultMaxWaitTime = 30 * time.Second

// FetchLimiter caps concurrent fetch-and-decode operations.
type FetchLimiter struct {
	sem     chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
}

// NewFetchLimiter allows at most maxConcurrent fetches; waiters give up after maxWait.
func NewFetchLimiter(maxConcurrent int, maxWait time.Duration) *FetchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentFetches
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &FetchLimiter{
		sem:     make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it when the fetch is done.
// It returns ctx.Err() if ctx ends first, or ErrTooManyFetches on timeout.
func (l *FetchLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyFetches
	}
}

// Release frees a slot taken by Acquire.
func (l *FetchLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.sem
}

// Active returns the number of fetches holding a slot.
func (l *FetchLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Drain blocks until no fetch is active or ctx ends.
func (l *FetchLimiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter for monitoring.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *FetchLimiter) Status() LimiterStatus {
	active := l.Active()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.sem) - len(l.sem),
		MaxConcurrent: cap(l.sem),
	}
}
