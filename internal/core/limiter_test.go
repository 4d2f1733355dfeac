package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFetchLimiter_AcquireRelease(t *testing.T) {
	limiter := NewFetchLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Status().Available; got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	status := limiter.Status()
	if status.Active != 2 || status.Available != 0 {
		t.Errorf("Status = %+v, want 2 active and 0 available", status)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.Active(); got != 0 {
		t.Errorf("after Release, Active = %d, want 0", got)
	}
}

func TestFetchLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewFetchLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyFetches) {
		t.Fatalf("expected ErrTooManyFetches, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up too early: %v", elapsed)
	}
}

func TestFetchLimiter_ContextCancellation(t *testing.T) {
	limiter := NewFetchLimiter(1, 5*time.Second)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestFetchLimiter_NeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewFetchLimiter(maxConcurrent, time.Second)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		maxObserved int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			if n := limiter.Active(); n > maxObserved {
				maxObserved = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("observed %d concurrent fetches, max %d", maxObserved, maxConcurrent)
	}
}

func TestFetchLimiter_Drain(t *testing.T) {
	limiter := NewFetchLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.Drain(ctx); err != nil {
		t.Fatalf("Drain returned %v", err)
	}
}

func TestFetchLimiter_Defaults(t *testing.T) {
	limiter := NewFetchLimiter(0, 0)
	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrentFetches {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentFetches)
	}
}
