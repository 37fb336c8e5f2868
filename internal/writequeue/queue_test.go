package writequeue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestQueue(t *testing.T, cfg *Config) *Queue {
	t.Helper()
	q := New(cfg, zaptest.NewLogger(t))
	t.Cleanup(func() {
		if err := q.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return q
}

func TestQueue_FIFO(t *testing.T) {
	q := newTestQueue(t, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var order []int
	var pending []*Pending
	for i := range 50 {
		p, err := q.Enqueue(ctx, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			return nil
		})
		if err != nil {
			t.Fatalf("Enqueue(%d) error = %v", i, err)
		}
		pending = append(pending, p)
	}

	for i, p := range pending {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait(%d) error = %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, got := range order {
		if got != i {
			t.Fatalf("write %d ran at position %d, want FIFO order: %v", got, i, order)
		}
	}
}

func TestQueue_AcknowledgesErrors(t *testing.T) {
	q := newTestQueue(t, nil)
	ctx := context.Background()
	boom := errors.New("disk full")

	if err := q.Execute(ctx, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Execute() error = %v, want %v", err, boom)
	}
	if err := q.Execute(ctx, func(context.Context) error { return nil }); err != nil {
		t.Errorf("Execute() after failure error = %v", err)
	}
}

func TestQueue_RecoversPanics(t *testing.T) {
	q := newTestQueue(t, nil)

	err := q.Execute(context.Background(), func(context.Context) error { panic("bad write") })
	if err == nil {
		t.Fatal("Execute() error = nil, want panic converted to error")
	}

	if err := q.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Errorf("worker unusable after panic: %v", err)
	}
}

func TestQueue_WaitIsRepeatable(t *testing.T) {
	q := newTestQueue(t, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	p, err := q.Enqueue(ctx, func(context.Context) error { return boom })
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	for range 3 {
		if err := p.Wait(ctx); !errors.Is(err, boom) {
			t.Errorf("Wait() error = %v, want %v", err, boom)
		}
	}
}

func TestQueue_Full(t *testing.T) {
	q := newTestQueue(t, &Config{Capacity: 1})
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	blocker, err := q.Enqueue(ctx, func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("Enqueue(blocker) error = %v", err)
	}
	<-started

	buffered, err := q.Enqueue(ctx, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Enqueue(buffered) error = %v", err)
	}
	if _, err := q.Enqueue(ctx, func(context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue() on full queue error = %v, want ErrQueueFull", err)
	}
	if got := q.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}

	close(release)
	if err := blocker.Wait(ctx); err != nil {
		t.Errorf("blocker Wait() error = %v", err)
	}
	if err := buffered.Wait(ctx); err != nil {
		t.Errorf("buffered Wait() error = %v", err)
	}
}

func TestQueue_WaitTimeout(t *testing.T) {
	q := newTestQueue(t, &Config{WriteTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	release := make(chan struct{})
	p, err := q.Enqueue(ctx, func(context.Context) error {
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := p.Wait(ctx); !errors.Is(err, ErrWriteTimeout) {
		t.Errorf("Wait() error = %v, want ErrWriteTimeout", err)
	}
	close(release)
	<-p.Done()
}

func TestQueue_WaitContext(t *testing.T) {
	q := newTestQueue(t, nil)

	release := make(chan struct{})
	p, err := q.Enqueue(context.Background(), func(context.Context) error {
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	close(release)
	<-p.Done()
}

func TestQueue_SkipsCancelledWrites(t *testing.T) {
	q := newTestQueue(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	p, err := q.Enqueue(ctx, func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	<-p.Done()
	if err := p.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	if ran {
		t.Error("write ran with a cancelled context")
	}
}

func TestQueue_ShutdownDrains(t *testing.T) {
	q := New(nil, zaptest.NewLogger(t))
	ctx := context.Background()

	release := make(chan struct{})
	var mu sync.Mutex
	count := 0
	var pending []*Pending
	for range 10 {
		p, err := q.Enqueue(ctx, func(context.Context) error {
			<-release
			mu.Lock()
			count++
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		pending = append(pending, p)
	}

	close(release)
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	for i, p := range pending {
		if err := p.Wait(ctx); err != nil {
			t.Errorf("Wait(%d) error = %v", i, err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Errorf("ran %d writes, want 10", count)
	}

	if !q.IsClosed() {
		t.Error("IsClosed() = false after Shutdown")
	}
	if _, err := q.Enqueue(ctx, func(context.Context) error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue() after Shutdown error = %v, want ErrQueueClosed", err)
	}
	if err := q.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestQueue_ShutdownTimeout(t *testing.T) {
	// The worker outlives Shutdown here, so it must not log through t.
	q := New(nil, zap.NewNop())

	release := make(chan struct{})
	started := make(chan struct{})
	running, err := q.Enqueue(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	<-started
	abandoned, err := q.Enqueue(context.Background(), func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want context.DeadlineExceeded", err)
	}

	close(release)
	<-running.Done()
	if err := running.Wait(context.Background()); err != nil {
		t.Errorf("running Wait() error = %v", err)
	}
	<-abandoned.Done()
	if err := abandoned.Wait(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("abandoned Wait() error = %v, want ErrQueueClosed", err)
	}
}
