// Package writequeue serialises persistence writes through a single FIFO
// worker and acknowledges each write back to the caller that submitted it.
package writequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Enqueue when the queue has no free slot.
	ErrQueueFull = errors.New("write queue is full")
	// ErrQueueClosed is returned once Shutdown has been called.
	ErrQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout is returned by Wait when the write was not acknowledged
	// within the configured timeout.
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config holds the queue settings.
type Config struct {
	// Capacity is the number of writes that may wait for the worker.
	Capacity int
	// WriteTimeout bounds how long Wait blocks for an acknowledgement.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default queue settings.
func DefaultConfig() Config {
	return Config{
		Capacity:     100,
		WriteTimeout: 10 * time.Second,
	}
}

// WriteFunc performs one write.
type WriteFunc func(ctx context.Context) error

type writeOp struct {
	ctx     context.Context
	fn      WriteFunc
	pending *Pending
}

// Pending is the acknowledgement handle of an enqueued write.
type Pending struct {
	done    chan struct{}
	err     error
	timeout time.Duration
	closed  <-chan struct{}
}

// Done is closed once the write has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write completes and returns its error. It gives up
// with ErrWriteTimeout after the queue's write timeout, with the context's
// error when ctx ends first, and with ErrQueueClosed when the queue was
// shut down without running the write.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	default:
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	case <-p.closed:
		select {
		case <-p.done:
			return p.err
		default:
			return ErrQueueClosed
		}
	}
}

func (p *Pending) complete(err error) {
	p.err = err
	close(p.done)
}

// Queue runs submitted writes one at a time in submission order.
type Queue struct {
	config Config
	logger *zap.Logger

	ch     chan writeOp
	stopCh chan struct{}

	// ctx is cancelled when Shutdown gives up waiting for the worker.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	workerWg sync.WaitGroup
}

// New creates a queue and starts its worker. A nil cfg uses DefaultConfig
// and a nil logger is replaced by a no-op logger.
func New(cfg *Config, logger *zap.Logger) *Queue {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	config := *cfg
	if config.Capacity <= 0 {
		config.Capacity = 100
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		config: config,
		logger: logger,
		ch:     make(chan writeOp, config.Capacity),
		stopCh: make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}

	q.workerWg.Add(1)
	go q.worker()

	q.logger.Debug("write queue started",
		zap.Int("capacity", config.Capacity),
		zap.Duration("writeTimeout", config.WriteTimeout))

	return q
}

// Enqueue submits fn without blocking. fn later runs on the worker with
// ctx; a ctx that is already done when the worker reaches the write skips
// it and acknowledges the context error instead.
func (q *Queue) Enqueue(ctx context.Context, fn WriteFunc) (*Pending, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	p := &Pending{
		done:    make(chan struct{}),
		timeout: q.config.WriteTimeout,
		closed:  q.ctx.Done(),
	}
	select {
	case q.ch <- writeOp{ctx: ctx, fn: fn, pending: p}:
		return p, nil
	default:
		return nil, ErrQueueFull
	}
}

// Execute enqueues fn and waits for its acknowledgement.
func (q *Queue) Execute(ctx context.Context, fn WriteFunc) error {
	p, err := q.Enqueue(ctx, fn)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

// Len returns the number of writes waiting for the worker.
func (q *Queue) Len() int {
	return len(q.ch)
}

// IsClosed reports whether Shutdown has been called.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *Queue) worker() {
	defer q.workerWg.Done()
	defer q.logger.Debug("write queue worker stopped")

	for {
		select {
		case <-q.stopCh:
			q.drain()
			return
		case op := <-q.ch:
			q.execute(op)
		}
	}
}

func (q *Queue) execute(op writeOp) {
	if q.ctx.Err() != nil {
		op.pending.complete(ErrQueueClosed)
		return
	}
	if err := op.ctx.Err(); err != nil {
		op.pending.complete(err)
		return
	}
	err := q.run(op)
	if err != nil {
		q.logger.Debug("write failed", zap.Error(err))
	}
	op.pending.complete(err)
}

func (q *Queue) run(op writeOp) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write panicked: %v", r)
		}
	}()
	return op.fn(op.ctx)
}

// drain runs the writes still buffered once the queue stops accepting new
// ones.
func (q *Queue) drain() {
	for {
		select {
		case op := <-q.ch:
			q.execute(op)
		default:
			return
		}
	}
}

// Shutdown stops accepting writes and waits for the buffered ones to finish.
// If ctx ends first, outstanding writes are abandoned and ctx's error is
// returned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.logger.Debug("write queue shutting down", zap.Int("pending", len(q.ch)))
	close(q.stopCh)

	done := make(chan struct{})
	go func() {
		q.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.logger.Warn("write queue shutdown timeout, abandoning pending writes")
		q.cancel()
		return ctx.Err()
	}
}
