package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when enqueueing before Start.
	ErrNotStarted = errors.New("jobs: queue not started")
	// ErrStopped is returned once Stop has been called.
	ErrStopped = errors.New("jobs: queue stopped")
	// ErrDuplicateKey is returned when a job with the same Key is still queued,
	// running or waiting for a retry.
	ErrDuplicateKey = errors.New("jobs: key already queued")
)

// Job represents a queued background task. Jobs sharing a non-empty Key are
// exclusive: a second one is rejected until the first succeeds or runs out of
// retries.
type Job struct {
	ID       string
	Key      string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. Attempt counts previous failures of the job.
type Handler func(context.Context, Job) error

// DropFunc is told about a job whose pending retry was abandoned, either on
// shutdown or because it could not be requeued. Jobs that exhaust MaxRetries
// are not reported; their handler saw the final failure.
type DropFunc func(job Job, err error)

// QueueConfig configures the worker pool. MaxRetries of zero means a failed
// job is dropped after its first attempt.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
	OnDrop     DropFunc
}

// Queue dispatches jobs to a fixed pool of goroutines and re-enqueues failed
// ones after RetryDelay until MaxRetries is exhausted.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
	onDrop     DropFunc

	jobs     chan Job
	draining chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	retries  sync.WaitGroup

	mu       sync.Mutex
	started  bool
	stopping bool
	keys     map[string]struct{}
}

// NewQueue builds a queue named name that runs handler for each job.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger.With(zap.String("queue", name)),
		onDrop:     cfg.OnDrop,
		jobs:       make(chan Job, cfg.BufferSize),
		draining:   make(chan struct{}),
		keys:       make(map[string]struct{}),
	}
}

// Start launches the workers. Calls after the first are ignored.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.workers))
}

// Stop rejects new jobs and lets the workers finish what is already buffered.
// When ctx expires first the workers are cancelled and ctx's error returned.
// Pending retries are dropped and reported to OnDrop before Stop returns.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.started || q.stopping {
		q.mu.Unlock()
		return nil
	}
	q.stopping = true
	close(q.draining)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		q.logger.Warn("queue drain interrupted", zap.Error(err))
	}
	q.cancel()
	<-done
	q.retries.Wait()
	q.logger.Info("queue stopped")
	return err
}

// Enqueue schedules job. It fails with ErrDuplicateKey while another job with
// the same Key is outstanding.
func (q *Queue) Enqueue(job Job) error {
	if job.Key != "" {
		q.mu.Lock()
		if _, held := q.keys[job.Key]; held {
			q.mu.Unlock()
			return ErrDuplicateKey
		}
		q.keys[job.Key] = struct{}{}
		q.mu.Unlock()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	if err := q.push(job); err != nil {
		q.release(job)
		return err
	}
	return nil
}

func (q *Queue) push(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started, stopping := q.started, q.stopping
	q.mu.Unlock()

	switch {
	case !started:
		return fmt.Errorf("%s: %w", q.name, ErrNotStarted)
	case stopping:
		return fmt.Errorf("%s: %w", q.name, ErrStopped)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrStopped)
	case q.jobs <- job:
		return nil
	}
}

func (q *Queue) release(job Job) {
	if job.Key == "" {
		return
	}
	q.mu.Lock()
	delete(q.keys, job.Key)
	q.mu.Unlock()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.run(job)
		case <-q.draining:
			for {
				select {
				case job := <-q.jobs:
					q.run(job)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) run(job Job) {
	err := q.handler(q.ctx, job)
	if err == nil {
		q.release(job)
		return
	}
	q.retry(job, err)
}

func (q *Queue) retry(job Job, err error) {
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Error(err)}
	job.Attempt++
	if job.Attempt > q.maxRetries {
		q.release(job)
		q.logger.Error("job exceeded retries", append(fields, zap.Int("attempts", job.Attempt))...)
		return
	}
	q.logger.Warn("job failed, retrying", append(fields, zap.Int("attempt", job.Attempt))...)

	q.retries.Add(1)
	go func(j Job) {
		defer q.retries.Done()
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.drop(j, fmt.Errorf("%s: %w", q.name, ErrStopped))
		case <-q.draining:
			q.drop(j, fmt.Errorf("%s: %w", q.name, ErrStopped))
		case <-timer.C:
			if err := q.push(j); err != nil {
				q.drop(j, err)
			}
		}
	}(job)
}

// drop abandons a job waiting for a retry.
func (q *Queue) drop(job Job, err error) {
	q.release(job)
	q.logger.Warn("retry dropped", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
	if q.onDrop != nil {
		q.onDrop(job, err)
	}
}
