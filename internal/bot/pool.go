package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrQueueFull   = errors.New("job queue is full")
	ErrPoolStopped = errors.New("worker pool is stopped")
)

// Job is one accepted playlist request.
type Job struct {
	UpdateID int
	UserID   int64
	Run      func(ctx context.Context) error
}

// Pool runs jobs on a fixed number of workers fed by a bounded queue.
//
// Submit never blocks, so the update loop keeps polling while runs are in flight.
type Pool struct {
	workers int
	jobs    chan Job
	logger  *log.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewPool creates a pool. Non-positive sizes fall back to one.
func NewPool(workers, queueSize int, logger *log.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{workers: workers, jobs: make(chan Job, queueSize), logger: logger}
}

// Start launches the workers. Jobs run with ctx.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("starting worker pool", "workers", p.workers, "queue", cap(p.jobs))
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop closes the queue and waits for queued and running jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Submit queues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.process(ctx, id, job)
	}
}

func (p *Pool) process(ctx context.Context, workerID int, job Job) {
	start := time.Now()
	logger := p.logger.With("worker_id", workerID, "update_id", job.UpdateID, "user_id", job.UserID)

	if err := p.safeRun(ctx, job); err != nil {
		logger.Warn("job finished with error", "error", err, "duration", time.Since(start))
		return
	}
	logger.Debug("job finished", "duration", time.Since(start))
}

func (p *Pool) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic recovered in job", "update_id", job.UpdateID, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx)
}
