package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrQueueClosed = errors.New("task queue is closed")
)

// Outcome of a finished job.
type Outcome struct {
	Outputs []string
	Partial bool
}

// Reporter updates the progress of the running task.
type Reporter interface {
	Update(percent int, message string)
}

// Func is the work behind a task.
type Func func(ctx context.Context, r Reporter) (Outcome, error)

type job struct {
	id string
	fn Func
}

// Queue runs submitted jobs on a fixed number of workers.
type Queue struct {
	store   Store
	logger  *logging.Logger
	jobs    chan job
	workers int
	now     func() time.Time

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewQueue creates a queue with the given worker count and backlog
// capacity. Call Start before submitting.
func NewQueue(store Store, workers, backlog int, logger *logging.Logger) (*Queue, error) {
	if store == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if workers <= 0 {
		workers = 1
	}
	if backlog <= 0 {
		backlog = 16
	}
	return &Queue{
		store:   store,
		logger:  logging.OrNop(logger),
		jobs:    make(chan job, backlog),
		workers: workers,
		now:     time.Now,
	}, nil
}

// Start launches the workers. Jobs see a context derived from ctx.
func (q *Queue) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g := &errgroup.Group{}
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			for j := range q.jobs {
				q.run(ctx, j)
			}
			return nil
		})
	}
	q.mu.Lock()
	q.cancel = cancel
	q.group = g
	q.mu.Unlock()
	q.logger.Infow("task queue started", "workers", q.workers, "backlog", cap(q.jobs))
}

// Submit records a queued task and hands it to the workers.
func (q *Queue) Submit(ctx context.Context, kind Kind, input string, fn Func) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	if len(q.jobs) == cap(q.jobs) {
		return nil, ErrQueueFull
	}

	now := q.now().UTC()
	t := &Task{
		ID:        uuid.NewString(),
		Kind:      kind,
		Input:     input,
		Status:    StatusQueued,
		Message:   "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("record task: %w", err)
	}
	q.jobs <- job{id: t.ID, fn: fn}
	q.logger.Infow("task queued", "task_id", t.ID, "kind", kind, "input", input)
	return t, nil
}

// Get returns the stored state of a task.
func (q *Queue) Get(ctx context.Context, id string) (*Task, error) {
	return q.store.Get(ctx, id)
}

func (q *Queue) List(ctx context.Context) ([]*Task, error) {
	return q.store.List(ctx)
}

func (q *Queue) ClearFinished(ctx context.Context) (int, error) {
	return q.store.ClearFinished(ctx)
}

// Shutdown stops accepting work, lets queued jobs drain and waits for the
// workers. When ctx ends first, running jobs are cancelled.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	g, cancel := q.group, q.cancel
	q.mu.Unlock()

	if g == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

type reporter struct {
	q  *Queue
	id string
}

func (r reporter) Update(percent int, message string) {
	ctx := context.Background()
	t, err := r.q.store.Get(ctx, r.id)
	if err != nil {
		return
	}
	if percent > t.Progress {
		t.Progress = min(percent, 100)
	}
	t.Message = message
	t.UpdatedAt = r.q.now().UTC()
	if err := r.q.store.Update(ctx, t); err != nil {
		r.q.logger.Warnw("task progress update failed", "task_id", r.id, "error", err)
	}
}

func (q *Queue) run(ctx context.Context, j job) {
	log := q.logger.With("task_id", j.id)
	q.transition(j.id, func(t *Task) {
		t.Status = StatusRunning
		t.Message = "running"
	})

	start := time.Now()
	outcome, err := q.call(ctx, j)

	q.transition(j.id, func(t *Task) {
		t.Outputs = outcome.Outputs
		t.Progress = 100
		switch {
		case err != nil && outcome.Partial:
			t.Status = StatusPartial
			t.Message = "completed with errors"
			t.Error = err.Error()
		case err != nil:
			t.Status = StatusFailed
			t.Message = "failed"
			t.Error = err.Error()
		default:
			t.Status = StatusDone
			t.Message = fmt.Sprintf("completed, %d files", len(outcome.Outputs))
		}
	})

	if err != nil {
		log.Warnw("task finished with error",
			"error", err,
			"partial", outcome.Partial,
			"elapsed", time.Since(start).Round(time.Millisecond).String(),
		)
		return
	}
	log.Infow("task complete",
		"outputs", len(outcome.Outputs),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
}

// call runs the job, turning a panic into a failed task.
func (q *Queue) call(ctx context.Context, j job) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return j.fn(ctx, reporter{q: q, id: j.id})
}

func (q *Queue) transition(id string, mutate func(*Task)) {
	ctx := context.Background()
	t, err := q.store.Get(ctx, id)
	if err != nil {
		q.logger.Errorw("task lookup failed", "task_id", id, "error", err)
		return
	}
	mutate(t)
	t.UpdatedAt = q.now().UTC()
	if err := q.store.Update(ctx, t); err != nil {
		q.logger.Errorw("task update failed", "task_id", id, "error", err)
	}
}
