// Package tasks runs long jobs submitted over HTTP on a bounded worker pool
// and keeps their status in a Store keyed by task id.
package tasks

import (
	"context"
	"errors"
	"time"
)

type Kind string

const (
	KindGenerate Kind = "generate"
	KindDub      Kind = "dub"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Finished reports whether the task reached a terminal status.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusPartial || s == StatusFailed
}

type Task struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Input     string    `json:"input"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Outputs   []string  `json:"outputs,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Task) clone() *Task {
	c := *t
	c.Outputs = append([]string(nil), t.Outputs...)
	return &c
}

var ErrNotFound = errors.New("task not found")

// Store persists task state.
type Store interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	// ClearFinished removes every task in a terminal status.
	ClearFinished(ctx context.Context) (int, error)
	Close() error
}
