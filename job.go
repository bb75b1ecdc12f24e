package jobpool

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// JobFunc is the function executed by a worker.
//
// ctx is cancelled when the pool is killed or when the job's own
// context is done. args are the positional arguments captured when
// the job was scheduled.
type JobFunc func(ctx context.Context, args ...any) error

// Job represents a single unit of work submitted to the pool.
//
// A Job is immutable once enqueued: its Args are copied at schedule time. It is owned by the queue until
// exactly one worker dequeues it.
type Job struct {
	// ID identifies the job in logs and error entries.
	// It is assigned at schedule time when left zero.
	ID uuid.UUID

	Fn   JobFunc
	Args []any

	// Ctx, if set, is the parent of the context passed to Fn.
	// A job whose Ctx is done before execution is not run.
	Ctx context.Context

	// Retry overrides non-zero fields of the pool retry policy.
	Retry *RetryPolicy

	ScheduledAt time.Time
}

// NewJob wraps fn and its arguments into a Job.
// The argument slice is copied.
func NewJob(fn JobFunc, args ...any) Job {
	return Job{
		Fn:   fn,
		Args: append([]any(nil), args...),
	}
}

func (j *Job) prepare(now time.Time) {
	j.Args = slices.Clone(j.Args)
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Ctx == nil {
		j.Ctx = context.Background()
	}
	j.ScheduledAt = now
}
