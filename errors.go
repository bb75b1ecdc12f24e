package jobpool

import (
	"errors"
	"fmt"
)

var (
	// ErrClosedQueue is returned when a job is scheduled after the queue
	// has been closed by Wait, Terminate or KillAll.
	ErrClosedQueue = errors.New("jobpool: queue is closed")

	// ErrQueueFull is returned when the queue has a capacity limit
	// and cannot accept more jobs.
	ErrQueueFull = errors.New("jobpool: queue is full")

	// ErrPoolClosed is returned by Start once the pool reached
	// a terminal state.
	ErrPoolClosed = errors.New("jobpool: pool is closed")

	// ErrInvalidSize is returned when a pool is constructed with
	// a non-positive number of workers.
	ErrInvalidSize = errors.New("jobpool: pool size must be positive")

	// ErrNilFunc is returned when a scheduled job has a nil Fn.
	ErrNilFunc = errors.New("jobpool: job func is nil")
)

var (
	// ErrJobPanicked is recorded when a job, or an OnJobError handler,
	// panics. The recovered value is part of the message.
	ErrJobPanicked = errors.New("jobpool: job panicked")

	// ErrJobCanceled is returned by ScheduleJob, or recorded by a worker,
	// when the job's context is done before it runs.
	ErrJobCanceled = errors.New("jobpool: job canceled before execution")

	// ErrPinUnsupported is returned by PinToCPU outside Linux.
	ErrPinUnsupported = errors.New("jobpool: cpu pinning is not supported on this platform")
)

func wrap(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}

func joinErr(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
