package jobpool

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// ErrorEntry is a recorded job failure.
type ErrorEntry struct {
	// Err is the error returned by the job, or ErrJobPanicked
	// wrapping the recovered value.
	Err error

	Job  Job
	Args []any

	// Attempts is the number of times the job was run.
	Attempts int

	// WorkerID is the index of the worker that ran the job.
	WorkerID int

	At time.Time
}

// ErrorLog is an append-only, concurrency safe log of job failures.
//
// Entries keep the order in which Record was called. The lock is held
// only while appending or copying, so readers never stall workers for
// longer than a slice copy.
type ErrorLog struct {
	mu      sync.Mutex
	entries []ErrorEntry
}

func NewErrorLog() *ErrorLog {
	return &ErrorLog{}
}

// Record appends an entry. It never fails.
func (l *ErrorLog) Record(e ErrorEntry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Snapshot returns a copy of the entries recorded so far, arguments included.
func (l *ErrorLog) Snapshot() []ErrorEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ErrorEntry, len(l.entries))
	for i, e := range l.entries {
		e.Args = slices.Clone(e.Args)
		e.Job.Args = slices.Clone(e.Job.Args)
		out[i] = e
	}
	return out
}

func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Err combines all recorded failures into a single error.
// It returns nil when the log is empty.
func (l *ErrorLog) Err() error {
	var err error
	for _, e := range l.Snapshot() {
		err = multierr.Append(err, e.Err)
	}
	return err
}
