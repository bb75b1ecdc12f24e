package jobpool

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
)

// MetricsPolicy defines hooks used by the pool to report
// queueing and execution activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {
	// IncQueued increments the queued jobs counter.
	IncQueued()

	// BatchDecQueued decrements the queued counter by n.
	//
	// Workers call it with 1 per dequeued job; Terminate and KillAll
	// call it with the number of discarded jobs.
	BatchDecQueued(n int64)

	// IncExecuted increments the executed jobs counter.
	IncExecuted()

	// IncFailed increments the failed jobs counter.
	IncFailed()

	// IncDiscarded adds n jobs dropped from the queue without running.
	IncDiscarded(n int64)

	// ObserveDuration records the execution time of one job.
	ObserveDuration(d time.Duration)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	executed atomic.Uint64
	_        cpu.CacheLinePad // avoid false sharing with queued

	queued atomic.Int64
	_      cpu.CacheLinePad

	failed    atomic.Uint64
	discarded atomic.Uint64
	busyNanos atomic.Int64
}

func (m *AtomicMetrics) Executed() uint64 { return m.executed.Load() }
func (m *AtomicMetrics) Queued() int64    { return m.queued.Load() }
func (m *AtomicMetrics) Failed() uint64   { return m.failed.Load() }
func (m *AtomicMetrics) Discarded() uint64 {
	return m.discarded.Load()
}

// Busy returns the total time spent executing jobs across all workers.
func (m *AtomicMetrics) Busy() time.Duration {
	return time.Duration(m.busyNanos.Load())
}

func (m *AtomicMetrics) IncQueued()              { m.queued.Add(1) }
func (m *AtomicMetrics) BatchDecQueued(n int64)  { m.queued.Add(-n) }
func (m *AtomicMetrics) IncExecuted()            { m.executed.Add(1) }
func (m *AtomicMetrics) IncFailed()              { m.failed.Add(1) }
func (m *AtomicMetrics) IncDiscarded(n int64)    { m.discarded.Add(uint64(n)) }
func (m *AtomicMetrics) ObserveDuration(d time.Duration) {
	m.busyNanos.Add(int64(d))
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncQueued()                    {}
func (m *NoopMetrics) BatchDecQueued(n int64)        {}
func (m *NoopMetrics) IncExecuted()                  {}
func (m *NoopMetrics) IncFailed()                    {}
func (m *NoopMetrics) IncDiscarded(n int64)          {}
func (m *NoopMetrics) ObserveDuration(time.Duration) {}
