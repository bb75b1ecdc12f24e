package jobpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Pool runs scheduled jobs on a fixed number of worker goroutines
// sharing one JobQueue and one ErrorLog.
//
// A Pool is created Idle. Jobs may be scheduled before Start; they wait
// in the queue until workers are spawned. Wait, Terminate and KillAll
// close the queue for good.
type Pool struct {
	opts    Options
	log     *zap.Logger
	metrics MetricsPolicy

	queue  *JobQueue
	errors *ErrorLog

	mu    sync.Mutex // guards state and worker spawning
	state State

	wg   sync.WaitGroup
	done chan struct{} // closed once every worker exited

	// ctx is seen by every running job. It is cancelled by KillAll.
	ctx    context.Context
	cancel context.CancelFunc
	killed atomic.Bool

	activeWorkers atomic.Int32
}

// New creates an Idle pool with size workers.
// verbose enables lifecycle notices on the global zap logger.
func New(size int, verbose bool) (*Pool, error) {
	return NewFromOptions(Options{Workers: size, Verbose: verbose})
}

// NewFromOptions creates an Idle pool. It returns ErrInvalidSize when
// opts.Workers is not positive.
func NewFromOptions(opts Options) (*Pool, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.FillDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		opts:    opts,
		log:     opts.Logger,
		metrics: opts.Metrics,
		queue:   NewJobQueue(opts.QueueLimit),
		errors:  NewErrorLog(),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	return p, nil
}

// Start spawns the workers and returns immediately.
//
// Start is a no-op on a pool that is already running or draining.
// It returns ErrPoolClosed once the pool is Stopped or Killed.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startLocked()
}

func (p *Pool) startLocked() error {
	switch p.state {
	case Running, Draining:
		return nil
	case Stopped, Killed:
		return ErrPoolClosed
	}

	p.state = Running
	p.wg.Add(p.opts.Workers)
	for i := range p.opts.Workers {
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()

	p.notice("pool started", zap.Int("workers", p.opts.Workers), zap.Int("queued", p.queue.Len()))
	return nil
}

// Schedule enqueues fn with its positional arguments.
//
// It never blocks. It fails with ErrClosedQueue once the queue was
// closed, and with ErrQueueFull when a queue limit is configured and
// reached.
func (p *Pool) Schedule(fn JobFunc, args ...any) error {
	return p.ScheduleJob(NewJob(fn, args...))
}

// ScheduleJob enqueues a fully described job. A job whose context is
// already done is rejected with an error wrapping both ErrJobCanceled
// and the context error.
func (p *Pool) ScheduleJob(job Job) error {
	if job.Fn == nil {
		return ErrNilFunc
	}
	job.prepare(time.Now())
	if err := job.Ctx.Err(); err != nil {
		return joinErr(ErrJobCanceled, err)
	}

	p.metrics.IncQueued()
	if err := p.queue.Push(job); err != nil {
		p.metrics.BatchDecQueued(1)
		return err
	}
	return nil
}

// Wait closes the queue and blocks until every queued job ran and all
// workers exited. An Idle pool is started first.
func (p *Pool) Wait() { _ = p.Shutdown(context.Background()) }

// Shutdown is Wait with a deadline. If ctx is done first it returns
// ctx.Err(); the workers keep draining and a later call completes the
// transition to Stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx, false)
}

// Terminate discards queued jobs that no worker has claimed yet, then
// waits for the in-flight ones to finish.
func (p *Pool) Terminate() { _ = p.shutdown(context.Background(), true) }

func (p *Pool) shutdown(ctx context.Context, discard bool) error {
	p.mu.Lock()
	switch p.state {
	case Idle, Running:
		// close before clearing so nothing slips in between
		p.queue.Close()
		if discard {
			p.discard(p.queue.Clear(), "pool terminated")
		}
		if p.state == Idle {
			_ = p.startLocked()
		}
		p.state = Draining
	case Draining:
		if discard {
			p.discard(p.queue.Clear(), "pool terminated")
		}
	case Stopped, Killed:
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-p.ctx.Done():
		// killed while draining
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Draining {
		p.state = Stopped
		p.cancel()
		p.notice("pool stopped", zap.Int("failed", p.errors.Len()))
	}
	return nil
}

// KillAll shuts the pool down without waiting for running jobs.
//
// Go cannot preempt a goroutine, so this is best effort: the context
// passed to every running job is cancelled, queued jobs are discarded,
// the queue is closed and KillAll returns at once. A job that ignores
// its context keeps running in the background; its outcome is dropped
// and its worker exits afterwards. Side effects of interrupted jobs are
// the job's own responsibility.
func (p *Pool) KillAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Terminal() {
		return
	}

	if p.state == Idle {
		// no worker will ever close it
		close(p.done)
	}
	p.state = Killed
	p.killed.Store(true)
	p.cancel()
	p.queue.Close()
	p.discard(p.queue.Clear(), "pool killed")
	p.notice("pool killed", zap.Int32("abandoned", p.activeWorkers.Load()))
}

func (p *Pool) discard(n int, reason string) {
	if n == 0 {
		return
	}
	p.metrics.BatchDecQueued(int64(n))
	p.metrics.IncDiscarded(int64(n))
	p.notice("queued jobs discarded", zap.String("reason", reason), zap.Int("discarded", n))
}

func (p *Pool) notice(msg string, fields ...zap.Field) {
	if p.opts.Verbose {
		p.log.Info(msg, fields...)
	}
}

// Errors returns a snapshot of the recorded job failures.
func (p *Pool) Errors() []ErrorEntry { return p.errors.Snapshot() }

// Err combines every recorded job failure, or returns nil.
func (p *Pool) Err() error { return p.errors.Err() }

func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once every worker goroutine exited. A pool killed
// before it was started closes Done in KillAll. Done is never closed
// for a pool that is still Idle.
func (p *Pool) Done() <-chan struct{} { return p.done }

func (p *Pool) Size() int            { return p.opts.Workers }
func (p *Pool) ActiveWorkers() int32 { return p.activeWorkers.Load() }
func (p *Pool) QueueLength() int     { return p.queue.Len() }
