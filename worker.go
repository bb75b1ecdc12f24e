package jobpool

import (
	"context"
	"runtime"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
)

// worker dequeues and runs jobs until the queue reports end of stream
// or the pool is killed.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	if p.opts.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := PinToCPU(id % runtime.NumCPU()); err != nil {
			p.reportInternalError(wrap(err, "pin worker %d", id))
		}
	}

	for {
		job, ok := p.queue.Pop(p.ctx)
		if !ok {
			return
		}
		p.metrics.BatchDecQueued(1)
		if p.killed.Load() {
			p.metrics.IncDiscarded(1)
			return
		}
		p.processJob(id, job)
	}
}

// processJob runs one job, retrying it according to the effective
// retry policy, and records the final failure. A failing or panicking
// job never stops the worker.
func (p *Pool) processJob(workerID int, job Job) {
	p.activeWorkers.Add(1)
	defer p.activeWorkers.Add(-1)

	if err := job.Ctx.Err(); err != nil {
		p.reportJobError(ErrorEntry{
			Err:      joinErr(ErrJobCanceled, err),
			Job:      job,
			Args:     job.Args,
			WorkerID: workerID,
		})
		return
	}

	defer p.metrics.IncExecuted()

	ctx, cancel := context.WithCancel(job.Ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	pol := p.opts.Retry.merge(job.Retry)
	next := func() time.Duration { return pol.Initial }
	if pol.Attempts > 1 {
		bo := boff.New(pol.Initial, pol.Max, time.Now().UnixNano())
		next = bo.Next
	}

	var (
		err     error
		attempt int
	)
retry:
	for attempt = 1; ; attempt++ {
		start := time.Now()
		err = p.call(ctx, job)
		p.metrics.ObserveDuration(time.Since(start))

		if err == nil || attempt >= pol.Attempts || p.killed.Load() {
			break
		}

		delay := next()
		if p.opts.Verbose {
			lg.FromContext(job.Ctx).Warn("job attempt failed; backing off",
				lg.String("job_id", job.ID.String()),
				lg.Int("attempt", attempt),
				lg.String("sleep", delay.String()),
				lg.Any("error", err),
			)
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			break retry
		}
	}

	// outcome of a killed pool is abandoned
	if err == nil || p.killed.Load() {
		return
	}
	if p.opts.Verbose {
		lg.FromContext(job.Ctx).Error("job failed",
			lg.String("job_id", job.ID.String()),
			lg.Int("attempt", attempt),
			lg.Any("error", err),
		)
	}
	p.reportJobError(ErrorEntry{
		Err:      err,
		Job:      job,
		Args:     job.Args,
		Attempts: attempt,
		WorkerID: workerID,
		At:       time.Now(),
	})
}

// call invokes the job function, turning a panic into ErrJobPanicked.
func (p *Pool) call(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrap(ErrJobPanicked, "%v", r)
			if p.opts.Verbose {
				lg.FromContext(job.Ctx).Error("job panicked",
					lg.String("job_id", job.ID.String()),
					lg.Any("panic", r),
				)
			}
		}
	}()
	return job.Fn(ctx, job.Args...)
}
