// Package jobpool provides a fixed-size worker pool that runs
// independent jobs concurrently and collects their failures.
//
// Architecture overview
//
// The pool is composed of three loosely coupled parts:
//
//  1. Queue (JobQueue)
//     A FIFO shared by all workers. Every job is delivered to exactly
//     one worker. Closing the queue is one-way: producers are rejected,
//     consumers drain what is left and then see end of stream.
//
//  2. Execution (Pool / workers)
//     N goroutines run a dequeue-execute loop. Parallelism is achieved
//     across workers; a worker runs one job at a time.
//
//  3. Failure collection (ErrorLog)
//     Jobs that return an error or panic are recorded with their
//     arguments. A failing job never stops its worker.
//
// Lifecycle
//
// A pool moves through Idle, Running, Draining and one of the terminal
// states Stopped or Killed:
//
//   - Start spawns the workers and returns at once.
//   - Schedule enqueues a job. It is valid before Start.
//   - Wait closes the queue and blocks until every queued job ran.
//   - Terminate discards queued jobs no worker claimed yet, then waits
//     for the jobs already running.
//   - KillAll cancels the context of running jobs, discards the queue
//     and returns without waiting.
//
// After Wait, Terminate or KillAll, Schedule fails with ErrClosedQueue
// and Start fails with ErrPoolClosed.
//
// Basic usage
//
//	p, err := jobpool.New(4, false)
//	if err != nil {
//	    return err
//	}
//	_ = p.Start()
//	for _, u := range urls {
//	    _ = p.Schedule(fetch, u)
//	}
//	p.Wait()
//	for _, e := range p.Errors() {
//	    log.Printf("%v failed: %v", e.Args, e.Err)
//	}
//
// Hard kill
//
// Go has no way to stop a goroutine from the outside. KillAll is a
// best-effort operation: jobs observe cancellation through the context
// they receive. A job that ignores it keeps running in the background
// and its result is discarded.
//
// Error handling
//
// The pool distinguishes between two classes of errors:
//
//   - Job errors: returned by job functions or produced by panic recovery.
//     They are recorded in the ErrorLog and passed to Options.OnJobError.
//   - Internal errors: unexpected failures inside the pool itself, such
//     as a worker that cannot be pinned to a CPU. They are passed to
//     Options.OnInternalError.
//
// Only protocol misuse is returned synchronously: ErrInvalidSize at
// construction, ErrClosedQueue and ErrQueueFull from Schedule.
//
// Retries
//
// A pool-wide RetryPolicy, overridable per job, reruns failing jobs
// with exponential backoff. The default is a single attempt.
//
// CPU pinning
//
// On Linux, workers may optionally be pinned to specific CPUs.
// When enabled, workers are locked to OS threads and restricted
// to run on a single CPU core.
package jobpool
