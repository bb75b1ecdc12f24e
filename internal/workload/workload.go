// Package workload provides synthetic jobs for exercising a jobpool.Pool.
package workload

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/azargarov/jobpool"
)

// ErrInjected is returned by jobs planned to fail.
var ErrInjected = errors.New("workload: injected failure")

var errBadArgs = errors.New("workload: bad job arguments")

// Recorder is a lock-protected collector of completed job ids.
type Recorder struct {
	mu  sync.Mutex
	ids []int
}

func (r *Recorder) Add(id int) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

// IDs returns the recorded ids in ascending order.
func (r *Recorder) IDs() []int {
	r.mu.Lock()
	out := slices.Clone(r.ids)
	r.mu.Unlock()
	slices.Sort(out)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// Sleep returns a job function taking (id int, d time.Duration, fail bool).
// It sleeps d unless ctx is done, then records id on success.
func Sleep(rec *Recorder) jobpool.JobFunc {
	return func(ctx context.Context, args ...any) error {
		if len(args) != 3 {
			return fmt.Errorf("%w: want 3, got %d", errBadArgs, len(args))
		}
		id, ok1 := args[0].(int)
		d, ok2 := args[1].(time.Duration)
		fail, ok3 := args[2].(bool)
		if !ok1 || !ok2 || !ok3 {
			return fmt.Errorf("%w: %v", errBadArgs, args)
		}

		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}

		if fail {
			return fmt.Errorf("job %d: %w", id, ErrInjected)
		}
		rec.Add(id)
		return nil
	}
}

// Plan describes a batch of sleep jobs.
type Plan struct {
	Durations []time.Duration
	Repeat    int
	// FailEvery makes every n-th job (1-based) fail; 0 disables failures.
	FailEvery int
}

// Size is the number of jobs Schedule submits.
func (p Plan) Size() int {
	return len(p.Durations) * max(p.Repeat, 1)
}

// Schedule submits every job of the plan, ids starting at 0.
// It stops at the first scheduling error.
func (p Plan) Schedule(pool *jobpool.Pool, rec *Recorder) (int, error) {
	fn := Sleep(rec)
	n := 0
	for range max(p.Repeat, 1) {
		for _, d := range p.Durations {
			fail := p.FailEvery > 0 && (n+1)%p.FailEvery == 0
			if err := pool.Schedule(fn, n, d, fail); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
