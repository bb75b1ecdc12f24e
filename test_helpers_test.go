package jobpool_test

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"testing"
	"time"

	jp "github.com/azargarov/jobpool"
)

func newTestPool(t *testing.T, workers int) *jp.Pool {
	t.Helper()
	return newTestPoolFromOptions(t, jp.Options{Workers: workers})
}

func newTestPoolFromOptions(t *testing.T, opts jp.Options) *jp.Pool {
	t.Helper()

	p, err := jp.NewFromOptions(opts)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(p.KillAll)
	return p
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not satisfied before timeout")
}

func waitUntilB(b *testing.B, timeout time.Duration, cond func() bool) {
	b.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	b.Fatal("condition not satisfied before timeout")
}

// collector is a lock-protected list of job ids.
type collector struct {
	mu  sync.Mutex
	ids []int
}

func (c *collector) add(id int) {
	c.mu.Lock()
	c.ids = append(c.ids, id)
	c.mu.Unlock()
}

func (c *collector) sorted() []int {
	c.mu.Lock()
	out := slices.Clone(c.ids)
	c.mu.Unlock()
	slices.Sort(out)
	return out
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// recordID is a job taking a single int argument.
func recordID(c *collector) jp.JobFunc {
	return func(_ context.Context, args ...any) error {
		c.add(args[0].(int))
		return nil
	}
}

// sleepJob sleeps for its single time.Duration argument.
func sleepJob(_ context.Context, args ...any) error {
	time.Sleep(args[0].(time.Duration))
	return nil
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
