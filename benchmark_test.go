package jobpool_test

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	jp "github.com/azargarov/jobpool"
)

var sink atomic.Uint64

var workloads = []struct {
	name string
	fn   func()
}{
	{"Empty", func() {}},
	{"CPU_1k", func() { spin(1_000) }},
	{"CPU_10k", func() { spin(10_000) }},
	{"Sleep_50us", func() { time.Sleep(50 * time.Microsecond) }},
}

func spin(n int) {
	var x uint64
	for i := range n {
		x += uint64(i) * 2654435761
	}
	sink.Add(x)
}

// -----------------------------------------------------------------------------
// Queue
// -----------------------------------------------------------------------------

func BenchmarkJobQueue_PushPop(b *testing.B) {
	q := jp.NewJobQueue(0)
	job := jp.NewJob(func(context.Context, ...any) error { return nil })

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := q.Push(job); err != nil {
			b.Fatalf("push failed: %v", err)
		}
		if _, ok := q.TryPop(); !ok {
			b.Fatal("pop failed")
		}
	}
}

func BenchmarkJobQueue_Contended(b *testing.B) {
	q := jp.NewJobQueue(0)
	job := jp.NewJob(func(context.Context, ...any) error { return nil })

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = q.Push(job)
			q.TryPop()
		}
	})
}

// -----------------------------------------------------------------------------
// Pool
// -----------------------------------------------------------------------------

func BenchmarkPool_Throughput(b *testing.B) {
	procs := runtime.GOMAXPROCS(0)
	cases := []struct {
		name    string
		workers int
		pinned  bool
	}{
		{"W1", 1, false},
		{"W4", 4, false},
		{"WP", procs, false},
		{"WPx2", procs * 2, false},
		{"WP/pinned", procs, true},
	}

	for _, w := range workloads {
		b.Run(w.name, func(b *testing.B) {
			for _, tc := range cases {
				b.Run(tc.name, func(b *testing.B) {
					runPoolThroughputBench(b, tc.workers, tc.pinned, w.fn)
				})
			}
		})
	}
}

func runPoolThroughputBench(b *testing.B, workers int, pinned bool, fn func()) {
	metrics := &jp.AtomicMetrics{}
	pool, err := jp.NewFromOptions(jp.Options{
		Workers:    workers,
		PinWorkers: pinned,
		Metrics:    metrics,
	})
	if err != nil {
		b.Fatal(err)
	}
	if err := pool.Start(); err != nil {
		b.Fatal(err)
	}
	defer pool.KillAll()

	job := func(context.Context, ...any) error {
		fn()
		return nil
	}

	b.ResetTimer()
	start := time.Now()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := pool.Schedule(job); err != nil {
				b.Errorf("schedule failed: %v", err)
				return
			}
		}
	})
	waitUntilB(b, 30*time.Second, func() bool {
		return metrics.Executed() == uint64(b.N)
	})

	secs := time.Since(start).Seconds()
	b.ReportMetric(math.Round(float64(metrics.Executed())/secs/1e3), "kj/s")
}

// BenchmarkPool_Latency measures time from Schedule to job start.
func BenchmarkPool_Latency(b *testing.B) {
	pool, err := jp.New(runtime.GOMAXPROCS(0), false)
	if err != nil {
		b.Fatal(err)
	}
	_ = pool.Start()
	defer pool.KillAll()

	var total atomic.Int64
	done := make(chan struct{}, 1)
	job := func(_ context.Context, args ...any) error {
		total.Add(int64(time.Since(args[0].(time.Time))))
		done <- struct{}{}
		return nil
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.Schedule(job, time.Now())
		<-done
	}
	b.ReportMetric(float64(total.Load())/float64(b.N), "ns/start")
}
