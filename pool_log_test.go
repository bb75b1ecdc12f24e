package jobpool_test

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	jp "github.com/azargarov/jobpool"
)

func observedPool(t *testing.T, verbose bool) (*jp.Pool, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	p := newTestPoolFromOptions(t, jp.Options{
		Workers: 2,
		Verbose: verbose,
		Logger:  zap.New(core),
	})
	return p, logs
}

func TestVerboseNotices(t *testing.T) {
	p, logs := observedPool(t, true)
	_ = p.Schedule(sleepJob, time.Millisecond)
	_ = p.Start()
	p.Wait()

	for _, msg := range []string{"pool started", "pool stopped"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Fatalf("expected one %q notice; got %v", msg, logs.AllUntimed())
		}
	}
	started := logs.FilterMessage("pool started").All()[0]
	if started.ContextMap()["workers"] != int64(2) {
		t.Fatalf("started notice fields: %v", started.ContextMap())
	}
}

func TestVerboseNotices_Kill(t *testing.T) {
	p, logs := observedPool(t, true)
	release := make(chan struct{})
	defer close(release)

	_ = p.Schedule(func(ctx context.Context, _ ...any) error {
		<-ctx.Done()
		return ctx.Err()
	})
	_ = p.Schedule(func(context.Context, ...any) error {
		<-release
		return nil
	})
	for range 5 {
		_ = p.Schedule(sleepJob, time.Millisecond)
	}
	_ = p.Start()
	waitUntil(t, time.Second, func() bool { return p.ActiveWorkers() == 2 })
	p.KillAll()

	if logs.FilterMessage("pool killed").Len() != 1 {
		t.Fatalf("missing kill notice: %v", logs.AllUntimed())
	}
	discarded := logs.FilterMessage("queued jobs discarded").All()
	if len(discarded) != 1 || discarded[0].ContextMap()["discarded"] != int64(5) {
		t.Fatalf("discard notice: %v", discarded)
	}
}

func TestQuietPoolLogsNothing(t *testing.T) {
	p, logs := observedPool(t, false)
	_ = p.Schedule(func(context.Context, ...any) error { return errBoom })
	_ = p.Schedule(func(context.Context, ...any) error { panic("quiet") })
	p.Wait()

	if logs.Len() != 0 {
		t.Fatalf("quiet pool logged %d entries: %v", logs.Len(), logs.AllUntimed())
	}
	if len(p.Errors()) != 2 {
		t.Fatalf("failures must be recorded regardless of verbosity; got %d", len(p.Errors()))
	}
}

// A verbose pool without an explicit logger writes its notices to stderr.
func TestVerboseNotices_DefaultLogger(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	stderr := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = stderr })

	p, err := jp.New(2, true)
	if err != nil {
		os.Stderr = stderr
		t.Fatalf("new pool: %v", err)
	}
	os.Stderr = stderr

	_ = p.Start()
	_ = p.Schedule(sleepJob, time.Millisecond)
	p.Wait()
	_ = w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, msg := range []string{"pool started", "pool stopped"} {
		if !strings.Contains(string(out), msg) {
			t.Fatalf("missing %q in verbose output:\n%s", msg, out)
		}
	}
}
