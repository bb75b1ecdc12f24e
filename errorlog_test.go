package jobpool_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/multierr"

	jp "github.com/azargarov/jobpool"
)

func TestErrorLog_ConcurrentRecord(t *testing.T) {
	l := jp.NewErrorLog()

	const writers = 32
	const perWriter = 100

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range perWriter {
				l.Record(jp.ErrorEntry{
					Err:  fmt.Errorf("w%d-%d", w, i),
					Args: []any{w, i},
				})
				_ = l.Len() // readers interleave with writers
			}
		}(w)
	}
	wg.Wait()

	entries := l.Snapshot()
	if len(entries) != writers*perWriter {
		t.Fatalf("recorded %d; want %d", len(entries), writers*perWriter)
	}

	// per writer, append order is preserved
	last := make(map[int]int)
	for _, e := range entries {
		w, i := e.Args[0].(int), e.Args[1].(int)
		if prev, ok := last[w]; ok && i <= prev {
			t.Fatalf("writer %d entries out of order: %d after %d", w, i, prev)
		}
		last[w] = i
		if e.At.IsZero() {
			t.Fatal("Record should stamp the entry time")
		}
	}
}

func TestErrorLog_SnapshotIsACopy(t *testing.T) {
	l := jp.NewErrorLog()
	l.Record(jp.ErrorEntry{Err: errors.New("first")})

	snap := l.Snapshot()
	l.Record(jp.ErrorEntry{Err: errors.New("second")})
	snap[0].Err = nil

	if len(snap) != 1 {
		t.Fatalf("snapshot grew to %d entries", len(snap))
	}
	if got := l.Snapshot()[0].Err; got == nil || got.Error() != "first" {
		t.Fatalf("mutating a snapshot changed the log: %v", got)
	}
}

func TestErrorLog_Err(t *testing.T) {
	l := jp.NewErrorLog()
	if l.Err() != nil {
		t.Fatal("empty log must return nil")
	}

	e1, e2 := errors.New("one"), errors.New("two")
	l.Record(jp.ErrorEntry{Err: e1})
	l.Record(jp.ErrorEntry{Err: e2})

	err := l.Err()
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("combined error lost a cause: %v", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("combined %d errors; want 2", n)
	}
}

func TestErrorLog_SnapshotCopiesArgs(t *testing.T) {
	l := jp.NewErrorLog()
	l.Record(jp.ErrorEntry{Err: errors.New("e"), Args: []any{1, 2}})

	snap := l.Snapshot()
	snap[0].Args[0] = 99

	if got := l.Snapshot()[0].Args[0]; got != 1 {
		t.Fatalf("mutating snapshot args changed the log: %v", got)
	}
}
