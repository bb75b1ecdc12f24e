package jobpool

import (
	"context"
	"sync"
)

const initialQueueCapacity = 64

// JobQueue is a FIFO queue of jobs shared by all workers of a pool.
//
// It is safe for concurrent producers and consumers. Every pushed job
// is handed to at most one Pop caller. Once closed the queue rejects
// new jobs, while Pop keeps draining what is left and then reports
// end of stream.
//
// Jobs are stored in a circular buffer that grows on demand. A single
// mutex guards the buffer and the closed flag, so Clear and Pop can
// never observe a half-discarded queue.
type JobQueue struct {
	mu sync.Mutex

	buf        []Job // circular buffer
	head, tail int   // read/write indices
	size       int   // number of jobs currently buffered

	// limit caps size; 0 means unbounded.
	limit  int
	closed bool

	// wake is closed and replaced whenever a waiting consumer
	// must re-check the queue.
	wake    chan struct{}
	waiters int
}

// NewJobQueue creates an open queue. A positive limit bounds the number
// of buffered jobs; Push fails with ErrQueueFull beyond it.
func NewJobQueue(limit int) *JobQueue {
	if limit < 0 {
		limit = 0
	}
	c := initialQueueCapacity
	if limit > 0 && limit < c {
		c = limit
	}
	return &JobQueue{
		buf:   make([]Job, c),
		limit: limit,
		wake:  make(chan struct{}),
	}
}

// Push appends a job at the tail of the queue.
func (q *JobQueue) Push(j Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosedQueue
	}
	if q.limit > 0 && q.size >= q.limit {
		return ErrQueueFull
	}
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[q.tail] = j
	q.tail++
	if q.tail == len(q.buf) {
		q.tail = 0
	}
	q.size++
	q.notify()
	return nil
}

// Pop removes and returns the oldest job.
//
// If the queue is empty and open, Pop blocks until a job arrives, the
// queue is closed or ctx is done. It returns false on end of stream
// (empty and closed) and when ctx is done; it never blocks on a closed
// queue.
func (q *JobQueue) Pop(ctx context.Context) (Job, bool) {
	for {
		q.mu.Lock()
		if q.size > 0 {
			j := q.pop()
			q.mu.Unlock()
			return j, true
		}
		if q.closed {
			q.mu.Unlock()
			return Job{}, false
		}
		wake := q.wake
		q.waiters++
		q.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			q.mu.Lock()
			if q.wake == wake {
				q.waiters--
			}
			q.mu.Unlock()
			return Job{}, false
		}
	}
}

// TryPop is the non-blocking variant of Pop.
func (q *JobQueue) TryPop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return Job{}, false
	}
	return q.pop(), true
}

// Close marks the queue closed. Already queued jobs are kept.
// Calling Close more than once has no effect.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.broadcast()
}

// Clear discards every job that has not been claimed by Pop and
// reports how many were dropped. The open/closed state is unchanged.
func (q *JobQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.size
	clear(q.buf)
	q.head, q.tail, q.size = 0, 0, 0
	return n
}

// Len returns the number of jobs waiting in the queue.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Closed reports whether Close has been called.
func (q *JobQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// pop requires q.mu and a non-empty queue.
func (q *JobQueue) pop() Job {
	j := q.buf[q.head]
	q.buf[q.head] = Job{} // drop references for GC
	q.head++
	if q.head == len(q.buf) {
		q.head = 0
	}
	q.size--
	return j
}

func (q *JobQueue) grow() {
	n := len(q.buf) * 2
	if n == 0 {
		n = initialQueueCapacity
	}
	if q.limit > 0 && n > q.limit {
		n = q.limit
	}
	buf := make([]Job, n)
	if q.size > 0 {
		if q.head < q.tail {
			copy(buf, q.buf[q.head:q.tail])
		} else {
			k := copy(buf, q.buf[q.head:])
			copy(buf[k:], q.buf[:q.tail])
		}
	}
	q.buf = buf
	q.head = 0
	q.tail = q.size
	if q.tail == len(q.buf) {
		q.tail = 0
	}
}

func (q *JobQueue) notify() {
	if q.waiters > 0 {
		q.broadcast()
	}
}

// broadcast wakes every waiting consumer. Woken consumers re-check
// the queue under the lock, so only one of them gets each job.
func (q *JobQueue) broadcast() {
	close(q.wake)
	q.wake = make(chan struct{})
	q.waiters = 0
}
