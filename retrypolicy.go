package jobpool

import (
	"time"
)

const (
	defaultAttempts     = 1
	defaultInitialRetry = 200 * time.Millisecond
	defaultMaxRetry     = 5 * time.Second
)

// RetryPolicy describes how many times and how often a failing job is run.
// Zero values are treated as "use pool defaults".
type RetryPolicy struct {
	// Attempts is the maximum number of tries for a job.
	// The pool default is a single attempt.
	Attempts int

	// Initial is the first backoff duration.
	Initial time.Duration

	// Max is the cap for backoff duration.
	Max time.Duration
}

// GetDefaultRP returns a pointer to the default retry policy used by the pool.
func GetDefaultRP() *RetryPolicy {
	rp := RetryPolicy{
		Attempts: defaultAttempts,
		Initial:  defaultInitialRetry,
		Max:      defaultMaxRetry,
	}
	return &rp
}

// merge overrides non-zero fields of p with the ones of override.
func (p RetryPolicy) merge(override *RetryPolicy) RetryPolicy {
	if override == nil {
		return p
	}
	if override.Attempts > 0 {
		p.Attempts = override.Attempts
	}
	if override.Initial > 0 {
		p.Initial = override.Initial
	}
	if override.Max > 0 {
		p.Max = override.Max
	}
	return p
}
