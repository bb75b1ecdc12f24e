package jobpool

import (
	"go.uber.org/zap"
)

// Options configure a Pool.
//
// Zero values other than Workers are replaced with defaults in FillDefaults.
// Workers must be set explicitly; a non-positive value is rejected.
type Options struct {
	// Workers is the fixed number of worker goroutines.
	Workers int

	// Verbose enables lifecycle notices and job diagnostics.
	Verbose bool

	// Logger receives lifecycle notices. When nil, verbose pools log
	// to a development logger on stderr and quiet pools discard everything.
	Logger *zap.Logger

	// QueueLimit bounds the number of queued jobs. 0 means unbounded.
	QueueLimit int

	// Retry is the pool-wide retry policy. Jobs may override it.
	Retry RetryPolicy

	// Metrics receives queueing and execution counters.
	Metrics MetricsPolicy

	// PinWorkers locks every worker to an OS thread pinned to one CPU.
	PinWorkers bool

	// OnJobError observes every recorded job failure.
	OnJobError func(ErrorEntry)

	// OnInternalError observes non-job failures such as pinning errors.
	OnInternalError func(error)
}

func (o *Options) FillDefaults() {
	o.Retry = GetDefaultRP().merge(&o.Retry)
	if o.QueueLimit < 0 {
		o.QueueLimit = 0
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
		if o.Verbose {
			if l, err := zap.NewDevelopment(); err == nil {
				o.Logger = l.Named("jobpool")
			}
		}
	}
}

// Validate reports caller misuse that cannot be defaulted.
func (o *Options) Validate() error {
	if o.Workers <= 0 {
		return wrap(ErrInvalidSize, "got %d", o.Workers)
	}
	return nil
}
