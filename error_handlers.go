package jobpool

import (
	"go.uber.org/zap"
)

// reportInternalError reports an internal pool error.
//
// Internal errors are non-job-related failures such as
// worker setup issues. They are logged and passed to
// OnInternalError when registered; they never stop the pool.
func (p *Pool) reportInternalError(e error) {
	p.log.Warn("internal error", zap.Error(e))
	if p.opts.OnInternalError != nil {
		p.opts.OnInternalError(e)
	}
}

// reportJobError records a failed job in the error log and notifies
// the OnJobError observer.
//
// Job errors do not stop pool execution.
func (p *Pool) reportJobError(e ErrorEntry) {
	p.errors.Record(e)
	p.metrics.IncFailed()
	if p.opts.OnJobError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.reportInternalError(wrap(ErrJobPanicked, "OnJobError handler: %v", r))
		}
	}()
	p.opts.OnJobError(e)
}
