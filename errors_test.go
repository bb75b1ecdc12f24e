package jobpool_test

import (
	"strings"
	"testing"

	jp "github.com/azargarov/jobpool"
)

func TestSentinelErrorsArePrefixed(t *testing.T) {
	for _, err := range []error{
		jp.ErrClosedQueue, jp.ErrQueueFull, jp.ErrPoolClosed, jp.ErrInvalidSize,
		jp.ErrNilFunc, jp.ErrJobPanicked, jp.ErrJobCanceled, jp.ErrPinUnsupported,
	} {
		if !strings.HasPrefix(err.Error(), "jobpool: ") {
			t.Errorf("%q lacks the package prefix", err)
		}
	}
}
