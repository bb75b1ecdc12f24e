package jobpool

// State is the lifecycle state of a Pool.
//
//	Idle ──Start──► Running ──Wait/Terminate──► Draining ──► Stopped
//	  │                │                            │
//	  └────────────────┴──────────KillAll───────────┴──────► Killed
//
// Stopped and Killed are terminal: the queue is closed and the pool
// cannot be started again.
type State int32

const (
	// Idle is the initial state. Jobs may be scheduled but no worker runs.
	Idle State = iota

	// Running means workers are spawned and consuming the queue.
	Running

	// Draining means the queue is closed and workers are finishing
	// the remaining jobs.
	Draining

	// Stopped means all workers exited after draining the queue.
	Stopped

	// Killed means the pool was shut down by KillAll. In-flight jobs
	// may still be running in the background but their results are
	// discarded.
	Killed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	case Killed:
		return "killed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Stopped or Killed.
func (s State) Terminal() bool {
	return s == Stopped || s == Killed
}
