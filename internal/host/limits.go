package host

import "time"

// Limits bundles the resource limits the interpreter checks during one
// execution (spec.md §5): a wall-clock deadline and a max call-stack depth.
// The max output byte count is not held here; Sink enforces it. The
// interpreter checks Cancelled() at every loop back-edge and function call.
type Limits struct {
	Deadline     time.Time // zero means no deadline
	MaxCallDepth int       // 0 means unlimited
	cancelled    bool
}

// NewLimits builds a Limits with a wall-clock deadline (zero duration means
// no deadline) and a call-stack depth cap (0 means unlimited).
func NewLimits(timeout time.Duration, maxCallDepth int) *Limits {
	l := &Limits{MaxCallDepth: maxCallDepth}
	if timeout > 0 {
		l.Deadline = time.Now().Add(timeout)
	}
	return l
}

// Cancel raises the cancel flag explicitly, e.g. from a watchdog goroutine.
func (l *Limits) Cancel() {
	l.cancelled = true
}

// Cancelled reports whether execution should abort: either the deadline has
// passed or Cancel was called.
func (l *Limits) Cancelled() bool {
	if l == nil {
		return false
	}
	if l.cancelled {
		return true
	}
	if !l.Deadline.IsZero() && time.Now().After(l.Deadline) {
		return true
	}
	return false
}

// StackLimit returns the configured call-depth cap, or a large default when
// unset, so the interpreter always has a concrete value to compare against.
func (l *Limits) StackLimit() int {
	if l == nil || l.MaxCallDepth <= 0 {
		return 4096
	}
	return l.MaxCallDepth
}
