package ledger

import "time"

// Scheduler runs fn after d on its own goroutine. The returned stop function
// reports whether it prevented fn from running. Implementations must never
// call fn synchronously from AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}
