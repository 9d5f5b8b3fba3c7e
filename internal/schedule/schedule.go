// Package schedule abstracts deferred execution so that delayed work, such as
// the coach's reply, can be cancelled and driven deterministically in tests.
//
// Production code uses [Timer]; tests use the manual scheduler in the mock
// subpackage.
package schedule

import "time"

// Task is a pending scheduled function.
type Task interface {
	// Stop cancels the task. It reports whether the call stopped the task;
	// false means it already ran or was already stopped.
	Stop() bool
}

// Scheduler runs functions after a delay.
type Scheduler interface {
	// AfterFunc arranges for fn to run in its own goroutine once d has
	// elapsed. A non-positive d runs fn as soon as possible.
	AfterFunc(d time.Duration, fn func()) Task
}

// Compile-time interface assertion.
var _ Scheduler = Timer{}

// Timer is a [Scheduler] backed by the runtime timer.
type Timer struct{}

// AfterFunc implements [Scheduler] using [time.AfterFunc].
func (Timer) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}
