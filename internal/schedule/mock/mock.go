// Package mock provides a manual [schedule.Scheduler] for deterministic tests.
//
// Scheduled functions never run on their own. The test advances a virtual
// clock with [Scheduler.Advance] or drains everything with [Scheduler.RunAll];
// due functions then run synchronously on the calling goroutine, earliest
// first, in scheduling order on ties.
//
// Example:
//
//	s := &mock.Scheduler{}
//	sess := dialogue.New(dialogue.WithScheduler(s))
//	_ = sess.Submit(ctx, "How to improve in endgames?")
//	s.Advance(time.Second) // the coach replies now
package mock

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/MrWong99/gambit/internal/schedule"
)

// Compile-time interface assertion.
var _ schedule.Scheduler = (*Scheduler)(nil)

// Scheduler is a manual [schedule.Scheduler]. The zero value is ready to use
// and safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	now     time.Duration
	nextSeq int
	pending []*task

	// Delays records the delay of every AfterFunc call in order.
	Delays []time.Duration
}

type task struct {
	s   *Scheduler
	at  time.Duration
	seq int
	fn  func()
}

// AfterFunc implements [schedule.Scheduler].
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) schedule.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Delays = append(s.Delays, d)
	t := &task{s: s, at: s.now + max(d, 0), seq: s.nextSeq, fn: fn}
	s.nextSeq++
	s.pending = append(s.pending, t)
	return t
}

// Stop implements [schedule.Task].
func (t *task) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.remove(t)
}

// Advance moves the virtual clock forward by d and runs every task that
// becomes due. Tasks scheduled by running tasks are honoured if they fall
// within the window. It returns the number of tasks run.
func (s *Scheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	n := 0
	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		t.fn()
		n++
	}

	s.mu.Lock()
	if s.now < target {
		s.now = target
	}
	s.mu.Unlock()
	return n
}

// RunAll runs pending tasks, including any they schedule, until none remain.
// It returns the number of tasks run.
func (s *Scheduler) RunAll() int {
	n := 0
	for {
		t := s.popDue(-1)
		if t == nil {
			return n
		}
		t.fn()
		n++
	}
}

// Pending returns the number of scheduled tasks that have neither run nor
// been stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Elapsed returns the virtual time advanced so far.
func (s *Scheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// popDue removes and returns the earliest task due at or before limit, moving
// the clock to its deadline. A negative limit accepts any task.
func (s *Scheduler) popDue(limit time.Duration) *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	next := slices.MinFunc(s.pending, func(a, b *task) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	if limit >= 0 && next.at > limit {
		return nil
	}
	s.remove(next)
	if next.at > s.now {
		s.now = next.at
	}
	return next
}

// remove must be called with s.mu held.
func (s *Scheduler) remove(t *task) bool {
	i := slices.Index(s.pending, t)
	if i < 0 {
		return false
	}
	s.pending = slices.Delete(s.pending, i, i+1)
	return true
}
