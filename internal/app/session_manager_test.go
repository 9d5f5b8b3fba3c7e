package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/gambit/internal/app"
	"github.com/MrWong99/gambit/internal/dialogue"
	"github.com/MrWong99/gambit/internal/intent"
	"github.com/MrWong99/gambit/internal/message"
	"github.com/MrWong99/gambit/internal/profile"
	"github.com/MrWong99/gambit/internal/schedule/mock"
)

func newManager(t *testing.T) (*app.SessionManager, *mock.Scheduler) {
	t.Helper()
	sched := &mock.Scheduler{}
	sm := app.NewSessionManager(app.SessionManagerConfig{
		Profiles:   profile.NewStore(nil),
		Scheduler:  sched,
		Metrics:    newTestMetrics(t),
		ReplyDelay: time.Second,
	})
	t.Cleanup(func() { _ = sm.Stop() })
	return sm, sched
}

func TestSessionManager_LazySingleSession(t *testing.T) {
	t.Parallel()
	sm, _ := newManager(t)

	if _, ok := sm.Info(); ok {
		t.Fatal("Info() before first access should report no session")
	}

	s := sm.Session()
	if again := sm.Session(); again != s {
		t.Error("Session() should return the same session until reset")
	}

	info, ok := sm.Info()
	if !ok {
		t.Fatal("Info() after first access should report the session")
	}
	if info.SessionID != s.ID() || info.State != dialogue.Idle || info.Messages != 1 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestSessionManager_Reset(t *testing.T) {
	t.Parallel()
	sm, sched := newManager(t)

	first := sm.Session()
	if err := first.Submit(context.Background(), "Best opening for my style?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := sm.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n := sched.RunAll(); n != 0 {
		t.Errorf("pending reply ran after reset (%d tasks)", n)
	}
	if err := first.Submit(context.Background(), "hello"); !errors.Is(err, dialogue.ErrSessionClosed) {
		t.Errorf("Submit on reset session = %v, want ErrSessionClosed", err)
	}

	second := sm.Session()
	if second == first || second.ID() == first.ID() {
		t.Error("Session() after Reset should start a new session")
	}
	if got := len(second.Transcript()); got != 1 {
		t.Errorf("new session has %d messages, want greeting only", got)
	}
}

func TestSessionManager_Stop(t *testing.T) {
	t.Parallel()
	sm, _ := newManager(t)
	_ = sm.Session()

	if err := sm.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := sm.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if err := sm.Reset(); err != nil {
		t.Fatalf("Reset after Stop: %v", err)
	}
	err := sm.Session().Submit(context.Background(), "hello")
	if !errors.Is(err, dialogue.ErrSessionClosed) {
		t.Errorf("Submit after Stop = %v, want ErrSessionClosed", err)
	}
}

func TestSessionManager_StopBeforeFirstAccess(t *testing.T) {
	t.Parallel()
	sm, _ := newManager(t)
	_ = sm.Stop()

	err := sm.Session().Submit(context.Background(), "hello")
	if !errors.Is(err, dialogue.ErrSessionClosed) {
		t.Errorf("Submit after Stop = %v, want ErrSessionClosed", err)
	}
}

func TestSessionManager_Setters(t *testing.T) {
	t.Parallel()
	sm, sched := newManager(t)

	s := sm.Session()
	sm.SetReplyDelay(3 * time.Second)
	if got := s.ReplyDelay(); got != 3*time.Second {
		t.Errorf("active session ReplyDelay() = %v, want 3s", got)
	}

	c, err := intent.New(intent.DefaultRules(), intent.WithExtraRules(intent.Rule{
		Intent:   intent.Tactics,
		Keywords: []string{"zwischenzug"},
	}))
	if err != nil {
		t.Fatalf("intent.New: %v", err)
	}
	sm.SetClassifier(c)
	sm.SetGreeting("Welcome back!")

	// The active session keeps its greeting; the next one gets the new one.
	if got := s.Transcript()[0].Text; got != dialogue.DefaultGreeting {
		t.Errorf("active session greeting changed to %q", got)
	}
	_ = sm.Reset()
	next := sm.Session()
	tr := next.Transcript()
	if tr[0].Text != "Welcome back!" {
		t.Errorf("new session greeting = %q", tr[0].Text)
	}
	if got := next.ReplyDelay(); got != 3*time.Second {
		t.Errorf("new session ReplyDelay() = %v, want 3s", got)
	}

	if err := next.Submit(context.Background(), "What is a zwischenzug?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := sched.Delays[len(sched.Delays)-1]; got != 3*time.Second {
		t.Errorf("scheduled delay = %v, want 3s", got)
	}
	sched.RunAll()

	reply := next.Transcript()[2]
	if reply.Author != message.Coach {
		t.Fatalf("last message author = %s, want coach", reply.Author)
	}
	want := respondFor(t, intent.Tactics)
	if reply.Text != want {
		t.Errorf("reply = %q, want the tactics reply %q", reply.Text, want)
	}
}
