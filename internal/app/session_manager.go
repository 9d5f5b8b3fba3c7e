package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/MrWong99/gambit/internal/dialogue"
	"github.com/MrWong99/gambit/internal/intent"
	"github.com/MrWong99/gambit/internal/observe"
	"github.com/MrWong99/gambit/internal/schedule"
)

// SessionInfo holds metadata about the active session.
type SessionInfo struct {
	// SessionID is the unique identifier of the session.
	SessionID string

	// StartedAt is when the session was created.
	StartedAt time.Time

	// State is the session's turn state.
	State dialogue.State

	// Messages is the transcript length, greeting included.
	Messages int
}

// SessionManagerConfig holds the dependencies of a [SessionManager].
type SessionManagerConfig struct {
	Profiles   dialogue.ProfileSource
	Scheduler  schedule.Scheduler
	Metrics    *observe.Metrics
	Classifier *intent.Classifier
	Logger     *slog.Logger

	// ReplyDelay and Greeting seed new sessions; see the setters.
	ReplyDelay time.Duration
	Greeting   string

	// Now defaults to time.Now.
	Now func() time.Time
}

// SessionManager owns the single coaching session. The session is created
// on first access and replaced by a fresh one after [SessionManager.Reset].
// All exported methods are safe for concurrent use.
type SessionManager struct {
	mu        sync.Mutex
	cur       *dialogue.Session
	startedAt time.Time
	stopped   bool

	cfg SessionManagerConfig
}

// NewSessionManager creates a SessionManager. No session exists until the
// first call to [SessionManager.Session].
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SessionManager{cfg: cfg}
}

// Session returns the active session, starting one if there is none. After
// [SessionManager.Stop] it returns a closed session, so every submission
// fails with [dialogue.ErrSessionClosed].
func (sm *SessionManager) Session() *dialogue.Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.cur != nil {
		return sm.cur
	}
	sm.cur = sm.newSessionLocked()
	sm.startedAt = sm.cfg.Now()
	if sm.stopped {
		_ = sm.cur.Close()
	} else {
		sm.cfg.Logger.Info("coaching session started", "session_id", sm.cur.ID())
	}
	return sm.cur
}

func (sm *SessionManager) newSessionLocked() *dialogue.Session {
	opts := []dialogue.Option{
		dialogue.WithReplyDelay(sm.cfg.ReplyDelay),
		dialogue.WithGreeting(sm.cfg.Greeting),
		dialogue.WithClock(sm.cfg.Now),
		dialogue.WithLogger(sm.cfg.Logger),
	}
	if sm.cfg.Profiles != nil {
		opts = append(opts, dialogue.WithProfile(sm.cfg.Profiles))
	}
	if sm.cfg.Scheduler != nil {
		opts = append(opts, dialogue.WithScheduler(sm.cfg.Scheduler))
	}
	if sm.cfg.Metrics != nil {
		opts = append(opts, dialogue.WithMetrics(sm.cfg.Metrics))
	}
	if sm.cfg.Classifier != nil {
		opts = append(opts, dialogue.WithClassifier(sm.cfg.Classifier))
	}
	return dialogue.New(opts...)
}

// Reset closes the active session, cancelling any pending coach reply. The
// next call to [SessionManager.Session] starts a new one.
func (sm *SessionManager) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.cur == nil || sm.stopped {
		return nil
	}
	id := sm.cur.ID()
	err := sm.cur.Close()
	sm.cur = nil
	sm.cfg.Logger.Info("coaching session reset", "session_id", id)
	return err
}

// Stop closes the active session for good. It is idempotent.
func (sm *SessionManager) Stop() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.stopped {
		return nil
	}
	sm.stopped = true
	if sm.cur == nil {
		return nil
	}
	return sm.cur.Close()
}

// Info returns metadata about the active session. ok is false when no
// session has been started.
func (sm *SessionManager) Info() (info SessionInfo, ok bool) {
	sm.mu.Lock()
	cur, started := sm.cur, sm.startedAt
	sm.mu.Unlock()

	if cur == nil {
		return SessionInfo{}, false
	}
	return SessionInfo{
		SessionID: cur.ID(),
		StartedAt: started,
		State:     cur.State(),
		Messages:  len(cur.Transcript()),
	}, true
}

// SetReplyDelay changes the reply delay of the active session and of every
// later one.
func (sm *SessionManager) SetReplyDelay(d time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.cfg.ReplyDelay = d
	if sm.cur != nil {
		sm.cur.SetReplyDelay(d)
	}
}

// SetClassifier replaces the classifier used by sessions started afterwards.
func (sm *SessionManager) SetClassifier(c *intent.Classifier) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cfg.Classifier = c
}

// SetGreeting replaces the greeting of sessions started afterwards.
func (sm *SessionManager) SetGreeting(text string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cfg.Greeting = text
}
