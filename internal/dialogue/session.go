// Package dialogue drives one conversation between a player and the coach.
//
// A [Session] owns the transcript and a two-state turn machine. A player
// message is accepted only while the session is [Idle]; it is appended at
// once and the coach reply is produced by a continuation scheduled after the
// reply delay. While that continuation is outstanding the session is
// [AwaitingResponse] and further submissions fail with [ErrSessionBusy].
//
// All state changes, including the continuation, run under the session
// mutex, so the session behaves as a single logical thread. [Session.Close]
// cancels an outstanding continuation; one that already started waiting for
// the mutex observes the closed flag and returns without appending.
package dialogue

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/gambit/internal/intent"
	"github.com/MrWong99/gambit/internal/message"
	"github.com/MrWong99/gambit/internal/observe"
	"github.com/MrWong99/gambit/internal/profile"
	"github.com/MrWong99/gambit/internal/respond"
	"github.com/MrWong99/gambit/internal/schedule"
)

// DefaultReplyDelay is how long the coach "thinks" before replying.
const DefaultReplyDelay = time.Second

// subscriberBuffer is the event buffer of each subscriber channel.
const subscriberBuffer = 32

var (
	// ErrEmptyContent is returned by [Session.Submit] when the text is empty
	// after trimming. It is the same sentinel as [message.ErrEmptyContent].
	ErrEmptyContent = message.ErrEmptyContent

	// ErrSessionBusy is returned by [Session.Submit] while a reply is pending.
	ErrSessionBusy = errors.New("dialogue: session is awaiting a response")

	// ErrSessionClosed is returned after [Session.Close].
	ErrSessionClosed = errors.New("dialogue: session is closed")
)

// ProfileSource supplies the profile snapshot replies are generated from.
// [*profile.Store] implements it.
type ProfileSource interface {
	Current() *profile.Profile
}

// Option configures a [Session].
type Option func(*Session)

// WithID sets the session ID. By default a random UUID is used.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithGreeting replaces [DefaultGreeting]. Blank greetings are ignored.
func WithGreeting(text string) Option {
	return func(s *Session) {
		if strings.TrimSpace(text) != "" {
			s.greeting = text
		}
	}
}

// WithReplyDelay sets the delay before the coach replies. Negative values are
// treated as zero.
func WithReplyDelay(d time.Duration) Option {
	return func(s *Session) { s.replyDelay = max(d, 0) }
}

// WithScheduler replaces the runtime timer used for reply continuations.
func WithScheduler(sched schedule.Scheduler) Option {
	return func(s *Session) { s.sched = sched }
}

// WithClassifier replaces the default intent classifier.
func WithClassifier(c *intent.Classifier) Option {
	return func(s *Session) { s.classifier = c }
}

// WithGenerator replaces the default response generator.
func WithGenerator(g *respond.Generator) Option {
	return func(s *Session) { s.generator = g }
}

// WithProfile sets the profile source. By default a store holding
// [profile.Default] is used.
func WithProfile(src ProfileSource) Option {
	return func(s *Session) { s.profiles = src }
}

// WithMetrics sets the metrics sink. By default [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogger sets the base logger. By default [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock replaces the wall clock used for message timestamps and reply
// latency.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is one player/coach conversation. All methods are safe for
// concurrent use.
type Session struct {
	id         string
	greeting   string
	classifier *intent.Classifier
	generator  *respond.Generator
	profiles   ProfileSource
	sched      schedule.Scheduler
	metrics    *observe.Metrics
	log        *slog.Logger
	now        func() time.Time

	mu         sync.Mutex
	store      *message.Store
	state      State
	replyDelay time.Duration
	pending    schedule.Task
	idle       chan struct{} // closed while the session is Idle or closed
	closed     bool
	subs       map[int]chan Event
	nextSub    int
}

// New creates a session in the [Idle] state whose transcript holds the coach
// greeting.
func New(opts ...Option) *Session {
	s := &Session{
		greeting:   DefaultGreeting,
		replyDelay: DefaultReplyDelay,
		sched:      schedule.Timer{},
		now:        time.Now,
		subs:       make(map[int]chan Event),
	}
	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.classifier == nil {
		s.classifier = intent.Default()
	}
	if s.generator == nil {
		s.generator = respond.Default()
	}
	if s.profiles == nil {
		s.profiles = profile.NewStore(nil)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("session_id", s.id)

	s.store = message.NewStore(message.WithClock(s.now))
	if _, err := s.store.Append(message.Coach, s.greeting); err != nil {
		// Unreachable: the greeting is never blank.
		panic("dialogue: seed greeting: " + err.Error())
	}
	s.idle = make(chan struct{})
	close(s.idle)

	s.metrics.ActiveSessions.Add(context.Background(), 1)
	s.log.Debug("dialogue session opened")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Submit appends a player message and schedules the coach reply. It returns
// as soon as the message is stored; the reply arrives after the reply delay.
//
// Submit returns [ErrEmptyContent] for blank text, [ErrSessionBusy] while a
// reply is pending and [ErrSessionClosed] after [Session.Close]. A rejected
// submission leaves the session untouched.
func (s *Session) Submit(ctx context.Context, text string) error {
	ctx, span := observe.StartSpan(ctx, "dialogue.Submit",
		trace.WithAttributes(attribute.String("session.id", s.id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.admit(text); err != nil {
		reason := rejectReason(err)
		s.metrics.RecordTurnRejected(ctx, reason)
		span.SetAttributes(attribute.String("dialogue.rejected", reason))
		s.log.DebugContext(ctx, "submission rejected", "reason", reason)
		return err
	}

	user, err := s.store.Append(message.User, text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.state = AwaitingResponse
	s.idle = make(chan struct{})
	s.publish(user)

	submitted := s.now()
	link := trace.LinkFromContext(ctx)
	s.pending = s.sched.AfterFunc(s.replyDelay, func() {
		s.reply(link, user, submitted)
	})

	span.SetAttributes(attribute.Int64("message.seq", int64(user.Seq)))
	s.log.DebugContext(ctx, "player message accepted", "seq", user.Seq, "reply_delay", s.replyDelay)
	return nil
}

// admit must be called with s.mu held.
func (s *Session) admit(text string) error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case strings.TrimSpace(text) == "":
		return ErrEmptyContent
	case s.state != Idle:
		return ErrSessionBusy
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyContent):
		return "empty_content"
	case errors.Is(err, ErrSessionBusy):
		return "session_busy"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	default:
		return "unknown"
	}
}

// reply is the scheduled continuation of an accepted player message.
func (s *Session) reply(link trace.Link, user message.Message, submitted time.Time) {
	ctx, span := observe.StartSpan(context.Background(), "dialogue.reply",
		trace.WithLinks(link),
		trace.WithAttributes(attribute.String("session.id", s.id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		span.SetAttributes(attribute.Bool("dialogue.cancelled", true))
		return
	}
	s.pending = nil

	in := s.classifier.Classify(user.Text)
	text := s.generator.Generate(in, s.profiles.Current())

	coach, err := s.store.Append(message.Coach, text)
	s.state = Idle
	close(s.idle)
	if err != nil {
		// Templates never render blank text; log and free the session anyway.
		span.SetStatus(codes.Error, err.Error())
		observe.Logger(ctx).Error("append coach reply", "session_id", s.id, "intent", in, "err", err)
		return
	}
	s.publish(coach)

	latency := s.now().Sub(submitted)
	s.metrics.RecordTurnSubmitted(ctx, in.String())
	s.metrics.ReplyDuration.Record(ctx, latency.Seconds())
	span.SetAttributes(attribute.String("dialogue.intent", in.String()))
	s.log.DebugContext(ctx, "coach replied", "intent", in, "seq", coach.Seq, "latency", latency)
}

// publish must be called with s.mu held.
func (s *Session) publish(m message.Message) {
	ev := Event{State: s.state, Message: m}
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn("dropping event for slow subscriber", "subscriber", id, "seq", m.Seq)
		}
	}
}

// Transcript returns a copy of the messages so far, oldest first.
func (s *Session) Transcript() []message.Message {
	return s.store.Snapshot()
}

// Messages is the lazy form of [Session.Transcript].
func (s *Session) Messages() iter.Seq[message.Message] {
	return s.store.All()
}

// State returns the current turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReplyDelay returns the delay applied to the next accepted message.
func (s *Session) ReplyDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replyDelay
}

// SetReplyDelay changes the delay for subsequent messages. A reply that is
// already scheduled keeps its original delay.
func (s *Session) SetReplyDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replyDelay = max(d, 0)
}

// Subscribe registers an observer of transcript appends. The returned cancel
// function unsubscribes and closes the channel; it is safe to call more than
// once. Events are dropped for subscribers that fall behind by more than the
// channel buffer. The channel is closed when the session closes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Wait blocks until the session is [Idle]. It returns [ErrSessionClosed] if
// the session is closed and ctx.Err() if ctx ends first.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// Close cancels a pending reply, closes all subscriber channels and rejects
// further submissions. It is idempotent and always returns nil.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	if s.state == AwaitingResponse {
		close(s.idle)
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}

	s.metrics.ActiveSessions.Add(context.Background(), -1)
	s.log.Debug("dialogue session closed", "messages", s.store.Len())
	return nil
}
