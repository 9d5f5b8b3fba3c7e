// Package message holds the append-only transcript of a coaching dialogue.
//
// A [Store] assigns every appended [Message] a time-ordered UUID, a sequence
// number and a creation time that never goes backwards. Messages are values;
// once appended they are never modified or removed.
package message

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Author identifies who wrote a message.
type Author string

const (
	// User is the player asking questions.
	User Author = "user"

	// Coach is the assistant replying.
	Coach Author = "coach"
)

// IsValid reports whether a is a known author.
func (a Author) IsValid() bool {
	return a == User || a == Coach
}

// Sentinel errors returned by [Store.Append].
var (
	// ErrEmptyContent is returned when the text is empty after trimming.
	ErrEmptyContent = errors.New("message: content is empty")

	// ErrUnknownAuthor is returned for an author other than [User] or [Coach].
	ErrUnknownAuthor = errors.New("message: unknown author")
)

// Message is one transcript entry.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Seq       uint64    `json:"seq"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Option configures a [Store].
type Option func(*Store)

// WithClock replaces the wall clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is an append-only, in-memory message log.
// All methods are safe for concurrent use.
type Store struct {
	now func() time.Time

	mu   sync.RWMutex
	msgs []Message
	last time.Time
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Append trims text and appends it as a new message by author. It returns
// [ErrEmptyContent] without modifying the store when nothing is left after
// trimming.
func (s *Store) Append(author Author, text string) (Message, error) {
	if !author.IsValid() {
		return Message{}, fmt.Errorf("%w %q", ErrUnknownAuthor, author)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.now()
	if created.Before(s.last) {
		created = s.last
	}
	s.last = created

	m := Message{
		ID:        newID(),
		Seq:       uint64(len(s.msgs)) + 1,
		Author:    author,
		Text:      text,
		CreatedAt: created,
	}
	s.msgs = append(s.msgs, m)
	return m, nil
}

// All returns the messages appended so far in order. The snapshot is taken
// when All is called; later appends are not visible to the returned sequence,
// which may be iterated any number of times.
func (s *Store) All() iter.Seq[Message] {
	snap := s.Snapshot()
	return func(yield func(Message) bool) {
		for _, m := range snap {
			if !yield(m) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the messages appended so far.
func (s *Store) Snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// Last returns the most recently appended message.
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.msgs) == 0 {
		return Message{}, false
	}
	return s.msgs[len(s.msgs)-1], true
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.New()
	}
	return id
}
