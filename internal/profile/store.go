package profile

import (
	"errors"
	"sync/atomic"
)

// ErrNilProfile is returned by [Store.Replace] when asked to publish nil.
var ErrNilProfile = errors.New("profile: snapshot must not be nil")

// Store publishes the current [Profile] snapshot to the dialogue engine and
// the dashboard views.
//
// Snapshots are swapped atomically; a reader holding a snapshot keeps seeing
// exactly that snapshot even after a later [Store.Replace]. Callers must treat
// the returned *Profile as read-only.
//
// All methods are safe for concurrent use.
type Store struct {
	current atomic.Pointer[Profile]
}

// NewStore returns a Store publishing p. A nil p publishes the [Default]
// fixture.
func NewStore(p *Profile) *Store {
	if p == nil {
		p = Default()
	}
	s := &Store{}
	s.current.Store(p)
	return s
}

// Current returns the published snapshot.
func (s *Store) Current() *Profile {
	return s.current.Load()
}

// Replace validates p and publishes it as the new snapshot. The previous
// snapshot is left untouched.
func (s *Store) Replace(p *Profile) error {
	if p == nil {
		return ErrNilProfile
	}
	if err := Validate(p); err != nil {
		return err
	}
	s.current.Store(p)
	return nil
}
