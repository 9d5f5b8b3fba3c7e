package dialogue

import (
	"fmt"

	"github.com/MrWong99/gambit/internal/message"
)

// State is the turn state of a [Session].
type State int

const (
	// Idle means the session accepts a new player message.
	Idle State = iota

	// AwaitingResponse means a player message was accepted and the coach
	// reply is scheduled but not yet appended.
	AwaitingResponse
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting_response"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements [encoding.TextMarshaler] so states encode as their
// names in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event is delivered to subscribers whenever a message is appended to the
// transcript. State is the session state after the append.
type Event struct {
	State   State           `json:"state"`
	Message message.Message `json:"message"`
}
