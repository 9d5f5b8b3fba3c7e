// Package intent classifies free-text player questions into a small, fixed
// set of coaching topics.
//
// Classification is keyword based: a [Classifier] walks an ordered table of
// [Rule] values and returns the intent of the first rule whose keywords occur
// in the text (case-insensitive). When no rule matches, the fallback [Generic]
// intent is returned, so classification never fails.
//
// Rules are independent of each other: whether a rule matches depends only
// on its own keywords and the input text. Table order only decides between
// rules that match the same text.
package intent

import (
	"fmt"
	"strings"
)

// Intent is a coaching topic label.
type Intent string

const (
	// Endgame covers endgame technique questions.
	Endgame Intent = "endgame"

	// Opening covers repertoire and opening choice questions.
	Opening Intent = "opening"

	// GameReview covers questions about recently played games.
	GameReview Intent = "game_review"

	// TimeManagement covers clock handling questions.
	TimeManagement Intent = "time_management"

	// Tactics covers tactical pattern questions.
	Tactics Intent = "tactics"

	// Generic is the fallback for text that matches no rule.
	Generic Intent = "generic"
)

// all lists every label in declaration order.
var all = []Intent{Endgame, Opening, GameReview, TimeManagement, Tactics, Generic}

// All returns every known intent label, fallback included.
func All() []Intent {
	out := make([]Intent, len(all))
	copy(out, all)
	return out
}

// IsValid reports whether i is a known intent label.
func (i Intent) IsValid() bool {
	for _, known := range all {
		if i == known {
			return true
		}
	}
	return false
}

// Parse converts a configuration string into an [Intent].
func Parse(s string) (Intent, error) {
	i := Intent(strings.ToLower(strings.TrimSpace(s)))
	if !i.IsValid() {
		return "", fmt.Errorf("intent: unknown intent %q", s)
	}
	return i, nil
}

// String implements [fmt.Stringer].
func (i Intent) String() string {
	return string(i)
}
