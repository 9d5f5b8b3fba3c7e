package intent

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// Rule maps a set of keywords to an intent. A rule matches when any keyword
// occurs in the input text.
type Rule struct {
	Intent   Intent
	Keywords []string
}

// DefaultRules returns the built-in rule table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: Endgame, Keywords: []string{"endgame", "end game", "rook ending", "pawn ending", "opposition"}},
		{Intent: Opening, Keywords: []string{"opening", "repertoire", "sicilian", "caro-kann", "gambit", "defense", "defence"}},
		{Intent: GameReview, Keywords: []string{"last game", "my game", "why did i lose", "lost", "blunder", "review"}},
		{Intent: TimeManagement, Keywords: []string{"time management", "time trouble", "time pressure", "clock", "time control"}},
		{Intent: Tactics, Keywords: []string{"tactic", "fork", "skewer", "combination", "puzzle"}},
	}
}

// Option configures a [Classifier].
type Option func(*Classifier)

// WithFuzzyThreshold enables typo tolerance. A single-word keyword also
// matches when some word of the text has a Jaro-Winkler similarity of at
// least threshold with it. A threshold of 0 (the default) disables fuzzy
// matching; values above 1 never match.
func WithFuzzyThreshold(threshold float64) Option {
	return func(c *Classifier) {
		c.fuzzyThreshold = threshold
	}
}

// WithExtraRules appends rules after the existing table, giving them the
// lowest priority.
func WithExtraRules(rules ...Rule) Option {
	return func(c *Classifier) {
		c.rules = append(c.rules, normaliseRules(rules)...)
	}
}

// minFuzzyWordLen keeps short words ("pin", "end") out of fuzzy matching,
// where Jaro-Winkler scores become unreliable.
const minFuzzyWordLen = 5

// Classifier maps text to an [Intent] using an ordered rule table.
// It is read-only after construction and safe for concurrent use.
type Classifier struct {
	rules          []Rule
	fuzzyThreshold float64
}

// New returns a Classifier over rules, evaluated in the given order.
// Rules with the [Generic] intent or with no keywords are rejected.
func New(rules []Rule, opts ...Option) (*Classifier, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	c := &Classifier{rules: normaliseRules(rules)}
	for _, o := range opts {
		o(c)
	}
	if err := ValidateRules(c.rules); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a Classifier over [DefaultRules].
func Default(opts ...Option) *Classifier {
	c, err := New(DefaultRules(), opts...)
	if err != nil {
		panic("intent: default rules invalid: " + err.Error())
	}
	return c
}

// ValidateRules reports every malformed rule in rules.
func ValidateRules(rules []Rule) error {
	var errs []error
	for i, r := range rules {
		switch {
		case !r.Intent.IsValid():
			errs = append(errs, fmt.Errorf("rules[%d]: unknown intent %q", i, r.Intent))
		case r.Intent == Generic:
			errs = append(errs, fmt.Errorf("rules[%d]: %q is the fallback and cannot have keywords", i, Generic))
		}
		if len(r.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("rules[%d]: at least one keyword is required", i))
		}
		for j, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("rules[%d].keywords[%d] is empty", i, j))
			}
		}
	}
	return errors.Join(errs...)
}

// Rules returns a copy of the rule table in priority order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Intent: r.Intent, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Classify returns the intent of the first rule matching text, or [Generic]
// when none does.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return Generic
	}

	var words []string
	if c.fuzzyThreshold > 0 {
		words = tokenize(lower)
	}

	for _, r := range c.rules {
		if c.matches(r, lower, words) {
			return r.Intent
		}
	}
	return Generic
}

// Match reports whether rule r matches text under this classifier's settings.
func (c *Classifier) Match(r Rule, text string) bool {
	lower := strings.ToLower(text)
	var words []string
	if c.fuzzyThreshold > 0 {
		words = tokenize(lower)
	}
	return c.matches(normaliseRule(r), lower, words)
}

func (c *Classifier) matches(r Rule, lower string, words []string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if c.fuzzyThreshold <= 0 {
		return false
	}
	for _, kw := range r.Keywords {
		if strings.ContainsRune(kw, ' ') || len(kw) < minFuzzyWordLen {
			continue
		}
		for _, w := range words {
			if len(w) < minFuzzyWordLen {
				continue
			}
			if matchr.JaroWinkler(w, kw, false) >= c.fuzzyThreshold {
				return true
			}
		}
	}
	return false
}

// tokenize splits lowercase text into letter/digit words.
func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func normaliseRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = normaliseRule(r)
	}
	return out
}

func normaliseRule(r Rule) Rule {
	kws := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		kws = append(kws, strings.ToLower(strings.TrimSpace(kw)))
	}
	return Rule{Intent: r.Intent, Keywords: kws}
}
