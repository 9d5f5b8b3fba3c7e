// Package respond turns a classified [intent.Intent] into a coach reply
// personalised with fields from the player's [profile.Profile].
//
// Replies are deterministic: the same intent and profile always produce the
// same text. A [Generator] must have a template for every intent label;
// [New] rejects incomplete template sets so a missing template is caught when
// the generator is built, never papered over at reply time.
package respond

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/MrWong99/gambit/internal/intent"
	"github.com/MrWong99/gambit/internal/profile"
)

// Template renders the reply for one intent from a profile snapshot.
// Templates must not modify the profile.
type Template func(p *profile.Profile) string

// ErrMissingTemplate is wrapped by [New] for every intent without a template.
var ErrMissingTemplate = errors.New("respond: missing template")

// Generator maps intents to reply templates. It is read-only after
// construction and safe for concurrent use.
type Generator struct {
	templates map[intent.Intent]Template
}

// New returns a Generator over templates. Every label in [intent.All] must
// have a non-nil template.
func New(templates map[intent.Intent]Template) (*Generator, error) {
	var errs []error
	for _, in := range intent.All() {
		if templates[in] == nil {
			errs = append(errs, fmt.Errorf("%w for intent %q", ErrMissingTemplate, in))
		}
	}
	for in := range templates {
		if !in.IsValid() {
			errs = append(errs, fmt.Errorf("respond: template for unknown intent %q", in))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Generator{templates: maps.Clone(templates)}, nil
}

// Default returns a Generator over [DefaultTemplates].
func Default() *Generator {
	g, err := New(DefaultTemplates())
	if err != nil {
		panic(err.Error())
	}
	return g
}

// Generate renders the reply for in. in must be a label from [intent.All];
// the classifier never produces anything else.
func (g *Generator) Generate(in intent.Intent, p *profile.Profile) string {
	return g.templates[in](p)
}

// Intents returns the intents this generator covers, sorted.
func (g *Generator) Intents() []intent.Intent {
	return slices.Sorted(maps.Keys(g.templates))
}
