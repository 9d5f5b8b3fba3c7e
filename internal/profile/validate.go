package profile

import (
	"errors"
	"fmt"
)

// Validate checks p for values the dashboards and response templates rely on.
// It returns a joined error listing every problem found.
func Validate(p *Profile) error {
	var errs []error

	if p.Rating <= 0 {
		errs = append(errs, fmt.Errorf("rating %d must be positive", p.Rating))
	}
	if p.PlayingStyle == "" {
		errs = append(errs, errors.New("playing_style is required"))
	}

	for i, o := range p.Openings {
		prefix := fmt.Sprintf("openings[%d]", i)
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if o.Color != "" && !o.Color.IsValid() {
			errs = append(errs, fmt.Errorf("%s.color %q is invalid; valid values: white, black", prefix, o.Color))
		}
		if o.Wins < 0 || o.Losses < 0 || o.Draws < 0 {
			errs = append(errs, fmt.Errorf("%s: game counts must not be negative", prefix))
		}
	}

	for i, g := range p.RecentGames {
		prefix := fmt.Sprintf("recent_games[%d]", i)
		if g.Opponent == "" {
			errs = append(errs, fmt.Errorf("%s.opponent is required", prefix))
		}
		if !g.Result.IsValid() {
			errs = append(errs, fmt.Errorf("%s.result %q is invalid; valid values: win, loss, draw", prefix, g.Result))
		}
		if g.Color != "" && !g.Color.IsValid() {
			errs = append(errs, fmt.Errorf("%s.color %q is invalid; valid values: white, black", prefix, g.Color))
		}
		if g.Accuracy < 0 || g.Accuracy > 100 {
			errs = append(errs, fmt.Errorf("%s.accuracy %d is out of range [0, 100]", prefix, g.Accuracy))
		}
		if g.Blunders < 0 || g.Mistakes < 0 {
			errs = append(errs, fmt.Errorf("%s: blunder and mistake counts must not be negative", prefix))
		}
	}

	seen := make(map[string]int, len(p.Skills))
	for i, s := range p.Skills {
		prefix := fmt.Sprintf("skills[%d]", i)
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if prev, ok := seen[s.Name]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of skills[%d]", prefix, s.Name, prev))
			}
			seen[s.Name] = i
		}
		if s.Current < 0 || s.Current > 100 {
			errs = append(errs, fmt.Errorf("%s.current %d is out of range [0, 100]", prefix, s.Current))
		}
		if s.Target <= 0 || s.Target > 100 {
			errs = append(errs, fmt.Errorf("%s.target %d is out of range (0, 100]", prefix, s.Target))
		}
	}

	for i, m := range p.StudyModules {
		prefix := fmt.Sprintf("study_modules[%d]", i)
		if m.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if m.Priority != "" && !m.Priority.IsValid() {
			errs = append(errs, fmt.Errorf("%s.priority %q is invalid; valid values: high, medium, low", prefix, m.Priority))
		}
		if m.CompletedLessons > m.Lessons {
			errs = append(errs, fmt.Errorf("%s: completed_lessons %d exceeds lessons %d", prefix, m.CompletedLessons, m.Lessons))
		}
	}

	return errors.Join(errs...)
}
