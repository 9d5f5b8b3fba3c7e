package respond

import (
	"fmt"
	"strings"

	"github.com/MrWong99/gambit/internal/intent"
	"github.com/MrWong99/gambit/internal/profile"
)

// DefaultTemplates returns the built-in template set, one per intent.
func DefaultTemplates() map[intent.Intent]Template {
	return map[intent.Intent]Template{
		intent.Endgame:        endgameReply,
		intent.Opening:        openingReply,
		intent.GameReview:     gameReviewReply,
		intent.TimeManagement: timeManagementReply,
		intent.Tactics:        tacticsReply,
		intent.Generic:        genericReply,
	}
}

func endgameReply(p *profile.Profile) string {
	var b strings.Builder
	b.WriteString("Great question about endgames! ")
	if s, ok := p.Skill("endgame"); ok {
		fmt.Fprintf(&b, "Your endgame score is %d against a target of %d. ", s.Current, s.Target)
	}
	if w, ok := p.WeakestSkill(); ok {
		fmt.Fprintf(&b, "Based on your recent games, your weakest area is %s (%d/%d), and it shows up in rook endgames. ", w.Name, w.Current, w.Target)
	} else {
		fmt.Fprintf(&b, "At %d, rook endgames are where most of your half points slip away. ", p.Rating)
	}
	b.WriteString("The key principle is 'rook behind the passed pawn.' Would you like me to create a specific drill for this?")
	return b.String()
}

func openingReply(p *profile.Profile) string {
	most, ok := p.MostPlayedOpening()
	if !ok {
		return fmt.Sprintf("You haven't logged enough games to judge your repertoire yet. As an %s, sharp open games will suit you. Should we build a starter repertoire together?", p.PlayingStyle)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I see you play the %s often. Your statistics show %d%% wins with it", most.Name, most.WinRate())
	if worst, ok := p.WorstOpening(); ok && worst.Name != most.Name && worst.WinRate() < most.WinRate() {
		fmt.Fprintf(&b, ", but you score only %d%% with the %s", worst.WinRate(), worst.Name)
		if worst.Color != "" {
			fmt.Fprintf(&b, " as %s", titleCase(string(worst.Color)))
		}
		b.WriteString(". Should we work on an alternative there that fits your style?")
	} else {
		fmt.Fprintf(&b, ". It suits an %s well. Should we deepen your main lines?", p.PlayingStyle)
	}
	return b.String()
}

func gameReviewReply(p *profile.Profile) string {
	g, ok := p.LastLoss()
	lead := "Your last loss"
	if !ok {
		g, ok = p.LastGame()
		lead = "Your last game"
	}
	if !ok {
		return fmt.Sprintf("I don't have any recent games to review yet. Play a few games and I'll analyse them against your %d rating.", p.Rating)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s was against %s", lead, g.Opponent)
	if g.OpponentRating > 0 {
		fmt.Fprintf(&b, " (%d)", g.OpponentRating)
	}
	fmt.Fprintf(&b, ": %d%% accuracy with %d blunder%s and %d mistake%s.",
		g.Accuracy, g.Blunders, plural(g.Blunders), g.Mistakes, plural(g.Mistakes))
	if len(g.KeyMoments) > 0 {
		fmt.Fprintf(&b, " The key moments were: %s.", strings.Join(g.KeyMoments, "; "))
	}
	b.WriteString(" Want to replay the critical position together?")
	return b.String()
}

func timeManagementReply(p *profile.Profile) string {
	var b strings.Builder
	if s, ok := p.Skill("time"); ok {
		fmt.Fprintf(&b, "Your time management is at %d against a target of %d. ", s.Current, s.Target)
	} else {
		fmt.Fprintf(&b, "As an %s you tend to spend a lot of time in sharp positions. ", p.PlayingStyle)
	}
	b.WriteString("Try budgeting your clock: play the opening quickly, save time for the critical middlegame moments, and never drop below a minute per ten moves left. ")
	b.WriteString("Shall I set up a few games with increment to practise this?")
	return b.String()
}

func tacticsReply(p *profile.Profile) string {
	if s, ok := p.Skill("tactic"); ok {
		return fmt.Sprintf("Tactics are one of your strengths at %d of %d. To close the last %d points, mix harder puzzles with calculation drills where you write down every line before moving. Want a set of pin and fork puzzles?",
			s.Current, s.Target, s.Gap())
	}
	return fmt.Sprintf("Tactics decide most games at %d. Daily puzzle sets will sharpen your vision quickly. Want a set of pin and fork puzzles?", p.Rating)
}

func genericReply(p *profile.Profile) string {
	return fmt.Sprintf("That's an interesting position! From your game pattern as an %s, I'd suggest focusing on piece coordination here. The knight on f6 could be better placed. Would you like to see the best continuation?",
		p.PlayingStyle)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
