package profile

import (
	"slices"
	"strings"
)

// WeakestSkill returns the skill with the lowest current score. Ties are
// broken by the larger gap to target, then by declaration order.
// ok is false when the profile lists no skills.
func (p *Profile) WeakestSkill() (skill SkillProgress, ok bool) {
	for i, s := range p.Skills {
		if i == 0 || s.Current < skill.Current || (s.Current == skill.Current && s.Gap() > skill.Gap()) {
			skill = s
			ok = true
		}
	}
	return skill, ok
}

// StrongestSkill returns the skill with the highest current score, first
// declared wins on ties.
func (p *Profile) StrongestSkill() (skill SkillProgress, ok bool) {
	for i, s := range p.Skills {
		if i == 0 || s.Current > skill.Current {
			skill = s
			ok = true
		}
	}
	return skill, ok
}

// Skill looks up a skill whose name contains fragment, case-insensitively.
func (p *Profile) Skill(fragment string) (SkillProgress, bool) {
	want := strings.ToLower(fragment)
	for _, s := range p.Skills {
		if strings.Contains(strings.ToLower(s.Name), want) {
			return s, true
		}
	}
	return SkillProgress{}, false
}

// MostPlayedOpening returns the opening with the most games, first declared
// wins on ties.
func (p *Profile) MostPlayedOpening() (OpeningStats, bool) {
	var best OpeningStats
	found := false
	for _, o := range p.Openings {
		if !found || o.Games() > best.Games() {
			best = o
			found = true
		}
	}
	return best, found
}

// WorstOpening returns the opening with the lowest win rate among those with
// at least one game.
func (p *Profile) WorstOpening() (OpeningStats, bool) {
	var worst OpeningStats
	found := false
	for _, o := range p.Openings {
		if o.Games() == 0 {
			continue
		}
		if !found || o.WinRate() < worst.WinRate() {
			worst = o
			found = true
		}
	}
	return worst, found
}

// BestOpening returns the opening with the highest win rate among those with
// at least one game.
func (p *Profile) BestOpening() (OpeningStats, bool) {
	var best OpeningStats
	found := false
	for _, o := range p.Openings {
		if o.Games() == 0 {
			continue
		}
		if !found || o.WinRate() > best.WinRate() {
			best = o
			found = true
		}
	}
	return best, found
}

// LastGame returns the most recent game. Recent games are stored newest first.
func (p *Profile) LastGame() (GameSummary, bool) {
	if len(p.RecentGames) == 0 {
		return GameSummary{}, false
	}
	return p.RecentGames[0], true
}

// LastLoss returns the most recent lost game.
func (p *Profile) LastLoss() (GameSummary, bool) {
	for _, g := range p.RecentGames {
		if g.Result == ResultLoss {
			return g, true
		}
	}
	return GameSummary{}, false
}

// GameRecord counts wins, losses and draws across the recent games.
func (p *Profile) GameRecord() (wins, losses, draws int) {
	for _, g := range p.RecentGames {
		switch g.Result {
		case ResultWin:
			wins++
		case ResultLoss:
			losses++
		case ResultDraw:
			draws++
		}
	}
	return wins, losses, draws
}

// AverageAccuracy returns the mean accuracy over the recent games.
func (p *Profile) AverageAccuracy() int {
	if len(p.RecentGames) == 0 {
		return 0
	}
	total := 0
	for _, g := range p.RecentGames {
		total += g.Accuracy
	}
	return total / len(p.RecentGames)
}

// Clone returns a deep copy that can be modified and published with
// [Store.Replace] without affecting readers of the original.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Strengths = slices.Clone(p.Strengths)
	c.Weaknesses = slices.Clone(p.Weaknesses)
	c.Openings = slices.Clone(p.Openings)
	c.Skills = slices.Clone(p.Skills)
	c.WeeklyStats = slices.Clone(p.WeeklyStats)
	c.Achievements = slices.Clone(p.Achievements)
	c.StudyModules = slices.Clone(p.StudyModules)
	c.TodaysPlan = slices.Clone(p.TodaysPlan)
	c.Goals = slices.Clone(p.Goals)
	c.RecentGames = make([]GameSummary, len(p.RecentGames))
	for i, g := range p.RecentGames {
		g.KeyMoments = slices.Clone(g.KeyMoments)
		c.RecentGames[i] = g
	}
	if p.RecentGames == nil {
		c.RecentGames = nil
	}
	return &c
}
