package profile_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/gambit/internal/profile"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	if err := profile.Validate(profile.Default()); err != nil {
		t.Fatalf("default fixture should validate, got: %v", err)
	}
}

func TestDefault_ReturnsFreshSnapshots(t *testing.T) {
	t.Parallel()
	a := profile.Default()
	b := profile.Default()
	a.Strengths[0] = "changed"
	if b.Strengths[0] == "changed" {
		t.Error("Default() snapshots must not share backing arrays")
	}
}

func TestQueries(t *testing.T) {
	t.Parallel()
	p := profile.Default()

	weakest, ok := p.WeakestSkill()
	if !ok || weakest.Name != "Time Mgmt" {
		t.Errorf("WeakestSkill() = %+v, %v; want Time Mgmt", weakest, ok)
	}

	strongest, ok := p.StrongestSkill()
	if !ok || strongest.Name != "Tactics" {
		t.Errorf("StrongestSkill() = %+v, %v; want Tactics", strongest, ok)
	}

	opening, ok := p.MostPlayedOpening()
	if !ok || opening.Name != "Sicilian Defense" {
		t.Errorf("MostPlayedOpening() = %+v, %v; want Sicilian Defense", opening, ok)
	}
	if got := opening.WinRate(); got != 65 {
		t.Errorf("Sicilian WinRate() = %d, want 65", got)
	}

	worst, ok := p.WorstOpening()
	if !ok || worst.Name != "Queen's Gambit Declined" {
		t.Errorf("WorstOpening() = %+v, %v; want Queen's Gambit Declined", worst, ok)
	}

	best, ok := p.BestOpening()
	if !ok || best.Name != "Sicilian Defense" {
		t.Errorf("BestOpening() = %+v, %v; want Sicilian Defense", best, ok)
	}

	last, ok := p.LastGame()
	if !ok || last.Opponent != "ChessMaster2024" {
		t.Errorf("LastGame() = %+v, %v; want ChessMaster2024", last, ok)
	}

	loss, ok := p.LastLoss()
	if !ok || loss.Opponent != "TacticalGuru" {
		t.Errorf("LastLoss() = %+v, %v; want TacticalGuru", loss, ok)
	}

	w, l, d := p.GameRecord()
	if w != 1 || l != 1 || d != 1 {
		t.Errorf("GameRecord() = %d/%d/%d, want 1/1/1", w, l, d)
	}

	if got := p.AverageAccuracy(); got != 85 {
		t.Errorf("AverageAccuracy() = %d, want 85", got)
	}

	endgames, ok := p.Skill("endgame")
	if !ok || endgames.Current != 45 {
		t.Errorf("Skill(endgame) = %+v, %v; want Endgames 45", endgames, ok)
	}
}

func TestQueries_EmptyProfile(t *testing.T) {
	t.Parallel()
	p := &profile.Profile{}

	if _, ok := p.WeakestSkill(); ok {
		t.Error("WeakestSkill() on empty profile should report false")
	}
	if _, ok := p.MostPlayedOpening(); ok {
		t.Error("MostPlayedOpening() on empty profile should report false")
	}
	if _, ok := p.LastGame(); ok {
		t.Error("LastGame() on empty profile should report false")
	}
	if got := p.AverageAccuracy(); got != 0 {
		t.Errorf("AverageAccuracy() = %d, want 0", got)
	}
}

func TestSkillProgress(t *testing.T) {
	t.Parallel()
	tests := []struct {
		skill       profile.SkillProgress
		wantGap     int
		wantPercent int
	}{
		{profile.SkillProgress{Current: 45, Target: 70}, 25, 64},
		{profile.SkillProgress{Current: 95, Target: 90}, 0, 100},
		{profile.SkillProgress{Current: 10, Target: 0}, 0, 0},
	}
	for _, tt := range tests {
		if got := tt.skill.Gap(); got != tt.wantGap {
			t.Errorf("%+v Gap() = %d, want %d", tt.skill, got, tt.wantGap)
		}
		if got := tt.skill.Percent(); got != tt.wantPercent {
			t.Errorf("%+v Percent() = %d, want %d", tt.skill, got, tt.wantPercent)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()
	orig := profile.Default()
	c := orig.Clone()

	if diff := cmp.Diff(orig, c); diff != "" {
		t.Fatalf("clone differs from original (-orig +clone):\n%s", diff)
	}

	c.RecentGames[0].KeyMoments[0] = "edited"
	c.Skills[0].Current = 1
	if orig.RecentGames[0].KeyMoments[0] == "edited" {
		t.Error("editing clone key moments changed the original")
	}
	if orig.Skills[0].Current == 1 {
		t.Error("editing clone skills changed the original")
	}
}

func TestStore_ReplaceIsAtomicSnapshot(t *testing.T) {
	t.Parallel()
	s := profile.NewStore(nil)
	before := s.Current()

	next := before.Clone()
	next.Rating = 1900
	if err := s.Replace(next); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if before.Rating != 1850 {
		t.Errorf("old snapshot changed: rating = %d", before.Rating)
	}
	if got := s.Current().Rating; got != 1900 {
		t.Errorf("Current().Rating = %d, want 1900", got)
	}
}

func TestStore_ReplaceRejectsInvalid(t *testing.T) {
	t.Parallel()
	s := profile.NewStore(nil)

	if err := s.Replace(nil); err != profile.ErrNilProfile {
		t.Errorf("Replace(nil) = %v, want ErrNilProfile", err)
	}

	bad := s.Current().Clone()
	bad.Rating = 0
	if err := s.Replace(bad); err == nil {
		t.Error("Replace with invalid profile should fail")
	}
	if got := s.Current().Rating; got != 1850 {
		t.Errorf("invalid replace must keep old snapshot, rating = %d", got)
	}
}

func TestStore_ConcurrentReadReplace(t *testing.T) {
	t.Parallel()
	s := profile.NewStore(nil)

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				p := s.Current()
				if _, ok := p.WeakestSkill(); !ok {
					t.Error("snapshot without skills observed")
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := range 100 {
				next := s.Current().Clone()
				next.Rating = 1800 + i*100 + j
				if err := s.Replace(next); err != nil {
					t.Errorf("Replace: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

const validProfileYAML = `
player_name: Sam
rating: 1620
playing_style: Solid Positional
skills:
  - name: Endgames
    current: 60
    target: 75
  - name: Tactics
    current: 40
    target: 70
openings:
  - name: London System
    color: white
    wins: 9
    losses: 3
    draws: 0
recent_games:
  - id: 7
    opponent: Rookie
    result: win
    color: white
    accuracy: 81
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()
	p, err := profile.LoadFromReader(strings.NewReader(validProfileYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if p.PlayerName != "Sam" || p.Rating != 1620 {
		t.Errorf("unexpected profile: %+v", p)
	}
	weakest, _ := p.WeakestSkill()
	if weakest.Name != "Tactics" {
		t.Errorf("WeakestSkill() = %q, want Tactics", weakest.Name)
	}
	o, _ := p.MostPlayedOpening()
	if o.WinRate() != 75 {
		t.Errorf("London WinRate() = %d, want 75", o.WinRate())
	}
}

func TestLoadFromReader_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "rating: 1500\nplaying_style: x\nfavourite_piece: knight\n",
			wantErr: "favourite_piece",
		},
		{
			name:    "missing rating",
			yaml:    "playing_style: x\n",
			wantErr: "rating",
		},
		{
			name:    "bad result",
			yaml:    "rating: 1500\nplaying_style: x\nrecent_games:\n  - opponent: a\n    result: resigned\n",
			wantErr: "result",
		},
		{
			name:    "duplicate skill",
			yaml:    "rating: 1500\nplaying_style: x\nskills:\n  - {name: A, current: 1, target: 2}\n  - {name: A, current: 1, target: 2}\n",
			wantErr: "duplicate",
		},
		{
			name:    "target out of range",
			yaml:    "rating: 1500\nplaying_style: x\nskills:\n  - {name: A, current: 1, target: 0}\n",
			wantErr: "target",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := profile.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
