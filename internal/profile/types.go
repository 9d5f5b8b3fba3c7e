// Package profile holds the coaching profile read model shared by the
// dialogue engine and the dashboard views.
//
// A [Profile] is an immutable snapshot: once published through a [Store] it is
// never edited in place. Updates build a new snapshot (see [Profile.Clone]) and
// swap it in with [Store.Replace], so readers always observe a complete,
// consistent profile.
//
// Profiles are normally loaded from YAML ([LoadFile], [LoadFromReader]) or
// taken from the built-in [Default] fixture.
package profile

// Result is the outcome of a game from the player's perspective.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// IsValid reports whether r is a recognised game result.
func (r Result) IsValid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}

// Color is the side the player had in a game or opening line.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// IsValid reports whether c is a recognised side.
func (c Color) IsValid() bool {
	return c == White || c == Black
}

// Profile aggregates everything the coach knows about the player.
type Profile struct {
	// PlayerName is used in greetings ("Good morning, Alex!").
	PlayerName string `yaml:"player_name" json:"player_name"`

	// Rating is the player's current rating.
	Rating int `yaml:"rating" json:"rating"`

	// PlayingStyle is a short label such as "Aggressive Tactician".
	PlayingStyle string `yaml:"playing_style" json:"playing_style"`

	// StyleSummary is a one-line description shown under the style label.
	StyleSummary string `yaml:"style_summary" json:"style_summary"`

	Strengths  []string `yaml:"strengths" json:"strengths"`
	Weaknesses []string `yaml:"weaknesses" json:"weaknesses"`

	Openings    []OpeningStats  `yaml:"openings" json:"openings"`
	RecentGames []GameSummary   `yaml:"recent_games" json:"recent_games"`
	Skills      []SkillProgress `yaml:"skills" json:"skills"`

	WeeklyStats  []WeeklyStat  `yaml:"weekly_stats" json:"weekly_stats"`
	Achievements []Achievement `yaml:"achievements" json:"achievements"`

	StudyModules []StudyModule `yaml:"study_modules" json:"study_modules"`
	TodaysPlan   []PlanItem    `yaml:"todays_plan" json:"todays_plan"`
	Goals        []Goal        `yaml:"goals" json:"goals"`

	CoachRating CoachRating `yaml:"coach_rating" json:"coach_rating"`

	// Insight is the coach's free-text note on the game review screen.
	Insight string `yaml:"insight" json:"insight"`
}

// OpeningStats is the player's record with one opening.
type OpeningStats struct {
	Name   string `yaml:"name" json:"name"`
	Color  Color  `yaml:"color" json:"color"`
	Wins   int    `yaml:"wins" json:"wins"`
	Losses int    `yaml:"losses" json:"losses"`
	Draws  int    `yaml:"draws" json:"draws"`
}

// Games returns the number of games played with the opening.
func (o OpeningStats) Games() int {
	return o.Wins + o.Losses + o.Draws
}

// WinRate returns the share of games won as a percentage in [0, 100].
// It is 0 when no games were played.
func (o OpeningStats) WinRate() int {
	n := o.Games()
	if n == 0 {
		return 0
	}
	return (o.Wins*100 + n/2) / n
}

// GameSummary is a reviewed game.
type GameSummary struct {
	ID             int      `yaml:"id" json:"id"`
	Opponent       string   `yaml:"opponent" json:"opponent"`
	OpponentRating int      `yaml:"opponent_rating" json:"opponent_rating"`
	Result         Result   `yaml:"result" json:"result"`
	Color          Color    `yaml:"color" json:"color"`
	TimeControl    string   `yaml:"time_control" json:"time_control"`
	Date           string   `yaml:"date" json:"date"`
	Accuracy       int      `yaml:"accuracy" json:"accuracy"`
	Blunders       int      `yaml:"blunders" json:"blunders"`
	Mistakes       int      `yaml:"mistakes" json:"mistakes"`
	KeyMoments     []string `yaml:"key_moments" json:"key_moments"`
}

// SkillProgress tracks one skill area against its target.
type SkillProgress struct {
	Name    string `yaml:"name" json:"name"`
	Current int    `yaml:"current" json:"current"`
	Target  int    `yaml:"target" json:"target"`
}

// Gap returns how many points are missing to reach the target. Never negative.
func (s SkillProgress) Gap() int {
	return max(s.Target-s.Current, 0)
}

// Percent returns progress towards the target in [0, 100].
func (s SkillProgress) Percent() int {
	if s.Target <= 0 {
		return 0
	}
	return min(s.Current*100/s.Target, 100)
}

// WeeklyStat is one tile of the weekly summary ("Games Played", 23, "+5").
type WeeklyStat struct {
	Label    string `yaml:"label" json:"label"`
	Value    string `yaml:"value" json:"value"`
	Change   string `yaml:"change" json:"change"`
	Positive bool   `yaml:"positive" json:"positive"`
}

// Achievement is an unlocked badge.
type Achievement struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Date        string `yaml:"date" json:"date"`
}

// Priority ranks study modules.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is a recognised priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ModuleStatus is the completion state of a study module.
type ModuleStatus string

const (
	StatusNotStarted     ModuleStatus = "not-started"
	StatusInProgress     ModuleStatus = "in-progress"
	StatusAlmostComplete ModuleStatus = "almost-complete"
	StatusComplete       ModuleStatus = "complete"
)

// StudyModule is one entry of the study plan.
type StudyModule struct {
	ID               int          `yaml:"id" json:"id"`
	Title            string       `yaml:"title" json:"title"`
	Description      string       `yaml:"description" json:"description"`
	Priority         Priority     `yaml:"priority" json:"priority"`
	Progress         int          `yaml:"progress" json:"progress"`
	Lessons          int          `yaml:"lessons" json:"lessons"`
	CompletedLessons int          `yaml:"completed_lessons" json:"completed_lessons"`
	EstimatedTime    string       `yaml:"estimated_time" json:"estimated_time"`
	NextLesson       string       `yaml:"next_lesson" json:"next_lesson"`
	Status           ModuleStatus `yaml:"status" json:"status"`
}

// PlanItem is one task of today's plan.
type PlanItem struct {
	Kind     string `yaml:"kind" json:"kind"` // lesson, drill, review
	Title    string `yaml:"title" json:"title"`
	Duration string `yaml:"duration" json:"duration"`
}

// Goal is a longer-running objective with its progress in percent.
type Goal struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Progress    int    `yaml:"progress" json:"progress"`
}

// CoachRating is the composite score shown on the progress screen.
type CoachRating struct {
	Score         int `yaml:"score" json:"score"`
	NextMilestone int `yaml:"next_milestone" json:"next_milestone"`
}

// PointsToMilestone returns how far the score is from the next milestone.
func (c CoachRating) PointsToMilestone() int {
	return max(c.NextMilestone-c.Score, 0)
}
