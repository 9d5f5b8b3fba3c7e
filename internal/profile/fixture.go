package profile

// Default returns the built-in demo profile. Every call returns a fresh
// snapshot.
func Default() *Profile {
	return &Profile{
		PlayerName:   "Alex",
		Rating:       1850,
		PlayingStyle: "Aggressive Tactician",
		StyleSummary: "Strong in tactics, needs endgame work",
		Strengths:    []string{"Sharp tactics", "Opening theory", "Attack patterns"},
		Weaknesses:   []string{"Endgame technique", "Time management", "Positional play"},
		Openings: []OpeningStats{
			{Name: "Sicilian Defense", Color: Black, Wins: 13, Losses: 5, Draws: 2},
			{Name: "Italian Game", Color: White, Wins: 7, Losses: 3, Draws: 2},
			{Name: "Queen's Gambit Declined", Color: Black, Wins: 3, Losses: 5, Draws: 2},
		},
		RecentGames: []GameSummary{
			{
				ID: 1, Opponent: "ChessMaster2024", OpponentRating: 1876,
				Result: ResultWin, Color: White, TimeControl: "10+0", Date: "Today",
				Accuracy: 89, Blunders: 0, Mistakes: 2,
				KeyMoments: []string{"Perfect opening", "Tactical breakthrough on move 23", "Clean conversion"},
			},
			{
				ID: 2, Opponent: "TacticalGuru", OpponentRating: 1902,
				Result: ResultLoss, Color: Black, TimeControl: "15+10", Date: "Yesterday",
				Accuracy: 76, Blunders: 2, Mistakes: 4,
				KeyMoments: []string{"Solid opening", "Time trouble after move 25", "Blunder in endgame"},
			},
			{
				ID: 3, Opponent: "PositionalPlayer", OpponentRating: 1834,
				Result: ResultDraw, Color: White, TimeControl: "30+0", Date: "2 days ago",
				Accuracy: 92, Blunders: 0, Mistakes: 1,
				KeyMoments: []string{"Strong middlegame", "Missed winning chances", "Drawn endgame"},
			},
		},
		Skills: []SkillProgress{
			{Name: "Tactics", Current: 85, Target: 90},
			{Name: "Endgames", Current: 45, Target: 70},
			{Name: "Openings", Current: 78, Target: 85},
			{Name: "Strategy", Current: 52, Target: 75},
			{Name: "Time Mgmt", Current: 38, Target: 65},
		},
		WeeklyStats: []WeeklyStat{
			{Label: "Games Played", Value: "23", Change: "+5", Positive: true},
			{Label: "Win Rate", Value: "67%", Change: "+12%", Positive: true},
			{Label: "Avg Accuracy", Value: "84%", Change: "+3%", Positive: true},
			{Label: "Study Time", Value: "4.2h", Change: "+1.1h", Positive: true},
		},
		Achievements: []Achievement{
			{Title: "Tactical Master", Description: "Solved 100 tactical puzzles", Date: "This week"},
			{Title: "Endgame Student", Description: "Completed 5 endgame lessons", Date: "3 days ago"},
			{Title: "Consistent Player", Description: "Played daily for 7 days", Date: "Yesterday"},
		},
		StudyModules: []StudyModule{
			{
				ID: 1, Title: "Endgame Technique", Description: "Master fundamental endgames",
				Priority: PriorityHigh, Progress: 25, Lessons: 8, CompletedLessons: 2,
				EstimatedTime: "2 hours", NextLesson: "King and Pawn vs King", Status: StatusInProgress,
			},
			{
				ID: 2, Title: "Positional Understanding", Description: "Learn strategic principles",
				Priority: PriorityHigh, Progress: 0, Lessons: 12, CompletedLessons: 0,
				EstimatedTime: "3 hours", NextLesson: "Weak Squares and Outposts", Status: StatusNotStarted,
			},
			{
				ID: 3, Title: "Time Management", Description: "Improve your clock handling",
				Priority: PriorityMedium, Progress: 60, Lessons: 5, CompletedLessons: 3,
				EstimatedTime: "1 hour", NextLesson: "Critical Moments Recognition", Status: StatusInProgress,
			},
			{
				ID: 4, Title: "Tactical Patterns", Description: "Sharpen your tactical vision",
				Priority: PriorityLow, Progress: 90, Lessons: 10, CompletedLessons: 9,
				EstimatedTime: "2.5 hours", NextLesson: "Advanced Deflection", Status: StatusAlmostComplete,
			},
		},
		TodaysPlan: []PlanItem{
			{Kind: "lesson", Title: "Rook Endgames: Opposition", Duration: "15 min"},
			{Kind: "drill", Title: "Tactical Pattern: Pin & Fork", Duration: "10 min"},
			{Kind: "review", Title: "Yesterday's Blitz Game Analysis", Duration: "8 min"},
		},
		Goals: []Goal{
			{Title: "Master Rook Endgames", Description: "Complete 3 more endgame lessons", Progress: 40},
			{Title: "Improve Time Management", Description: "Play 5 games without time trouble", Progress: 20},
		},
		CoachRating: CoachRating{Score: 78, NextMilestone: 80},
		Insight:     "You're showing improvement in tactical play, but watch out for time management in longer games.",
	}
}
