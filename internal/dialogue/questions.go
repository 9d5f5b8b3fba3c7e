package dialogue

// DefaultGreeting is the coach message every new session starts with.
const DefaultGreeting = "Hello! I'm your chess coach. I've analyzed your recent games and I'm ready to help. " +
	"You can ask me about positions, strategies, or review specific moves. What would you like to work on?"

var quickQuestions = []string{
	"Why did I lose my last game?",
	"How to improve in endgames?",
	"Best opening for my style?",
	"Time management tips?",
}

// QuickQuestions returns the suggested questions offered next to the input
// box. Whether selecting one prefills the input or submits it directly is up
// to the client; the session only ever sees a regular [Session.Submit].
func QuickQuestions() []string {
	out := make([]string, len(quickQuestions))
	copy(out, quickQuestions)
	return out
}
