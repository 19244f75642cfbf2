package topics

const (
	// Games
	GamesCreated = "games_created"
)
