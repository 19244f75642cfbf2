package events

import (
	"time"

	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// TypeGameCreated identifica o evento no tópico "games_created" e no stream /ws
const TypeGameCreated = "game_created"

// GameCreated é emitido pelo games-api depois que um jogo é persistido.
type GameCreated struct {
	Type   string     `json:"type"` // "game_created"
	Game   games.Game `json:"game"`
	Source string     `json:"source"` // "games-api"
	Ts     time.Time  `json:"ts"`
}
