// Package repo guarda os jogos servidos pelo games-api.
package repo

import (
	"context"

	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// Repo lista e cria jogos. List devolve em ordem crescente de id.
type Repo interface {
	List(ctx context.Context, filter games.StatusFilter) ([]games.Game, error)
	Create(ctx context.Context, draft games.GameDraft) (games.Game, error)
	Ping(ctx context.Context) error
}
