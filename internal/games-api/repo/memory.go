package repo

import (
	"context"
	"sync"

	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// MemoryRepo é o repositório padrão do simulador; ids começam em 1
type MemoryRepo struct {
	mu     sync.RWMutex
	items  []games.Game
	nextID int64
}

// NewMemoryRepo cria o repositório já com seed (ids reatribuídos)
func NewMemoryRepo(seed ...games.GameDraft) *MemoryRepo {
	r := &MemoryRepo{nextID: 1}
	for _, d := range seed {
		r.add(d)
	}
	return r
}

func (r *MemoryRepo) List(_ context.Context, filter games.StatusFilter) ([]games.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]games.Game, 0, len(r.items))
	for _, g := range r.items {
		if filter.Matches(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Create(_ context.Context, draft games.GameDraft) (games.Game, error) {
	if err := draft.Validate(); err != nil {
		return games.Game{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(draft), nil
}

func (r *MemoryRepo) Ping(context.Context) error { return nil }

func (r *MemoryRepo) add(d games.GameDraft) games.Game {
	g := d.WithID(r.nextID)
	r.nextID++
	r.items = append(r.items, g)
	return g
}
