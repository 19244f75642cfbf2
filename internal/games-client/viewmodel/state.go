package viewmodel

import (
	"time"

	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// State é o que a tela renderiza. Cada valor publicado é uma cópia;
// quem recebe pode guardar sem sincronização.
type State struct {
	Items        []games.Game       // na ordem do servidor
	ActiveFilter games.StatusFilter // AllStatuses = todos
	IsLoading    bool
	LastSync     time.Time // zero se nunca sincronizou
}

func (s State) clone() State {
	out := s
	if s.Items != nil {
		out.Items = make([]games.Game, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

// Notice é o aviso bloqueante mostrado ao usuário numa falha
type Notice struct {
	Title   string
	Message string
}

// Notifier exibe avisos ao usuário (alerta na tela, linha no terminal...)
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapta uma função a Notifier
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// cachedGames é o formato gravado em storagekeys.CachedGames
type cachedGames struct {
	Filter games.StatusFilter `json:"filter"`
	Items  []games.Game       `json:"items"`
}
