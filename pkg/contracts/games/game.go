package games

import (
	"errors"
	"strings"
)

// Status é o estado de um jogo. Enumeração aberta: o servidor pode devolver
// valores que o cliente não conhece.
type Status = string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

// StatusFilter restringe a listagem a um status. AllStatuses ("") desliga o filtro.
type StatusFilter string

// AllStatuses representa "sem filtro".
const AllStatuses StatusFilter = ""

// IsAll indica se o filtro aceita qualquer status
func (f StatusFilter) IsAll() bool { return f == AllStatuses }

// Matches informa se o jogo passa no filtro
func (f StatusFilter) Matches(g Game) bool { return f.IsAll() || string(f) == g.Status }

// Game representa um jogo devolvido pelo serviço remoto.
// ID é atribuído pelo servidor e fica nil em instâncias montadas no cliente.
type Game struct {
	ID        *int64  `json:"id,omitempty"`
	League    string  `json:"league"`
	HomeTeam  string  `json:"homeTeam"`
	AwayTeam  string  `json:"awayTeam"`
	StartTime string  `json:"startTime"` // ISO-8601, não é interpretado pelo cliente
	Status    Status  `json:"status"`
	OddsHome  float64 `json:"oddsHome"`
	OddsAway  float64 `json:"oddsAway"`
}

// GameDraft é o payload de criação (sem id).
type GameDraft struct {
	League    string  `json:"league"`
	HomeTeam  string  `json:"homeTeam"`
	AwayTeam  string  `json:"awayTeam"`
	StartTime string  `json:"startTime"`
	Status    Status  `json:"status"`
	OddsHome  float64 `json:"oddsHome"`
	OddsAway  float64 `json:"oddsAway"`
}

var ErrInvalidDraft = errors.New("invalid game draft")

// Validate rejeita drafts que o servidor não aceitaria
func (d GameDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.HomeTeam) == "" || strings.TrimSpace(d.AwayTeam) == "":
		return errors.Join(ErrInvalidDraft, errors.New("home and away teams are required"))
	case d.OddsHome < 0 || d.OddsAway < 0:
		return errors.Join(ErrInvalidDraft, errors.New("odds must be non-negative"))
	}
	return nil
}

// WithID materializa o draft como Game com o id atribuído pelo servidor
func (d GameDraft) WithID(id int64) Game {
	return Game{
		ID:        &id,
		League:    d.League,
		HomeTeam:  d.HomeTeam,
		AwayTeam:  d.AwayTeam,
		StartTime: d.StartTime,
		Status:    d.Status,
		OddsHome:  d.OddsHome,
		OddsAway:  d.OddsAway,
	}
}

// Draft devolve os campos do jogo sem o id
func (g Game) Draft() GameDraft {
	return GameDraft{
		League:    g.League,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		StartTime: g.StartTime,
		Status:    g.Status,
		OddsHome:  g.OddsHome,
		OddsAway:  g.OddsAway,
	}
}

// IDValue devolve o id ou 0 quando ausente
func (g Game) IDValue() int64 {
	if g.ID == nil {
		return 0
	}
	return *g.ID
}
