package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/games-api/repo"
	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/pkg/contracts/events"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// Announcer recebe cada jogo criado (hub WebSocket, Kafka, relay Redis)
type Announcer interface {
	Announce(ctx context.Context, ev events.GameCreated) error
}

// API expõe a coleção /api/games consumida pelo games-client
type API struct {
	Repo       repo.Repo
	Announcers []Announcer
	WS         http.HandlerFunc // handler de /ws; nil desliga o stream
	Log        *zap.Logger
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/games", a.listGames)   // Lista jogos, opcionalmente por status
		r.Post("/games", a.createGame) // Cria um jogo e anuncia
		r.Get("/greeting", a.greeting) // Sonda de conectividade
	})
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) listGames(w http.ResponseWriter, r *http.Request) {
	filter := games.StatusFilter(r.URL.Query().Get("status"))
	out, err := a.Repo.List(r.Context(), filter)
	if err != nil {
		logger.OrNop(a.Log).Error("list games failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) createGame(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(a.Log)

	var draft games.GameDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	g, err := a.Repo.Create(r.Context(), draft)
	if err != nil {
		if errors.Is(err, games.ErrInvalidDraft) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Error("create game failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	ev := events.GameCreated{Type: events.TypeGameCreated, Game: g, Source: "games-api", Ts: time.Now().UTC()}
	// o jogo já está persistido; falha ao anunciar não desfaz a criação
	ctx := context.WithoutCancel(r.Context())
	for _, an := range a.Announcers {
		if err := an.Announce(ctx, ev); err != nil {
			log.Warn("announce game failed", zap.Int64("id", g.IDValue()), zap.String("announcer", fmt.Sprintf("%T", an)), zap.Error(err))
		}
	}

	log.Info("game created", zap.Int64("id", g.IDValue()), zap.String("status", g.Status))
	writeJSON(w, http.StatusCreated, g)
}

func (a *API) greeting(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "World"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "Hello, %s!", name)
}
