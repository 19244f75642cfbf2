// Package livefeed escuta o WebSocket do serviço de jogos e dispara uma
// recarga da lista a cada jogo criado.
package livefeed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/pkg/contracts/events"
)

// Listener mantém a conexão com /ws, reconectando após ReconnectDelay
type Listener struct {
	URL            string // ex: ws://localhost:8080/ws
	Log            *zap.Logger
	ReconnectDelay time.Duration // padrão 3s

	// OnCreated é chamado a cada game_created (ex: ViewModel.Refresh)
	OnCreated func(ctx context.Context, ev events.GameCreated) error
}

// Start bloqueia até ctx terminar
func (l *Listener) Start(ctx context.Context) {
	log := logger.OrNop(l.Log)
	delay := l.ReconnectDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}

	for {
		if err := l.connectAndListen(ctx, log); err != nil {
			log.Warn("live feed connection closed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			log.Info("context canceled, stopping live feed")
			return
		case <-time.After(delay):
		}
	}
}

func (l *Listener) connectAndListen(ctx context.Context, log *zap.Logger) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("connected to live feed", zap.String("url", l.URL))

	// ReadMessage não observa ctx; fechar a conexão destrava a leitura
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var ev events.GameCreated
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Warn("invalid live feed message", zap.Error(err))
			continue
		}
		if ev.Type != events.TypeGameCreated {
			continue
		}
		if l.OnCreated == nil {
			continue
		}
		if err := l.OnCreated(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("live feed handler failed", zap.Int64("game_id", ev.Game.IDValue()), zap.Error(err))
		}
	}
}
