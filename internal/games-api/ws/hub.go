package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/pkg/contracts/events"
)

// clientMsg é a única mensagem aceita do cliente: {"type":"ping"}
type clientMsg struct {
	Type string `json:"type"`
}

// Hub mantém as conexões abertas em /ws e envia a todas cada jogo criado
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex // mutex de escrita por conexão
}

// NewHub aceita uma política de origem; nil aceita qualquer origem
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      logger.OrNop(log),
		conns:    make(map[*websocket.Conn]*sync.Mutex),
	}
}

// HandleWS registra a conexão e responde pings até o cliente sair
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wmu := &sync.Mutex{}
	h.mu.Lock()
	h.conns[conn] = wmu
	h.mu.Unlock()
	h.log.Debug("ws client connected", zap.String("remote", r.RemoteAddr))

	for {
		var msg clientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			wmu.Lock()
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
			wmu.Unlock()
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	h.log.Debug("ws client disconnected", zap.String("remote", r.RemoteAddr))
}

// Clients devolve o número de conexões abertas
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Announce envia o evento a todos os clientes conectados
func (h *Hub) Announce(_ context.Context, ev events.GameCreated) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.Broadcast(b)
	return nil
}

// Broadcast envia payload cru a todas as conexões
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for c, m := range h.conns {
		targets[c] = m
	}
	h.mu.Unlock()

	for c, m := range targets {
		m.Lock()
		err := c.WriteMessage(websocket.TextMessage, payload)
		m.Unlock()
		if err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
		}
	}
}
