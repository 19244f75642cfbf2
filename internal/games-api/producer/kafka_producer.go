package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/radieske/sports-games-client/internal/shared/kafka"
	"github.com/radieske/sports-games-client/pkg/contracts/events"
)

// KafkaPublisher publica game_created no tópico do writer
type KafkaPublisher struct {
	Writer kafka.MessageWriter
	Topic  string
}

func NewKafkaPublisher(w kafka.MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// Announce usa o id do jogo como chave da mensagem
func (p *KafkaPublisher) Announce(ctx context.Context, e events.GameCreated) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Writer, strconv.FormatInt(e.Game.IDValue(), 10), b)
}
