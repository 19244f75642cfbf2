package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/pkg/contracts/events"
)

// PubSubChannel é o canal Redis usado para repassar jogos criados entre
// instâncias do games-api
const PubSubChannel = "games_created_broadcast"

// RedisRelay publica os eventos no canal; cada instância os recebe de
// volta por StartRedisSubscriber e entrega aos seus clientes
type RedisRelay struct {
	Client *redis.Client
}

func (r *RedisRelay) Announce(ctx context.Context, ev events.GameCreated) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, PubSubChannel, b).Err()
}

// StartRedisSubscriber repassa ao hub cada mensagem do canal até ctx terminar
func StartRedisSubscriber(ctx context.Context, r *redis.Client, hub *Hub) {
	sub := r.Subscribe(ctx, PubSubChannel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev events.GameCreated
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					hub.log.Warn("ws relay unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast([]byte(msg.Payload))
			}
		}
	}()
}
