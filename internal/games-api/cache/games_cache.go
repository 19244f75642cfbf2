package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/games-api/repo"
	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// CachedRepo guarda no Redis o resultado de List por filtro.
// Create invalida a lista completa e a do status criado e avança a
// geração, impedindo que uma leitura anterior ao Create regrave o cache.
type CachedRepo struct {
	repo.Repo
	R   *redis.Client
	TTL time.Duration
	Log *zap.Logger
}

func New(inner repo.Repo, r *redis.Client, ttl time.Duration, log *zap.Logger) *CachedRepo {
	return &CachedRepo{Repo: inner, R: r, TTL: ttl, Log: logger.OrNop(log)}
}

func keyList(filter games.StatusFilter) string {
	if filter.IsAll() {
		return "games:list:all"
	}
	return "games:list:status:" + string(filter)
}

// genKey é incrementada a cada Create; uma listagem só entra no cache se
// a geração não mudou desde antes da leitura no repositório
const genKey = "games:list:gen"

// List lê do cache; em miss ou erro do Redis cai no repositório
func (c *CachedRepo) List(ctx context.Context, filter games.StatusFilter) ([]games.Game, error) {
	k := keyList(filter)
	b, err := c.R.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var out []games.Game
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
	case !errors.Is(err, redis.Nil):
		c.Log.Warn("games cache read failed", zap.String("key", k), zap.Error(err))
	}

	gen, genErr := c.generation(ctx, c.R)
	out, err := c.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		c.fill(ctx, k, gen, out)
	}
	return out, nil
}

// fill grava a lista só se nenhum Create aconteceu desde gen
func (c *CachedRepo) fill(ctx context.Context, k string, gen int64, out []games.Game) {
	b, err := json.Marshal(out)
	if err != nil {
		return
	}
	err = c.R.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleList
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, b, c.TTL)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleList), errors.Is(err, redis.TxFailedErr):
		c.Log.Debug("games cache fill skipped, list changed", zap.String("key", k))
	default:
		c.Log.Warn("games cache write failed", zap.String("key", k), zap.Error(err))
	}
}

var errStaleList = errors.New("list changed during read")

// getter é o Get comum a *redis.Client e *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *CachedRepo) generation(ctx context.Context, r getter) (int64, error) {
	gen, err := r.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *CachedRepo) Create(ctx context.Context, draft games.GameDraft) (games.Game, error) {
	g, err := c.Repo.Create(ctx, draft)
	if err != nil {
		return g, err
	}
	keys := []string{keyList(games.AllStatuses), keyList(games.StatusFilter(g.Status))}
	_, err = c.R.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.Log.Warn("games cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return g, nil
}
