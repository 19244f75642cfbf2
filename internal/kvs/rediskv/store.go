// Package rediskv guarda as entradas do KVS no Redis, sob um prefixo.
package rediskv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-games-client/internal/kvs"
)

// Backend grava cada chave como "<prefix><key>" e mantém o conjunto
// "<prefix>__keys" com as chaves gravadas, para que Clear remova só o que
// este store escreveu
type Backend struct {
	R      *redis.Client
	Prefix string
}

var _ kvs.Backend = (*Backend)(nil)

func New(r *redis.Client, prefix string) *Backend { return &Backend{R: r, Prefix: prefix} }

func (b *Backend) key(k string) string { return b.Prefix + k }

func (b *Backend) indexKey() string { return b.Prefix + "__keys" }

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.R.Get(ctx, b.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	pipe := b.R.TxPipeline()
	pipe.Set(ctx, b.key(key), value, 0)
	pipe.SAdd(ctx, b.indexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	pipe := b.R.TxPipeline()
	pipe.Del(ctx, b.key(key))
	pipe.SRem(ctx, b.indexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (b *Backend) Clear(ctx context.Context) error {
	keys, err := b.R.SMembers(ctx, b.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("list stored keys: %w", err)
	}
	full := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		full = append(full, b.key(k))
	}
	full = append(full, b.indexKey())
	return b.R.Del(ctx, full...).Err()
}

func (b *Backend) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return [][]byte{}, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.key(k)
	}
	vals, err := b.R.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(keys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = []byte(s)
		}
	}
	return out, nil
}

func (b *Backend) MultiSet(ctx context.Context, pairs []kvs.RawPair) error {
	if len(pairs) == 0 {
		return nil
	}
	pipe := b.R.TxPipeline()
	for _, p := range pairs {
		pipe.Set(ctx, b.key(p.Key), p.Value, 0)
		pipe.SAdd(ctx, b.indexKey(), p.Key)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (b *Backend) Ping(ctx context.Context) error { return b.R.Ping(ctx).Err() }

func (b *Backend) Close() error { return b.R.Close() }
