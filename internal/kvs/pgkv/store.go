// Package pgkv guarda as entradas do KVS numa tabela Postgres.
package pgkv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/radieske/sports-games-client/internal/kvs"
)

// Backend usa a tabela kv_entries(namespace, key, value). Namespace separa
// instalações que compartilham o mesmo banco; Clear só afeta o próprio
type Backend struct {
	DB        *sql.DB
	Namespace string
}

var _ kvs.Backend = (*Backend)(nil)

// New cria o backend e garante a tabela
func New(ctx context.Context, db *sql.DB, namespace string) (*Backend, error) {
	const ddl = `
		CREATE TABLE IF NOT EXISTS kv_entries (
		  namespace  TEXT NOT NULL,
		  key        TEXT NOT NULL,
		  value      BYTEA NOT NULL,
		  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		  PRIMARY KEY (namespace, key)
		)
	`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure kv_entries: %w", err)
	}
	return &Backend{DB: db, Namespace: namespace}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := b.DB.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`,
		b.Namespace, key,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	return upsert(ctx, b.DB, b.Namespace, key, value)
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.DB.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`, b.Namespace, key)
	return err
}

func (b *Backend) Clear(ctx context.Context) error {
	_, err := b.DB.ExecContext(ctx, `DELETE FROM kv_entries WHERE namespace = $1`, b.Namespace)
	return err
}

// MultiGet lê tudo numa query e reordena conforme keys
func (b *Backend) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	rows, err := b.DB.QueryContext(ctx,
		`SELECT key, value FROM kv_entries WHERE namespace = $1 AND key = ANY($2)`,
		b.Namespace, pq.Array(keys),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string][]byte, len(keys))
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		found[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = found[k]
	}
	return out, nil
}

func (b *Backend) MultiSet(ctx context.Context, pairs []kvs.RawPair) error {
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range pairs {
		if err := upsert(ctx, tx, b.Namespace, p.Key, p.Value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (b *Backend) Ping(ctx context.Context) error { return b.DB.PingContext(ctx) }

func (b *Backend) Close() error { return b.DB.Close() }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsert usa ON CONFLICT para sobrescrever o valor anterior da chave
func upsert(ctx context.Context, db execer, namespace, key string, value []byte) error {
	const q = `
		INSERT INTO kv_entries (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET
		  value      = EXCLUDED.value,
		  updated_at = EXCLUDED.updated_at
	`
	_, err := db.ExecContext(ctx, q, namespace, key, value)
	return err
}
