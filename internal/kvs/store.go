// Package kvs implementa o armazenamento chave/valor local: valores JSON
// versionados, gravados sob as chaves de storagekeys, sobre um Backend
// plugável (memória, SQLite, Redis ou Postgres).
package kvs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/shared/logger"
)

// Store serializa valores em JSON e converte toda falha do backend em
// *StorageError. Não há lock entre chaves: escritas concorrentes na mesma
// chave seguem last-write-wins.
type Store struct {
	backend    Backend
	log        *zap.Logger
	migrations *Migrations
}

type Option func(*Store)

// WithMigrations liga a migração na leitura para as chaves registradas
func WithMigrations(m *Migrations) Option {
	return func(s *Store) { s.migrations = m }
}

func New(backend Backend, log *zap.Logger, opts ...Option) *Store {
	s := &Store{backend: backend, log: logger.OrNop(log)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Entry é um resultado de GetMultiple. Value nil significa chave ausente
// (ou valor ilegível, que é logado).
type Entry struct {
	Key   string
	Value json.RawMessage
}

// Found indica se a chave tinha valor
func (e Entry) Found() bool { return e.Value != nil }

// Decode desserializa o valor em dst; devolve false se ausente
func (e Entry) Decode(dst any) (bool, error) {
	if e.Value == nil {
		return false, nil
	}
	if err := json.Unmarshal(e.Value, dst); err != nil {
		return false, storageErr("decode", e.Key, errors.Join(ErrSerialization, err))
	}
	return true, nil
}

// Pair é um par chave/valor para StoreMultiple
type Pair struct {
	Key   string
	Value any
}

// envelope guarda a versão do formato ao lado do valor
type envelope struct {
	Version *int            `json:"_v"`
	Value   json.RawMessage `json:"value"`
}

// Store grava value sob key, substituindo o valor anterior
func (s *Store) Store(ctx context.Context, key string, value any) error {
	b, err := s.encode(key, value)
	if err != nil {
		return s.fail("store", key, err)
	}
	if err := s.backend.Set(ctx, key, b); err != nil {
		return s.fail("store", key, err)
	}
	return nil
}

// Get desserializa o valor de key em dst. found=false quando a chave nunca
// foi gravada ou foi removida.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.GetRaw(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, s.fail("get", key, errors.Join(ErrSerialization, err))
	}
	return true, nil
}

// GetRaw devolve o JSON do valor corrente de key, ou nil se ausente
func (s *Store) GetRaw(ctx context.Context, key string) (json.RawMessage, error) {
	if key == "" {
		return nil, s.fail("get", key, ErrEmptyKey)
	}
	b, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, s.fail("get", key, err)
	}
	if !found {
		return nil, nil
	}
	raw, err := s.decode(ctx, key, b)
	if err != nil {
		return nil, s.fail("get", key, err)
	}
	return raw, nil
}

// Remove apaga key; remover chave ausente não é erro
func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return s.fail("remove", key, ErrEmptyKey)
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return s.fail("remove", key, err)
	}
	return nil
}

// ClearAll remove todas as chaves gravadas por este store
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return s.fail("clearAll", "", err)
	}
	return nil
}

// GetMultiple devolve uma Entry por chave, na ordem de keys.
// Falha de leitura de uma chave degrada só aquela entrada para nil.
func (s *Store) GetMultiple(ctx context.Context, keys []string) ([]Entry, error) {
	values, err := s.backend.MultiGet(ctx, keys)
	if err != nil {
		return nil, s.fail("getMultiple", "", err)
	}
	if len(values) != len(keys) {
		return nil, s.fail("getMultiple", "", fmt.Errorf("backend returned %d values for %d keys", len(values), len(keys)))
	}

	out := make([]Entry, len(keys))
	for i, key := range keys {
		out[i].Key = key
		if values[i] == nil {
			continue
		}
		raw, err := s.decode(ctx, key, values[i])
		if err != nil {
			s.log.Warn("kvs entry unreadable, returning empty", zap.String("key", key), zap.Error(err))
			continue
		}
		out[i].Value = raw
	}
	return out, nil
}

// StoreMultiple grava todos os pares. Não é atômico: se o backend falhar
// no meio, parte dos pares pode ter sido gravada.
func (s *Store) StoreMultiple(ctx context.Context, pairs []Pair) error {
	raw := make([]RawPair, 0, len(pairs))
	for _, p := range pairs {
		b, err := s.encode(p.Key, p.Value)
		if err != nil {
			return s.fail("storeMultiple", p.Key, err)
		}
		raw = append(raw, RawPair{Key: p.Key, Value: b})
	}
	if err := s.backend.MultiSet(ctx, raw); err != nil {
		return s.fail("storeMultiple", "", err)
	}
	return nil
}

// Ping verifica o meio persistente (usado no /healthz)
func (s *Store) Ping(ctx context.Context) error {
	if err := s.backend.Ping(ctx); err != nil {
		return storageErr("ping", "", err)
	}
	return nil
}

// Close libera o backend
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) encode(key string, value any) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	version := s.migrations.Current(key)
	b, err := json.Marshal(envelope{Version: &version, Value: data})
	if err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	return b, nil
}

// decode abre o envelope e migra valores antigos, regravando-os já na
// versão corrente
func (s *Store) decode(ctx context.Context, key string, b []byte) (json.RawMessage, error) {
	version, data, err := openEnvelope(b)
	if err != nil {
		return nil, err
	}

	current := s.migrations.Current(key)
	switch {
	case version == current:
		return data, nil
	case version > current:
		return nil, fmt.Errorf("%w: got %d, current %d", ErrUnknownVersion, version, current)
	}

	migrated, err := s.migrations.Upgrade(key, version, data)
	if err != nil {
		return nil, err
	}

	wrapped, err := json.Marshal(envelope{Version: &current, Value: migrated})
	if err == nil {
		err = s.backend.Set(ctx, key, wrapped)
	}
	if err != nil {
		s.log.Warn("kvs migrated value not written back", zap.String("key", key), zap.Error(err))
	} else {
		s.log.Debug("kvs value migrated", zap.String("key", key), zap.Int("from", version), zap.Int("to", current))
	}
	return migrated, nil
}

func openEnvelope(b []byte) (int, json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err == nil && env.Version != nil && env.Value != nil {
		return *env.Version, env.Value, nil
	}
	if !json.Valid(b) {
		return 0, nil, fmt.Errorf("%w: stored value is not json", ErrSerialization)
	}
	// valor legado, gravado sem envelope
	return 0, json.RawMessage(b), nil
}

func (s *Store) fail(op, key string, err error) error {
	s.log.Error("kvs operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	return storageErr(op, key, err)
}
