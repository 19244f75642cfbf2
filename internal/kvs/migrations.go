package kvs

import (
	"encoding/json"
	"fmt"
	"sync"
)

// DefaultVersion é a versão gravada para chaves sem migrações registradas
const DefaultVersion = 1

// MigrateFunc converte o valor de uma versão para a seguinte
type MigrateFunc func(old json.RawMessage) (json.RawMessage, error)

// Migrations mapeia, por chave, cada versão para a função que a leva à
// versão seguinte. A versão corrente de uma chave é a maior registrada + 1.
//
// Valores gravados sem envelope (builds antigos) são lidos como versão 0;
// o passo 0 -> 1 é identidade, a menos que um passo 0 seja registrado.
type Migrations struct {
	mu      sync.RWMutex
	current map[string]int
	steps   map[string]map[int]MigrateFunc
}

func NewMigrations() *Migrations {
	return &Migrations{
		current: make(map[string]int),
		steps:   make(map[string]map[int]MigrateFunc),
	}
}

// Register adiciona o passo from -> from+1 para key
func (m *Migrations) Register(key string, from int, fn MigrateFunc) *Migrations {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.steps[key] == nil {
		m.steps[key] = make(map[int]MigrateFunc)
	}
	m.steps[key][from] = fn
	if from+1 > m.current[key] {
		m.current[key] = from + 1
	}
	return m
}

// Current devolve a versão que o Store grava para key
func (m *Migrations) Current(key string) int {
	if m == nil {
		return DefaultVersion
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.current[key]; ok && v > DefaultVersion {
		return v
	}
	return DefaultVersion
}

// Upgrade aplica os passos de from até a versão corrente
func (m *Migrations) Upgrade(key string, from int, data json.RawMessage) (json.RawMessage, error) {
	target := m.Current(key)
	for v := from; v < target; v++ {
		fn := m.step(key, v)
		if fn == nil {
			if v == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: no step from version %d", ErrMigration, v)
		}
		next, err := fn(data)
		if err != nil {
			return nil, fmt.Errorf("%w: version %d: %v", ErrMigration, v, err)
		}
		if !json.Valid(next) {
			return nil, fmt.Errorf("%w: version %d produced invalid json", ErrMigration, v)
		}
		data = next
	}
	return data, nil
}

func (m *Migrations) step(key string, from int) MigrateFunc {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.steps[key][from]
}
