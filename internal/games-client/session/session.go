// Package session grava a sessão do usuário e suas preferências no
// armazenamento local. A verificação de credenciais fica atrás de Verifier.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/kvs"
	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/pkg/contracts/storagekeys"
)

var (
	ErrMissingCredentials = errors.New("please enter both username and password")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoSession          = errors.New("no active session")
	ErrNoVerifier         = errors.New("login is not configured")
)

// Verifier confere o par usuário/senha
type Verifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

// UserDirectory resolve o id numérico de um usuário
type UserDirectory interface {
	LookupUserID(ctx context.Context, username string) (int64, bool, error)
}

// UserSession é o registro gravado em storagekeys.UserSession (versão 2)
type UserSession struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterMigrations registra os passos de versão das chaves de sessão.
// A v1 não tinha createdAt; sessões migradas ficam com o instante zero.
func RegisterMigrations(m *kvs.Migrations) *kvs.Migrations {
	return m.Register(storagekeys.UserSession, 1, func(old json.RawMessage) (json.RawMessage, error) {
		var v1 struct {
			Token    string `json:"token"`
			Username string `json:"username"`
			UserID   int64  `json:"userId"`
		}
		if err := json.Unmarshal(old, &v1); err != nil {
			return nil, err
		}
		return json.Marshal(UserSession{Token: v1.Token, Username: v1.Username, UserID: v1.UserID})
	})
}

type Manager struct {
	store    *kvs.Store
	verifier Verifier
	users    UserDirectory
	log      *zap.Logger
	now      func() time.Time
}

// NewManager espera um store criado com RegisterMigrations. Sem verifier
// ou users, Login devolve ErrNoVerifier; o resto continua disponível.
func NewManager(store *kvs.Store, verifier Verifier, users UserDirectory, log *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		verifier: verifier,
		users:    users,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

// Login verifica as credenciais e grava a sessão
func (m *Manager) Login(ctx context.Context, username, password string) (UserSession, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return UserSession{}, ErrMissingCredentials
	}
	if m.verifier == nil || m.users == nil {
		return UserSession{}, ErrNoVerifier
	}

	ok, err := m.verifier.Verify(ctx, username, password)
	if err != nil {
		m.log.Error("login verification failed", zap.String("username", username), zap.Error(err))
		return UserSession{}, fmt.Errorf("verify login: %w", err)
	}
	if !ok {
		m.log.Info("login rejected", zap.String("username", username))
		return UserSession{}, ErrInvalidCredentials
	}

	id, found, err := m.users.LookupUserID(ctx, username)
	if err != nil {
		return UserSession{}, fmt.Errorf("lookup user id: %w", err)
	}
	if !found {
		return UserSession{}, ErrUserNotFound
	}

	s := UserSession{
		Token:     uuid.NewString(),
		Username:  username,
		UserID:    id,
		CreatedAt: m.now().UTC(),
	}
	err = m.store.StoreMultiple(ctx, []kvs.Pair{
		{Key: storagekeys.UserToken, Value: s.Token},
		{Key: storagekeys.UserID, Value: s.UserID},
		{Key: storagekeys.Username, Value: s.Username},
		{Key: storagekeys.UserSession, Value: s},
	})
	if err != nil {
		return UserSession{}, err
	}
	m.log.Info("user logged in", zap.String("username", username), zap.Int64("user_id", id))
	return s, nil
}

// Current devolve a sessão gravada ou ErrNoSession
func (m *Manager) Current(ctx context.Context) (UserSession, error) {
	var s UserSession
	found, err := m.store.Get(ctx, storagekeys.UserSession, &s)
	if err != nil {
		return UserSession{}, err
	}
	if !found {
		return UserSession{}, ErrNoSession
	}
	return s, nil
}

// Logout remove as chaves de sessão; preferências são mantidas
func (m *Manager) Logout(ctx context.Context) error {
	for _, k := range storagekeys.SessionKeys() {
		if err := m.store.Remove(ctx, k); err != nil {
			return err
		}
	}
	m.log.Info("user logged out")
	return nil
}
