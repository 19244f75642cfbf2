package session

import (
	"context"
	"fmt"

	"github.com/radieske/sports-games-client/pkg/contracts/storagekeys"
)

type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func (t Theme) valid() bool {
	return t == ThemeSystem || t == ThemeLight || t == ThemeDark
}

// Preferences é o registro livre em storagekeys.UserPreferences
type Preferences struct {
	Notifications bool   `json:"notifications"`
	DefaultFilter string `json:"defaultFilter,omitempty"`
}

func (m *Manager) SetFavoriteTeams(ctx context.Context, teams []string) error {
	if teams == nil {
		teams = []string{}
	}
	return m.store.Store(ctx, storagekeys.FavoriteTeams, teams)
}

// FavoriteTeams devolve a lista gravada, vazia se nunca foi escolhida
func (m *Manager) FavoriteTeams(ctx context.Context) ([]string, error) {
	teams := []string{}
	if _, err := m.store.Get(ctx, storagekeys.FavoriteTeams, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (m *Manager) SetTheme(ctx context.Context, t Theme) error {
	if !t.valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	return m.store.Store(ctx, storagekeys.ThemePreference, t)
}

// Theme devolve o tema gravado; ThemeSystem quando ausente
func (m *Manager) Theme(ctx context.Context) (Theme, error) {
	t := ThemeSystem
	if _, err := m.store.Get(ctx, storagekeys.ThemePreference, &t); err != nil {
		return ThemeSystem, err
	}
	return t, nil
}

func (m *Manager) SetPreferences(ctx context.Context, p Preferences) error {
	return m.store.Store(ctx, storagekeys.UserPreferences, p)
}

func (m *Manager) Preferences(ctx context.Context) (Preferences, error) {
	var p Preferences
	_, err := m.store.Get(ctx, storagekeys.UserPreferences, &p)
	return p, err
}

func (m *Manager) CompleteOnboarding(ctx context.Context) error {
	return m.store.Store(ctx, storagekeys.OnboardingComplete, true)
}

func (m *Manager) OnboardingComplete(ctx context.Context) (bool, error) {
	var done bool
	_, err := m.store.Get(ctx, storagekeys.OnboardingComplete, &done)
	return done, err
}
