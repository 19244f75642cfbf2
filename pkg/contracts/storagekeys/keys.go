// Package storagekeys centraliza as chaves usadas no armazenamento local,
// evitando colisões e erros de digitação.
package storagekeys

const (
	// Autenticação
	UserToken   = "@user_token"
	UserID      = "@user_id"
	UserSession = "@user_session"
	Username    = "username" // gravada pelo fluxo de login sem prefixo

	// Preferências do usuário
	FavoriteTeams   = "@favorite_teams"
	UserPreferences = "@user_preferences"
	ThemePreference = "@theme_preference"

	// Dados em cache
	CachedGames = "@cached_games"
	LastSync    = "@last_sync"

	// Outros
	OnboardingComplete = "@onboarding_complete"
)

// All devolve todas as chaves registradas
func All() []string {
	return []string{
		UserToken,
		UserID,
		UserSession,
		Username,
		FavoriteTeams,
		UserPreferences,
		ThemePreference,
		CachedGames,
		LastSync,
		OnboardingComplete,
	}
}

// SessionKeys são as chaves removidas no logout
func SessionKeys() []string {
	return []string{UserToken, UserID, UserSession, Username}
}
