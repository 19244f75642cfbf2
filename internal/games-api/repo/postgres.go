package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          BIGSERIAL PRIMARY KEY,
	league      TEXT NOT NULL DEFAULT '',
	home_team   TEXT NOT NULL,
	away_team   TEXT NOT NULL,
	start_time  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	odds_home   DOUBLE PRECISION NOT NULL DEFAULT 0,
	odds_away   DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS games_status_idx ON games (status);
`

type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo garante a tabela games antes de devolver o repositório
func NewPostgresRepo(ctx context.Context, db *sql.DB) (*PostgresRepo, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create games schema: %w", err)
	}
	return &PostgresRepo{DB: db}, nil
}

func (r *PostgresRepo) List(ctx context.Context, filter games.StatusFilter) ([]games.Game, error) {
	const q = `
		SELECT id, league, home_team, away_team, start_time, status, odds_home, odds_away
		FROM games
		WHERE $1 = '' OR status = $1
		ORDER BY id;
	`
	rows, err := r.DB.QueryContext(ctx, q, string(filter))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []games.Game{}
	for rows.Next() {
		var (
			g  games.Game
			id int64
		)
		if err := rows.Scan(&id, &g.League, &g.HomeTeam, &g.AwayTeam, &g.StartTime, &g.Status, &g.OddsHome, &g.OddsAway); err != nil {
			return nil, err
		}
		g.ID = &id
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Create(ctx context.Context, draft games.GameDraft) (games.Game, error) {
	if err := draft.Validate(); err != nil {
		return games.Game{}, err
	}
	const q = `
		INSERT INTO games (league, home_team, away_team, start_time, status, odds_home, odds_away)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	var id int64
	err := r.DB.QueryRowContext(ctx, q,
		draft.League, draft.HomeTeam, draft.AwayTeam, draft.StartTime, draft.Status, draft.OddsHome, draft.OddsAway,
	).Scan(&id)
	if err != nil {
		return games.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return draft.WithID(id), nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error { return r.DB.PingContext(ctx) }
