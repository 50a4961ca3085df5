package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ironhull/wsim/internal/model"
)

// GameRepo handles game and game_player database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

const gameColumns = `id, name, creator_id, status, winner, scenario_name, map_width, map_height,
	wind_direction, victory_condition, turn_limit, turn_duration, created_at, started_at, finished_at`

func scanGame(row interface{ Scan(...interface{}) error }) (model.Game, error) {
	var g model.Game
	var winner sql.NullString
	var turnLimit sql.NullInt64
	err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &winner, &g.ScenarioName, &g.MapWidth, &g.MapHeight,
		&g.WindDirection, &g.VictoryCondition, &turnLimit, &g.TurnDuration, &g.CreatedAt, &g.StartedAt, &g.FinishedAt)
	g.Winner = winner.String
	g.TurnLimit = int(turnLimit.Int64)
	return g, err
}

// Create inserts a new game in "waiting" status, not yet started.
func (r *GameRepo) Create(ctx context.Context, name, creatorID, scenarioName, turnDuration string, mapWidth, mapHeight int, wind, victoryCondition string, turnLimit int) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, creator_id, scenario_name, map_width, map_height, wind_direction, victory_condition, turn_limit, turn_duration)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, 0), $9::interval)
		 RETURNING `+gameColumns,
		name, creatorID, scenarioName, mapWidth, mapHeight, wind, victoryCondition, turnLimit, turnDuration,
	)
	g, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &g, nil
}

// FindByID returns a game by ID with its seated players.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}

	players, err := r.ListPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Players = players
	return &g, nil
}

func (r *GameRepo) listByQuery(ctx context.Context, query string, args ...interface{}) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListOpen returns games in "waiting" status, newest first. Games whose two
// seats are already filled are not filtered out.
func (r *GameRepo) ListOpen(ctx context.Context) ([]model.Game, error) {
	return r.listByQuery(ctx,
		`SELECT `+gameColumns+` FROM games WHERE status = 'waiting' ORDER BY created_at DESC LIMIT 50`)
}

// ListByUser returns all games a user is seated in or created.
func (r *GameRepo) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	return r.listByQuery(ctx,
		`SELECT DISTINCT g.id, g.name, g.creator_id, g.status, g.winner, g.scenario_name, g.map_width, g.map_height,
		        g.wind_direction, g.victory_condition, g.turn_limit, g.turn_duration, g.created_at, g.started_at, g.finished_at
		 FROM games g LEFT JOIN game_players gp ON g.id = gp.game_id AND gp.user_id = $1
		 WHERE gp.user_id = $1 OR g.creator_id = $1
		 ORDER BY g.created_at DESC LIMIT 50`, userID)
}

// ListFinished returns all finished games, most recent first.
func (r *GameRepo) ListFinished(ctx context.Context) ([]model.Game, error) {
	return r.listByQuery(ctx,
		`SELECT `+gameColumns+` FROM games WHERE status = 'finished' ORDER BY finished_at DESC LIMIT 100`)
}

// ListActive returns all in-progress games, with seated players attached.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	games, err := r.listByQuery(ctx,
		`SELECT `+gameColumns+` FROM games WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	for i := range games {
		players, err := r.ListPlayers(ctx, games[i].ID)
		if err != nil {
			return nil, err
		}
		games[i].Players = players
	}
	return games, nil
}

// JoinGame seats userID on the given side ("P1" or "P2").
func (r *GameRepo) JoinGame(ctx context.Context, gameID, userID, side string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_players (game_id, user_id, side) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		gameID, userID, side,
	)
	if err != nil {
		return fmt.Errorf("join game: %w", err)
	}
	return nil
}

// ListPlayers returns the (at most two) seated players for a game.
func (r *GameRepo) ListPlayers(ctx context.Context, gameID string) ([]model.GamePlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, user_id, side, joined_at FROM game_players WHERE game_id = $1 ORDER BY joined_at`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.GamePlayer
	for rows.Next() {
		var p model.GamePlayer
		if err := rows.Scan(&p.GameID, &p.UserID, &p.Side, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// PlayerCount returns the number of seated players in a game (0, 1, or 2).
func (r *GameRepo) PlayerCount(ctx context.Context, gameID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_players WHERE game_id = $1`, gameID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("player count: %w", err)
	}
	return count, nil
}

// SetStarted marks a game active once both sides are seated.
func (r *GameRepo) SetStarted(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'active', started_at = now() WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("set started: %w", err)
	}
	return nil
}

// SetFinished marks a game finished with the given winner tag
// ("P1", "P2", or "draw").
func (r *GameRepo) SetFinished(ctx context.Context, gameID, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'finished', winner = $1, finished_at = now() WHERE id = $2`,
		winner, gameID,
	)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}

// Delete removes a game and all associated data (cascades to players,
// turn records, and events).
func (r *GameRepo) Delete(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
