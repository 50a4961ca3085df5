package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironhull/wsim/internal/model"
	"github.com/ironhull/wsim/internal/repository"
	"github.com/ironhull/wsim/pkg/wsim"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not in waiting status")
	ErrGameFull       = errors.New("game already has two players")
	ErrNotEnough      = errors.New("need exactly two players to start")
	ErrNotCreator     = errors.New("only the creator can start the game")
	ErrGameNotActive  = errors.New("game is not active")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrNotInGame      = errors.New("you are not in this game")
	ErrSideTaken      = errors.New("side already assigned to another player")
	ErrInvalidSide    = errors.New("invalid side")
)

// GameService handles game lifecycle operations: creation from a
// scenario, joining, starting, and listing. It owns the bridge between
// the durable model.Game row and the live pkg/wsim.Game snapshot.
type GameService struct {
	gameRepo  repository.GameRepository
	cache     repository.GameCache
	hitTables wsim.HitTables
	maxRange  int
}

// NewGameService creates a GameService. hitTables and maxRange are process-wide
// configuration, loaded once at startup (internal/config.Load).
func NewGameService(gameRepo repository.GameRepository, cache repository.GameCache, hitTables wsim.HitTables, maxRange int) *GameService {
	return &GameService{gameRepo: gameRepo, cache: cache, hitTables: hitTables, maxRange: maxRange}
}

// CreateFromScenario creates a new game row in "waiting" status from a
// parsed scenario, but does not yet build the live engine snapshot —
// that happens in StartGame, once both seats are filled.
func (s *GameService) CreateFromScenario(ctx context.Context, name, creatorID, turnDuration string, sc *Scenario) (*model.Game, error) {
	if turnDuration == "" {
		turnDuration = "2 minutes"
	}
	game, err := s.gameRepo.Create(ctx, name, creatorID, sc.Name, turnDuration,
		sc.MapWidth, sc.MapHeight, sc.Wind, sc.VictoryCondition, sc.TurnLimit)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	scenarioJSON, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("marshal scenario: %w", err)
	}
	if err := s.cache.SetGameState(ctx, "scenario:"+game.ID, scenarioJSON); err != nil {
		return nil, fmt.Errorf("cache pending scenario: %w", err)
	}

	if err := s.gameRepo.JoinGame(ctx, game.ID, creatorID, "P1"); err != nil {
		return nil, fmt.Errorf("auto-join creator: %w", err)
	}

	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame seats a player on the requested side, provided that side is free
// and the game still has an open seat.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID, side string) error {
	if side != "P1" && side != "P2" {
		return ErrInvalidSide
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}

	for _, p := range game.Players {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
		if p.Side == side {
			return ErrSideTaken
		}
	}

	count, err := s.gameRepo.PlayerCount(ctx, gameID)
	if err != nil {
		return err
	}
	if count >= 2 {
		return ErrGameFull
	}

	return s.gameRepo.JoinGame(ctx, gameID, userID, side)
}

// StartGame builds the live wsim.Game snapshot from the pending scenario
// and marks the game active. Only the creator may start, and both seats
// must be filled.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return nil, ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) != 2 {
		return nil, ErrNotEnough
	}

	scenarioJSON, err := s.cache.GetGameState(ctx, "scenario:"+gameID)
	if err != nil {
		return nil, fmt.Errorf("load pending scenario: %w", err)
	}
	if scenarioJSON == nil {
		return nil, fmt.Errorf("no pending scenario for game %s", gameID)
	}
	var sc Scenario
	if err := json.Unmarshal(scenarioJSON, &sc); err != nil {
		return nil, fmt.Errorf("unmarshal pending scenario: %w", err)
	}

	ships, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("build scenario ships: %w", err)
	}

	engine := wsim.NewGame(gameID, sc.MapWidth, sc.MapHeight, wsim.WindDirection(sc.Wind),
		ships, sc.TurnLimit, sc.TurnLimit > 0, sc.victoryCondition(), s.hitTables, s.maxRange)

	if err := s.saveLiveState(ctx, engine); err != nil {
		return nil, err
	}
	if err := s.cache.DeleteGameState(ctx, "scenario:"+gameID); err != nil {
		return nil, fmt.Errorf("clear pending scenario: %w", err)
	}
	if err := s.gameRepo.SetStarted(ctx, gameID); err != nil {
		return nil, err
	}

	return s.gameRepo.FindByID(ctx, gameID)
}

// GetGame returns the durable game row by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// GetLiveState returns the current engine snapshot for an active game.
func (s *GameService) GetLiveState(ctx context.Context, gameID string) (*wsim.Game, error) {
	raw, err := s.cache.GetGameState(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load live state: %w", err)
	}
	if raw == nil {
		return nil, ErrGameNotActive
	}
	var g wsim.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("unmarshal live state: %w", err)
	}
	return &g, nil
}

// saveLiveState persists the engine snapshot back to the cache. Every
// engine-mutating service method ends by calling this, keeping Redis and
// the in-process snapshot identical (spec.md §5: synchronous, single
// Game at a time).
func (s *GameService) saveLiveState(ctx context.Context, g *wsim.Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal live state: %w", err)
	}
	if err := s.cache.SetGameState(ctx, g.ID, raw); err != nil {
		return fmt.Errorf("save live state: %w", err)
	}
	return nil
}

// DeleteGame removes a waiting game. Only the creator may delete it.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// StopGame ends an active game as a draw. Only the creator may stop it.
func (s *GameService) StopGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "active" {
		return nil, ErrGameNotActive
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if err := s.gameRepo.SetFinished(ctx, gameID, ""); err != nil {
		return nil, err
	}
	sides := []string{"P1", "P2"}
	if err := s.cache.DeleteGameData(ctx, gameID, sides); err != nil {
		return nil, fmt.Errorf("clear cache on stop: %w", err)
	}
	return s.gameRepo.FindByID(ctx, gameID)
}

// ListGames returns open games, the user's games, or finished games.
func (s *GameService) ListGames(ctx context.Context, userID, filter string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "finished":
		return s.gameRepo.ListFinished(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}

// sideForUser finds the requesting user's assigned side in a game.
func sideForUser(game *model.Game, userID string) (string, bool) {
	for _, p := range game.Players {
		if p.UserID == userID {
			return p.Side, true
		}
	}
	return "", false
}

// parseDuration converts a Postgres interval string like "00:02:00" or a
// Go duration string like "2m" to time.Duration.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d
	}
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err == nil {
		return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
	}
	return 2 * time.Minute
}
