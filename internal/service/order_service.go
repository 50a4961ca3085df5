package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironhull/wsim/internal/model"
	"github.com/ironhull/wsim/internal/repository"
	"github.com/ironhull/wsim/pkg/wsim"
)

var (
	ErrWrongSide    = errors.New("you do not control this side")
	ErrInvalidOrder = errors.New("invalid order")
)

// OrderInput is one ship's movement notation from the client.
type OrderInput struct {
	ShipID   string `json:"ship_id"`
	Notation string `json:"notation"`
}

// OrderService handles submit_orders and mark_ready, bridging the HTTP
// request shape to pkg/wsim's SubmitOrders/MarkReady engine operations.
type OrderService struct {
	gameRepo repository.GameRepository
	turnRepo repository.TurnRepository
	cache    repository.GameCache
}

// NewOrderService creates an OrderService.
func NewOrderService(gameRepo repository.GameRepository, turnRepo repository.TurnRepository, cache repository.GameCache) *OrderService {
	return &OrderService{gameRepo: gameRepo, turnRepo: turnRepo, cache: cache}
}

// SubmitOrders validates a side's orders against the live engine state and
// records them both in the cache (for UI display) and in Postgres (for
// audit). The engine snapshot itself is not mutated by submission — only
// resolve_movement consumes orders (spec.md §6).
func (s *OrderService) SubmitOrders(ctx context.Context, gameID, userID string, inputs []OrderInput) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	side, ok := sideForUser(game, userID)
	if !ok {
		return ErrNotInGame
	}

	raw, err := s.cache.GetGameState(ctx, gameID)
	if err != nil {
		return fmt.Errorf("load live state: %w", err)
	}
	if raw == nil {
		return ErrGameNotActive
	}
	var engine wsim.Game
	if err := json.Unmarshal(raw, &engine); err != nil {
		return fmt.Errorf("unmarshal live state: %w", err)
	}

	shipOrders := make([]wsim.ShipOrders, 0, len(inputs))
	for _, in := range inputs {
		shipOrders = append(shipOrders, wsim.ShipOrders{ShipID: in.ShipID, Notation: in.Notation})
	}

	if err := engine.SubmitOrders(engine.TurnNumber, wsim.Side(side), shipOrders); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, err)
	}

	raw, err = json.Marshal(&engine)
	if err != nil {
		return fmt.Errorf("marshal live state: %w", err)
	}
	if err := s.cache.SetGameState(ctx, gameID, raw); err != nil {
		return fmt.Errorf("save live state: %w", err)
	}

	ordersJSON, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}
	if err := s.cache.SetOrders(ctx, gameID, side, ordersJSON); err != nil {
		return fmt.Errorf("cache orders: %w", err)
	}

	return s.turnRepo.SaveOrders(ctx, model.TurnRecord{
		GameID:     gameID,
		TurnNumber: engine.TurnNumber,
		Side:       side,
		OrdersJSON: ordersJSON,
	})
}

// MarkReady marks the caller's side ready for resolution and returns
// whether both sides are now ready.
func (s *OrderService) MarkReady(ctx context.Context, gameID, userID string) (bool, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return false, err
	}
	if game == nil {
		return false, ErrGameNotFound
	}
	side, ok := sideForUser(game, userID)
	if !ok {
		return false, ErrNotInGame
	}

	if err := s.cache.MarkReady(ctx, gameID, side); err != nil {
		return false, fmt.Errorf("mark ready: %w", err)
	}
	count, err := s.cache.ReadyCount(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("ready count: %w", err)
	}
	return count >= 2, nil
}

// GetOrders returns the durable order-submission audit trail for a game.
func (s *OrderService) GetOrders(ctx context.Context, gameID string) ([]model.TurnRecord, error) {
	return s.turnRepo.OrdersByGame(ctx, gameID)
}

// ReadyCount returns how many sides have marked ready for the current turn.
func (s *OrderService) ReadyCount(ctx context.Context, gameID string) (int, error) {
	count, err := s.cache.ReadyCount(ctx, gameID)
	return int(count), err
}
