package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ironhull/wsim/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines durable game and seat data operations. The live,
// turn-by-turn snapshot is not stored here — see GameCache.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID, scenarioName, turnDuration string, mapWidth, mapHeight int, wind, victoryCondition string, turnLimit int) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListFinished(ctx context.Context) ([]model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	JoinGame(ctx context.Context, gameID, userID, side string) error
	PlayerCount(ctx context.Context, gameID string) (int, error)
	SetStarted(ctx context.Context, gameID string) error
	SetFinished(ctx context.Context, gameID, winner string) error
	Delete(ctx context.Context, gameID string) error
}

// TurnRepository persists turn audit data: each side's orders as they are
// submitted, and the engine's append-only event log after every resolution
// step.
type TurnRepository interface {
	SaveOrders(ctx context.Context, record model.TurnRecord) error
	OrdersByGame(ctx context.Context, gameID string) ([]model.TurnRecord, error)
	AppendEvents(ctx context.Context, records []model.EventRecord) error
	EventsByGame(ctx context.Context, gameID string) ([]model.EventRecord, error)
	EventsByTurn(ctx context.Context, gameID string, turnNumber int) ([]model.EventRecord, error)
}

// GameCache defines live game state operations (Redis): the pkg/wsim.Game
// snapshot between engine calls, plus per-turn planning metadata that does
// not belong on the snapshot itself (ready flags, submission deadline).
type GameCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	DeleteGameState(ctx context.Context, gameID string) error

	SetOrders(ctx context.Context, gameID, side string, orders json.RawMessage) error
	GetOrders(ctx context.Context, gameID, side string) (json.RawMessage, error)
	GetAllOrders(ctx context.Context, gameID string, sides []string) (map[string]json.RawMessage, error)

	MarkReady(ctx context.Context, gameID, side string) error
	UnmarkReady(ctx context.Context, gameID, side string) error
	ReadyCount(ctx context.Context, gameID string) (int64, error)
	ReadySides(ctx context.Context, gameID string) ([]string, error)

	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTimer(ctx context.Context, gameID string) error

	ClearTurnData(ctx context.Context, gameID string, sides []string) error
	DeleteGameData(ctx context.Context, gameID string, sides []string) error
}
