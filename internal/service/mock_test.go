package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironhull/wsim/internal/model"
)

type mockGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games:   make(map[string]*model.Game),
		players: make(map[string][]model.GamePlayer),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID, scenarioName, turnDuration string, mapWidth, mapHeight int, wind, victoryCondition string, turnLimit int) (*model.Game, error) {
	g := &model.Game{
		ID:               fmt.Sprintf("game-%d", len(m.games)+1),
		Name:             name,
		CreatorID:        creatorID,
		Status:           "waiting",
		ScenarioName:     scenarioName,
		MapWidth:         mapWidth,
		MapHeight:        mapHeight,
		WindDirection:    wind,
		VictoryCondition: victoryCondition,
		TurnLimit:        turnLimit,
		TurnDuration:     turnDuration,
		CreatedAt:        time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.players[id]
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	seen := make(map[string]bool)
	var result []model.Game
	for gameID, players := range m.players {
		for _, p := range players {
			if p.UserID == userID && !seen[gameID] {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
					seen[gameID] = true
				}
			}
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID, side string) error {
	if _, ok := m.games[gameID]; !ok {
		return fmt.Errorf("game not found")
	}
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID: gameID, UserID: userID, Side: side, JoinedAt: time.Now(),
	})
	return nil
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) SetStarted(_ context.Context, gameID string) error {
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game not found")
	}
	g.Status = "active"
	now := time.Now()
	g.StartedAt = &now
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game not found")
	}
	g.Status = "finished"
	g.Winner = winner
	now := time.Now()
	g.FinishedAt = &now
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

type mockTurnRepo struct {
	orders []model.TurnRecord
	events []model.EventRecord
}

func newMockTurnRepo() *mockTurnRepo {
	return &mockTurnRepo{}
}

func (m *mockTurnRepo) SaveOrders(_ context.Context, record model.TurnRecord) error {
	m.orders = append(m.orders, record)
	return nil
}

func (m *mockTurnRepo) OrdersByGame(_ context.Context, gameID string) ([]model.TurnRecord, error) {
	var result []model.TurnRecord
	for _, o := range m.orders {
		if o.GameID == gameID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *mockTurnRepo) AppendEvents(_ context.Context, records []model.EventRecord) error {
	m.events = append(m.events, records...)
	return nil
}

func (m *mockTurnRepo) EventsByGame(_ context.Context, gameID string) ([]model.EventRecord, error) {
	var result []model.EventRecord
	for _, e := range m.events {
		if e.GameID == gameID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockTurnRepo) EventsByTurn(_ context.Context, gameID string, turnNumber int) ([]model.EventRecord, error) {
	var result []model.EventRecord
	for _, e := range m.events {
		if e.GameID == gameID && e.TurnNumber == turnNumber {
			result = append(result, e)
		}
	}
	return result, nil
}

type mockGameCache struct {
	state   map[string]json.RawMessage
	orders  map[string]map[string]json.RawMessage
	ready   map[string]map[string]bool
	timers  map[string]time.Time
}

func newMockGameCache() *mockGameCache {
	return &mockGameCache{
		state:  make(map[string]json.RawMessage),
		orders: make(map[string]map[string]json.RawMessage),
		ready:  make(map[string]map[string]bool),
		timers: make(map[string]time.Time),
	}
}

func (m *mockGameCache) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	m.state[gameID] = state
	return nil
}

func (m *mockGameCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	return m.state[gameID], nil
}

func (m *mockGameCache) DeleteGameState(_ context.Context, gameID string) error {
	delete(m.state, gameID)
	return nil
}

func (m *mockGameCache) SetOrders(_ context.Context, gameID, side string, orders json.RawMessage) error {
	if m.orders[gameID] == nil {
		m.orders[gameID] = make(map[string]json.RawMessage)
	}
	m.orders[gameID][side] = orders
	return nil
}

func (m *mockGameCache) GetOrders(_ context.Context, gameID, side string) (json.RawMessage, error) {
	return m.orders[gameID][side], nil
}

func (m *mockGameCache) GetAllOrders(_ context.Context, gameID string, sides []string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	for _, side := range sides {
		if v, ok := m.orders[gameID][side]; ok {
			result[side] = v
		}
	}
	return result, nil
}

func (m *mockGameCache) MarkReady(_ context.Context, gameID, side string) error {
	if m.ready[gameID] == nil {
		m.ready[gameID] = make(map[string]bool)
	}
	m.ready[gameID][side] = true
	return nil
}

func (m *mockGameCache) UnmarkReady(_ context.Context, gameID, side string) error {
	delete(m.ready[gameID], side)
	return nil
}

func (m *mockGameCache) ReadyCount(_ context.Context, gameID string) (int64, error) {
	return int64(len(m.ready[gameID])), nil
}

func (m *mockGameCache) ReadySides(_ context.Context, gameID string) ([]string, error) {
	var sides []string
	for side := range m.ready[gameID] {
		sides = append(sides, side)
	}
	return sides, nil
}

func (m *mockGameCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	m.timers[gameID] = deadline
	return nil
}

func (m *mockGameCache) ClearTimer(_ context.Context, gameID string) error {
	delete(m.timers, gameID)
	return nil
}

func (m *mockGameCache) ClearTurnData(_ context.Context, gameID string, sides []string) error {
	delete(m.orders, gameID)
	delete(m.ready, gameID)
	delete(m.timers, gameID)
	return nil
}

func (m *mockGameCache) DeleteGameData(_ context.Context, gameID string, sides []string) error {
	delete(m.state, gameID)
	delete(m.orders, gameID)
	delete(m.ready, gameID)
	delete(m.timers, gameID)
	return nil
}
