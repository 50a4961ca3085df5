package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis game state.
func stateKey(gameID string) string        { return "game:" + gameID + ":state" }
func ordersKey(gameID, side string) string { return "game:" + gameID + ":orders:" + side }
func readyKey(gameID string) string        { return "game:" + gameID + ":ready" }
func timerKey(gameID string) string        { return "game:" + gameID + ":timer" }

// SetGameState stores the live pkg/wsim.Game snapshot, JSON-encoded by the
// service layer. The engine itself never touches Redis (spec.md §1: the
// persistence layer is an external collaborator).
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetGameState retrieves the live game state JSON.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteGameState removes the live snapshot key only, leaving turn
// planning metadata untouched.
func (c *Client) DeleteGameState(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, stateKey(gameID)).Err()
}

// SetOrders stores a side's orders for the current turn.
func (c *Client) SetOrders(ctx context.Context, gameID, side string, orders json.RawMessage) error {
	return c.rdb.Set(ctx, ordersKey(gameID, side), []byte(orders), 0).Err()
}

// GetOrders retrieves a side's submitted orders.
func (c *Client) GetOrders(ctx context.Context, gameID, side string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, ordersKey(gameID, side)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	return json.RawMessage(data), nil
}

// GetAllOrders retrieves orders from every side that has submitted.
func (c *Client) GetAllOrders(ctx context.Context, gameID string, sides []string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	for _, side := range sides {
		data, err := c.GetOrders(ctx, gameID, side)
		if err != nil {
			return nil, err
		}
		if data != nil {
			result[side] = data
		}
	}
	return result, nil
}

// MarkReady adds a side to the ready set for the game.
func (c *Client) MarkReady(ctx context.Context, gameID, side string) error {
	return c.rdb.SAdd(ctx, readyKey(gameID), side).Err()
}

// UnmarkReady removes a side from the ready set.
func (c *Client) UnmarkReady(ctx context.Context, gameID, side string) error {
	return c.rdb.SRem(ctx, readyKey(gameID), side).Err()
}

// ReadyCount returns how many sides have marked ready.
func (c *Client) ReadyCount(ctx context.Context, gameID string) (int64, error) {
	return c.rdb.SCard(ctx, readyKey(gameID)).Result()
}

// ReadySides returns the set of sides that have marked ready.
func (c *Client) ReadySides(ctx context.Context, gameID string) ([]string, error) {
	return c.rdb.SMembers(ctx, readyKey(gameID)).Result()
}

// turnGracePeriod is the extra time after the displayed deadline before
// movement resolution triggers, giving players a few seconds of leeway.
const turnGracePeriod = 5 * time.Second

// SetTimer creates a timer key with a TTL. When the key expires, Redis
// keyspace notifications trigger resolve_movement for the game; the engine
// rejects it unless both sides have submitted orders.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + turnGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTimer removes the timer for a game.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// ClearTurnData removes orders, ready status, and timer for a game.
// Called after advance_turn clears orders on the engine snapshot
// (spec.md §4.12), to keep the cache in step.
func (c *Client) ClearTurnData(ctx context.Context, gameID string, sides []string) error {
	keys := []string{readyKey(gameID), timerKey(gameID)}
	for _, side := range sides {
		keys = append(keys, ordersKey(gameID, side))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string, sides []string) error {
	keys := []string{stateKey(gameID), readyKey(gameID), timerKey(gameID)}
	for _, side := range sides {
		keys = append(keys, ordersKey(gameID, side))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
