// Package model holds the persistence-facing DTOs for the HTTP/storage
// layer. These are deliberately separate from pkg/wsim's in-memory engine
// types: the engine never imports this package, and this package never
// imports net/http — only the service layer bridges the two.
package model

import (
	"encoding/json"
	"time"
)

// User represents a registered player, authenticated via OAuth.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game is the durable record of one wsim match: scenario configuration
// plus lifecycle metadata. The live, turn-by-turn Game snapshot
// (pkg/wsim.Game) lives in the Redis cache, not here; this row is what
// survives a cache eviction and what game listings are built from.
type Game struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	CreatorID        string     `json:"creator_id"`
	Status           string     `json:"status"` // waiting, active, finished
	Winner           string     `json:"winner,omitempty"`
	ScenarioName     string     `json:"scenario_name"`
	MapWidth         int        `json:"map_width"`
	MapHeight        int        `json:"map_height"`
	WindDirection    string     `json:"wind_direction"`
	VictoryCondition string     `json:"victory_condition"`
	TurnLimit        int        `json:"turn_limit,omitempty"`
	TurnDuration     string     `json:"turn_duration"`
	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	Players          []GamePlayer `json:"players,omitempty"`
	ReadyCount       int        `json:"ready_count,omitempty"`
}

// GamePlayer represents a user's seat in a game: which side they control.
type GamePlayer struct {
	GameID   string    `json:"game_id"`
	UserID   string    `json:"user_id"`
	Side     string    `json:"side"` // "P1" or "P2"
	JoinedAt time.Time `json:"joined_at"`
}

// TurnRecord is the durable record of one side's order submission for one
// turn, persisted for audit/replay at submission time, so it outlives the
// live cache entry (spec.md §4.12: orders are cleared on advance).
type TurnRecord struct {
	ID          string          `json:"id"`
	GameID      string          `json:"game_id"`
	TurnNumber  int             `json:"turn_number"`
	Side        string          `json:"side"`
	OrdersJSON  json.RawMessage `json:"orders"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// EventRecord is the durable form of one pkg/wsim.EventLogEntry: the
// engine's in-memory event log, persisted after each resolution step so
// the full game can be replayed or audited after the fact (spec.md §4.12,
// §8 invariant 4).
type EventRecord struct {
	ID         string          `json:"id"`
	GameID     string          `json:"game_id"`
	TurnNumber int             `json:"turn_number"`
	Phase      string          `json:"phase"`
	EventType  string          `json:"event_type"`
	Summary    string          `json:"summary"`
	DiceJSON   json.RawMessage `json:"dice,omitempty"`
	Modifiers  json.RawMessage `json:"modifiers,omitempty"`
	StateDiff  json.RawMessage `json:"state_diff,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
