package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ironhull/wsim/internal/model"
)

// TurnRepo handles the durable audit trail of submitted orders and the
// engine's event log: both tables are append-only, mirroring pkg/wsim's
// own append-only event log invariant (spec.md §8 invariant 4).
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// SaveOrders persists one side's order submission for a turn.
func (r *TurnRepo) SaveOrders(ctx context.Context, record model.TurnRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO turn_records (game_id, turn_number, side, orders)
		 VALUES ($1, $2, $3, $4)`,
		record.GameID, record.TurnNumber, record.Side, record.OrdersJSON,
	)
	if err != nil {
		return fmt.Errorf("save turn orders: %w", err)
	}
	return nil
}

// OrdersByGame returns every submitted order record for a game, ordered by
// turn number, then side.
func (r *TurnRepo) OrdersByGame(ctx context.Context, gameID string) ([]model.TurnRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, turn_number, side, orders, submitted_at
		 FROM turn_records WHERE game_id = $1 ORDER BY turn_number, side`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("orders by game: %w", err)
	}
	defer rows.Close()

	var records []model.TurnRecord
	for rows.Next() {
		var t model.TurnRecord
		if err := rows.Scan(&t.ID, &t.GameID, &t.TurnNumber, &t.Side, &t.OrdersJSON, &t.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan turn record: %w", err)
		}
		records = append(records, t)
	}
	return records, rows.Err()
}

// AppendEvents persists a batch of engine event-log entries. Called once
// per resolution step, after the in-memory pkg/wsim.Game snapshot is
// updated, so the durable log and the live snapshot never diverge.
func (r *TurnRepo) AppendEvents(ctx context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (game_id, turn_number, phase, event_type, summary, dice, modifiers, state_diff, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("prepare insert event: %w", err)
	}
	defer stmt.Close()

	for _, e := range records {
		_, err := stmt.ExecContext(ctx, e.GameID, e.TurnNumber, e.Phase, e.EventType, e.Summary,
			nullJSON(e.DiceJSON), nullJSON(e.Modifiers), nullJSON(e.StateDiff), nullJSON(e.Metadata))
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// EventsByGame returns every event for a game in emission order.
func (r *TurnRepo) EventsByGame(ctx context.Context, gameID string) ([]model.EventRecord, error) {
	return r.queryEvents(ctx,
		`SELECT id, game_id, turn_number, phase, event_type, summary, dice, modifiers, state_diff, metadata, created_at
		 FROM events WHERE game_id = $1 ORDER BY id`, gameID)
}

// EventsByTurn returns every event for one turn of a game, in emission order.
func (r *TurnRepo) EventsByTurn(ctx context.Context, gameID string, turnNumber int) ([]model.EventRecord, error) {
	return r.queryEvents(ctx,
		`SELECT id, game_id, turn_number, phase, event_type, summary, dice, modifiers, state_diff, metadata, created_at
		 FROM events WHERE game_id = $1 AND turn_number = $2 ORDER BY id`, gameID, turnNumber)
}

func (r *TurnRepo) queryEvents(ctx context.Context, query string, args ...interface{}) ([]model.EventRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.EventRecord
	for rows.Next() {
		var e model.EventRecord
		var dice, modifiers, stateDiff, metadata sql.NullString
		if err := rows.Scan(&e.ID, &e.GameID, &e.TurnNumber, &e.Phase, &e.EventType, &e.Summary,
			&dice, &modifiers, &stateDiff, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if dice.Valid {
			e.DiceJSON = json.RawMessage(dice.String)
		}
		if modifiers.Valid {
			e.Modifiers = json.RawMessage(modifiers.String)
		}
		if stateDiff.Valid {
			e.StateDiff = json.RawMessage(stateDiff.String)
		}
		if metadata.Valid {
			e.Metadata = json.RawMessage(metadata.String)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
