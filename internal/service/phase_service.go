package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironhull/wsim/internal/model"
	"github.com/ironhull/wsim/internal/repository"
	"github.com/ironhull/wsim/pkg/wsim"
)

// PhaseService orchestrates the four engine resolution operations
// (resolve_movement, fire_broadside, resolve_reload, advance_turn),
// persisting the updated snapshot and event log after each one and
// broadcasting the change to connected clients.
type PhaseService struct {
	gameRepo    repository.GameRepository
	turnRepo    repository.TurnRepository
	cache       repository.GameCache
	broadcaster Broadcaster
	rng         wsim.DiceRoller

	// gameLocks prevents two resolution requests for the same game from
	// racing: a player clicking "fire" twice, or the timer firing while a
	// manual resolve_movement is already in flight.
	gameLocks sync.Map
}

// NewPhaseService creates a PhaseService. rng is shared across all games;
// pkg/wsim.NewSeededRNG wraps per-call seeds so sharing one roller is safe.
func NewPhaseService(gameRepo repository.GameRepository, turnRepo repository.TurnRepository, cache repository.GameCache, broadcaster Broadcaster, rng wsim.DiceRoller) *PhaseService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if rng == nil {
		rng = wsim.NewUnseededRNG()
	}
	return &PhaseService{gameRepo: gameRepo, turnRepo: turnRepo, cache: cache, broadcaster: broadcaster, rng: rng}
}

func (s *PhaseService) gameLock(gameID string) *sync.Mutex {
	v, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// RecoverActiveGames logs any active game whose live snapshot is missing
// from the cache after a restart. Unlike the durable model.Game row, the
// pkg/wsim.Game snapshot has no independent Postgres copy (spec.md treats
// persistence as an external collaborator's concern, not the engine's),
// so a lost cache entry for an active game cannot be rebuilt — it can
// only be surfaced for manual intervention.
func (s *PhaseService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	for _, g := range games {
		raw, err := s.cache.GetGameState(ctx, g.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("failed to check live state during recovery")
			continue
		}
		if raw == nil {
			log.Warn().Str("gameId", g.ID).Msg("active game has no live snapshot in cache, needs manual attention")
		}
	}
	return nil
}

func (s *PhaseService) loadEngine(ctx context.Context, gameID string) (*wsim.Game, error) {
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

// commit persists the updated snapshot to the cache, appends any new
// event-log entries to Postgres, and broadcasts the change. eventsBefore
// is the event log length before the mutating call, so only the delta is
// persisted and broadcast.
func (s *PhaseService) commit(ctx context.Context, g *wsim.Game, eventsBefore int) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal live state: %w", err)
	}
	if err := s.cache.SetGameState(ctx, g.ID, raw); err != nil {
		return fmt.Errorf("save live state: %w", err)
	}

	newEvents := g.EventLog[eventsBefore:]
	if len(newEvents) > 0 {
		records := make([]model.EventRecord, 0, len(newEvents))
		for _, e := range newEvents {
			rec, err := toEventRecord(g.ID, e)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		if err := s.turnRepo.AppendEvents(ctx, records); err != nil {
			return fmt.Errorf("append events: %w", err)
		}
		for _, e := range newEvents {
			s.broadcaster.BroadcastGameEvent(g.ID, string(e.EventType), e)
		}
	}

	if g.GameEnded {
		winner := string(g.Winner)
		if g.Draw {
			winner = ""
		}
		if err := s.gameRepo.SetFinished(ctx, g.ID, winner); err != nil {
			return fmt.Errorf("set finished: %w", err)
		}
		if err := s.cache.DeleteGameData(ctx, g.ID, []string{"P1", "P2"}); err != nil {
			return fmt.Errorf("clear cache on finish: %w", err)
		}
	}

	return nil
}

func toEventRecord(gameID string, e wsim.EventLogEntry) (model.EventRecord, error) {
	dice, err := json.Marshal(e.DiceRecord)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("marshal dice record: %w", err)
	}
	modifiers, err := json.Marshal(e.Modifiers)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("marshal modifiers: %w", err)
	}
	stateDiff, err := json.Marshal(e.StateDiff)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("marshal state diff: %w", err)
	}
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("marshal metadata: %w", err)
	}
	return model.EventRecord{
		GameID:     gameID,
		TurnNumber: e.TurnNumber,
		Phase:      string(e.Phase),
		EventType:  string(e.EventType),
		Summary:    e.Summary,
		DiceJSON:   dice,
		Modifiers:  modifiers,
		StateDiff:  stateDiff,
		Metadata:   metadata,
	}, nil
}

// ResolveMovement runs resolve_movement for a game's current turn, either
// because both sides marked ready or because the submission timer fired.
func (s *PhaseService) ResolveMovement(ctx context.Context, gameID string) error {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.loadEngine(ctx, gameID)
	if err != nil {
		return err
	}
	before := len(g.EventLog)
	if err := g.ResolveMovement(g.TurnNumber, s.rng); err != nil {
		return fmt.Errorf("resolve movement: %w", err)
	}
	if err := s.commit(ctx, g, before); err != nil {
		return err
	}
	return s.cache.ClearTimer(ctx, gameID)
}

// FireBroadside runs fire_broadside, after checking the caller controls
// the firing ship's side.
func (s *PhaseService) FireBroadside(ctx context.Context, gameID, userID, firingID string, b wsim.Broadside, targetID string, aim wsim.AimPoint) error {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

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

	g, err := s.loadEngine(ctx, gameID)
	if err != nil {
		return err
	}
	ship, ok := g.Ships[firingID]
	if !ok {
		return &wsim.NotFoundError{Kind: "ship", ID: firingID}
	}
	if string(ship.Side) != side {
		return ErrWrongSide
	}

	before := len(g.EventLog)
	if err := g.FireBroadside(g.TurnNumber, firingID, b, targetID, aim, s.rng); err != nil {
		return fmt.Errorf("fire broadside: %w", err)
	}
	return s.commit(ctx, g, before)
}

// ResolveReload runs resolve_reload for the current turn.
func (s *PhaseService) ResolveReload(ctx context.Context, gameID string) error {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.loadEngine(ctx, gameID)
	if err != nil {
		return err
	}
	before := len(g.EventLog)
	if err := g.ResolveReload(g.TurnNumber); err != nil {
		return fmt.Errorf("resolve reload: %w", err)
	}
	return s.commit(ctx, g, before)
}

// AdvanceTurn runs advance_turn, then clears per-turn planning data from
// the cache and arms a fresh submission timer for the new turn.
func (s *PhaseService) AdvanceTurn(ctx context.Context, gameID string, turnDuration time.Duration) error {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.loadEngine(ctx, gameID)
	if err != nil {
		return err
	}
	before := len(g.EventLog)
	turn := g.TurnNumber
	if err := g.AdvanceTurn(turn); err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}
	if err := s.commit(ctx, g, before); err != nil {
		return err
	}
	if g.GameEnded {
		return nil
	}
	if err := s.cache.ClearTurnData(ctx, gameID, []string{"P1", "P2"}); err != nil {
		return fmt.Errorf("clear turn data: %w", err)
	}
	return s.cache.SetTimer(ctx, gameID, time.Now().Add(turnDuration))
}

// ResolveMovementIfBothReady resolves movement early when both sides have
// marked ready, instead of waiting for the submission timer — the
// "resolve the instant everyone's done" behaviour the teacher's
// ResolvePhaseEarly provides for Diplomacy phases.
func (s *PhaseService) ResolveMovementIfBothReady(ctx context.Context, gameID string) error {
	count, err := s.cache.ReadyCount(ctx, gameID)
	if err != nil {
		return fmt.Errorf("ready count: %w", err)
	}
	if count < 2 {
		return nil
	}
	return s.ResolveMovement(ctx, gameID)
}
