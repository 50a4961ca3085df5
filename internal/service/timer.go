package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ironhull/wsim/internal/repository"
)

// TimerListener listens for Redis keyspace notifications on expired turn
// timer keys and triggers resolve_movement when a submission deadline
// passes. It also polls active games so that a turn resolves immediately
// once both sides are ready, rather than waiting out the full deadline.
type TimerListener struct {
	rdb      *redis.Client
	phaseSvc *PhaseService
	gameRepo repository.GameRepository
}

// NewTimerListener creates a TimerListener.
func NewTimerListener(rdb *redis.Client, phaseSvc *PhaseService, gameRepo repository.GameRepository) *TimerListener {
	return &TimerListener{rdb: rdb, phaseSvc: phaseSvc, gameRepo: gameRepo}
}

// Start begins listening for expired key events and runs the ready-poll
// fallback. Blocks until ctx is cancelled.
func (t *TimerListener) Start(ctx context.Context) {
	go t.listenKeyspace(ctx)
	t.pollReadyGames(ctx)
}

// listenKeyspace subscribes to Redis keyspace notifications for expired
// keys and resolves movement for any game whose timer key expires.
func (t *TimerListener) listenKeyspace(ctx context.Context) {
	pubsub := t.rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	defer pubsub.Close()

	log.Info().Msg("timer listener started, watching for expired turn timers")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			t.handleExpiry(ctx, msg.Payload)
		}
	}
}

// pollReadyGames periodically checks active games for both sides ready
// and resolves movement early when so, instead of waiting for the timer.
func (t *TimerListener) pollReadyGames(ctx context.Context) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	log.Info().Msg("ready-poll fallback started (3s interval)")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("ready-poll fallback stopped")
			return
		case <-ticker.C:
			t.checkReadyGames(ctx)
		}
	}
}

func (t *TimerListener) checkReadyGames(ctx context.Context) {
	games, err := t.gameRepo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list active games for ready poll")
		return
	}
	for _, g := range games {
		if err := t.phaseSvc.ResolveMovementIfBothReady(ctx, g.ID); err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("early resolve-movement failed")
		}
	}
}

// handleExpiry processes an expired key. Only acts on game turn timer keys.
func (t *TimerListener) handleExpiry(ctx context.Context, key string) {
	if !strings.HasPrefix(key, "game:") || !strings.HasSuffix(key, ":timer") {
		return
	}
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return
	}
	gameID := parts[1]

	log.Info().Str("gameId", gameID).Msg("turn timer expired, resolving movement")
	if err := t.phaseSvc.ResolveMovement(ctx, gameID); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("resolve movement failed after timer expiry")
	}
}
