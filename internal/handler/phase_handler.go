package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ironhull/wsim/internal/auth"
	"github.com/ironhull/wsim/internal/repository"
	"github.com/ironhull/wsim/internal/service"
	"github.com/ironhull/wsim/pkg/wsim"
)

// defaultTurnDuration arms the next submission timer after advance_turn
// when the handler has no per-game override to pass along.
const defaultTurnDuration = 2 * time.Minute

// PhaseHandler exposes the four engine resolution operations and the
// durable event log for a game.
type PhaseHandler struct {
	phaseSvc *service.PhaseService
	turnRepo repository.TurnRepository
	hub      *Hub
}

// NewPhaseHandler creates a PhaseHandler.
func NewPhaseHandler(phaseSvc *service.PhaseService, turnRepo repository.TurnRepository, hub *Hub) *PhaseHandler {
	return &PhaseHandler{phaseSvc: phaseSvc, turnRepo: turnRepo, hub: hub}
}

// ResolveMovement handles POST /api/v1/games/{id}/resolve-movement
func (h *PhaseHandler) ResolveMovement(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if err := h.phaseSvc.ResolveMovement(r.Context(), gameID); err != nil {
		writeError(w, statusForPhaseErr(err), err.Error())
		return
	}
	h.hub.BroadcastToGame(gameID, WSEvent{Type: EventMovementResolved, GameID: gameID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

// FireBroadside handles POST /api/v1/games/{id}/fire-broadside
func (h *PhaseHandler) FireBroadside(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		FiringShipID string         `json:"firing_ship_id"`
		Broadside    wsim.Broadside `json:"broadside"`
		TargetShipID string         `json:"target_ship_id"`
		Aim          wsim.AimPoint  `json:"aim"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.phaseSvc.FireBroadside(r.Context(), gameID, userID, req.FiringShipID, req.Broadside, req.TargetShipID, req.Aim); err != nil {
		writeError(w, statusForPhaseErr(err), err.Error())
		return
	}
	h.hub.BroadcastToGame(gameID, WSEvent{Type: EventBroadsideFired, GameID: gameID, Data: map[string]string{
		"firing_ship_id": req.FiringShipID,
	}})
	writeJSON(w, http.StatusOK, map[string]string{"status": "fired"})
}

// ResolveReload handles POST /api/v1/games/{id}/resolve-reload
func (h *PhaseHandler) ResolveReload(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if err := h.phaseSvc.ResolveReload(r.Context(), gameID); err != nil {
		writeError(w, statusForPhaseErr(err), err.Error())
		return
	}
	h.hub.BroadcastToGame(gameID, WSEvent{Type: EventReloadResolved, GameID: gameID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

// AdvanceTurn handles POST /api/v1/games/{id}/advance-turn
func (h *PhaseHandler) AdvanceTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	duration := defaultTurnDuration
	if raw := r.URL.Query().Get("turn_duration_seconds"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			duration = time.Duration(secs) * time.Second
		}
	}

	if err := h.phaseSvc.AdvanceTurn(r.Context(), gameID, duration); err != nil {
		writeError(w, statusForPhaseErr(err), err.Error())
		return
	}
	h.hub.BroadcastToGame(gameID, WSEvent{Type: EventTurnAdvanced, GameID: gameID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "advanced"})
}

// ListEvents handles GET /api/v1/games/{id}/events — the durable,
// append-only record of every resolution step, for replay or audit
// (spec.md §4.12, §8 invariant 4). An optional turn query param narrows
// the result to a single turn number.
func (h *PhaseHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	if raw := r.URL.Query().Get("turn"); raw != "" {
		turn, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid turn parameter")
			return
		}
		events, err := h.turnRepo.EventsByTurn(r.Context(), gameID, turn)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if events == nil {
			writeJSON(w, http.StatusOK, []struct{}{})
			return
		}
		writeJSON(w, http.StatusOK, events)
		return
	}

	events, err := h.turnRepo.EventsByGame(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func statusForPhaseErr(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrGameNotActive):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotInGame), errors.Is(err, service.ErrWrongSide):
		return http.StatusForbidden
	default:
		var notFound *wsim.NotFoundError
		var validation *wsim.ValidationError
		if errors.As(err, &notFound) {
			return http.StatusNotFound
		}
		if errors.As(err, &validation) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	}
}
