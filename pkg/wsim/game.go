package wsim

import "sort"

// Game is one turn-resolution engine instance: the full snapshot described
// in spec.md §3, plus the configuration a scenario fixes for its lifetime
// (map size, wind, hit tables, victory condition). External collaborators
// own persistence and concurrency; the engine only ever touches one Game
// at a time, synchronously, per spec.md §5.
type Game struct {
	ID         string
	TurnNumber int
	Phase      GamePhase

	MapWidth  int
	MapHeight int
	Wind      WindDirection

	Ships map[string]*Ship

	P1Orders *TurnOrders
	P2Orders *TurnOrders
	ReadyP1  bool
	ReadyP2  bool

	EventLog []EventLogEntry

	TurnLimit        int
	TurnLimitSet     bool
	VictoryCondition VictoryCondition
	GameEnded        bool
	Winner           Side
	Draw             bool

	HitTables HitTables
	MaxRange  int
}

// NewGame constructs a fresh Game at turn 1, PLANNING, from a scenario's
// already-loaded ships. Ships must have Stern already derived from Bow and
// Facing (the scenario loader's responsibility, not the engine's).
func NewGame(id string, width, height int, wind WindDirection, ships map[string]*Ship, turnLimit int, turnLimitSet bool, vc VictoryCondition, tables HitTables, maxRange int) *Game {
	return &Game{
		ID:               id,
		TurnNumber:       1,
		Phase:            GamePlanning,
		MapWidth:         width,
		MapHeight:        height,
		Wind:             wind,
		Ships:            ships,
		TurnLimit:        turnLimit,
		TurnLimitSet:     turnLimitSet,
		VictoryCondition: vc,
		HitTables:        tables,
		MaxRange:         maxRange,
	}
}

// sortedShipIDs returns every ship id in sorted order: the stable stepping
// and tie-break order required by spec.md §5.
func (g *Game) sortedShipIDs() []string {
	ids := make([]string, 0, len(g.Ships))
	for id := range g.Ships {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Game) shipIDsForSide(side Side) []string {
	var ids []string
	for _, id := range g.sortedShipIDs() {
		if g.Ships[id].Side == side {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *Game) snapshotShips() map[string]Ship {
	out := make(map[string]Ship, len(g.Ships))
	for id, s := range g.Ships {
		out[id] = *s
	}
	return out
}

func sameShipSet(orders []ShipOrders, expected []string) bool {
	if len(orders) != len(expected) {
		return false
	}
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		seen[o.ShipID] = true
	}
	for _, id := range expected {
		if !seen[id] {
			return false
		}
	}
	return len(seen) == len(expected)
}

// SubmitOrders implements submit_orders (spec.md §6).
func (g *Game) SubmitOrders(turn int, side Side, orders []ShipOrders) error {
	if g.GameEnded {
		return &ValidationError{Reason: "game has ended"}
	}
	if g.Phase != GamePlanning {
		return &ValidationError{Reason: "orders may only be submitted during PLANNING"}
	}
	if turn != g.TurnNumber {
		return &ValidationError{Reason: "turn does not match current turn number"}
	}
	expected := g.shipIDsForSide(side)
	if !sameShipSet(orders, expected) {
		return &ValidationError{Reason: "orders must cover exactly this side's ships"}
	}
	for _, o := range orders {
		if _, err := ParseAndValidateMovement(o.Notation, g.Ships[o.ShipID].BattleSailSpeed); err != nil {
			return err
		}
	}

	to := &TurnOrders{TurnNumber: turn, Side: side, Orders: orders, Submitted: true}
	if side == P1 {
		g.P1Orders = to
	} else {
		g.P2Orders = to
	}
	g.appendEvent(EventOrdersSubmitted, "orders submitted for "+string(side))
	return nil
}

// MarkReady implements mark_ready (spec.md §6): ready metadata only, no
// snapshot mutation beyond it.
func (g *Game) MarkReady(turn int, side Side) (bool, error) {
	if g.Phase != GamePlanning {
		return false, &ValidationError{Reason: "mark_ready is only valid during PLANNING"}
	}
	if turn != g.TurnNumber {
		return false, &ValidationError{Reason: "turn does not match current turn number"}
	}
	orders := g.P1Orders
	if side == P2 {
		orders = g.P2Orders
	}
	if orders == nil || !orders.Submitted {
		return false, &ValidationError{Reason: "side has not submitted orders"}
	}
	if side == P1 {
		g.ReadyP1 = true
	} else {
		g.ReadyP2 = true
	}
	return g.ReadyP1 && g.ReadyP2, nil
}

func (g *Game) buildParsedActions() (map[string][]Action, error) {
	parsed := make(map[string][]Action, len(g.Ships))
	for _, to := range []*TurnOrders{g.P1Orders, g.P2Orders} {
		for _, o := range to.Orders {
			ship, ok := g.Ships[o.ShipID]
			if !ok {
				return nil, &NotFoundError{Kind: "ship", ID: o.ShipID}
			}
			actions, err := ParseAndValidateMovement(o.Notation, ship.BattleSailSpeed)
			if err != nil {
				return nil, err
			}
			parsed[o.ShipID] = actions
		}
	}
	return parsed, nil
}

// ResolveMovement implements resolve_movement (spec.md §6, §4.4-§4.6). It
// runs against a cloned ship set and only commits to g.Ships once every
// step has succeeded, satisfying the atomicity requirement for
// ExecutionError in spec.md §7.
func (g *Game) ResolveMovement(turn int, rng DiceRoller) error {
	if g.Phase != GamePlanning {
		return &ValidationError{Reason: "resolve_movement requires phase PLANNING"}
	}
	if turn != g.TurnNumber {
		return &ValidationError{Reason: "turn does not match current turn number"}
	}
	if g.P1Orders == nil || !g.P1Orders.Submitted || g.P2Orders == nil || !g.P2Orders.Submitted {
		return &ValidationError{Reason: "both sides must submit orders before resolve_movement"}
	}

	parsed, err := g.buildParsedActions()
	if err != nil {
		return err
	}

	order := g.sortedShipIDs()
	preMovement := g.snapshotShips()

	working := make(map[string]*Ship, len(g.Ships))
	for id, s := range preMovement {
		c := s
		working[id] = &c
	}

	outcome, err := ExecuteMovement(working, parsed, order, g.MapWidth, g.MapHeight)
	if err != nil {
		return err
	}

	// Every event appended for the rest of this call belongs to the
	// transient MOVEMENT phase: no Game snapshot is ever observed there,
	// it exists only to tag events emitted while resolving movement.
	for _, id := range order {
		if outcome.BowAdvanced[id] {
			g.appendEventPhase(GameMovement, EventMovement, "ship "+id+" advanced")
		} else {
			g.appendEventPhase(GameMovement, EventMovement, "ship "+id+" held position or turned only")
		}
	}

	collisions, err := ResolveCollisions(working, preMovement, rng)
	if err != nil {
		return err
	}
	for _, c := range collisions {
		entry := g.appendEventPhase(GameMovement, EventCollision, "collision at hex resolved via "+c.ResolutionMethod)
		entry.Modifiers = map[string]int{"tiebreak_roll": c.TiebreakRoll}
		entry.StateDiff = map[string]interface{}{
			"hex": c.Hex, "occupant": c.Occupant, "displaced": c.Displaced,
		}
		if c.TiebreakRoll != 0 {
			entry.DiceRecord = append(entry.DiceRecord, c.TiebreakRoll)
		}
		foulEntry := g.appendEventPhase(GameMovement, EventFouling, "fouling check")
		foulEntry.DiceRecord = append(foulEntry.DiceRecord, c.FoulingRoll)
		foulEntry.Modifiers = map[string]int{"fouled": boolToInt(c.Fouled)}
	}

	drifts := ApplyDrift(working, order, outcome.BowAdvanced, g.Wind, g.MapWidth, g.MapHeight)
	for _, d := range drifts {
		if d.Drifted {
			g.appendEventPhase(GameMovement, EventDrift, "ship "+d.ShipID+" drifted downwind")
		} else if d.Blocked {
			g.appendEventPhase(GameMovement, EventDrift, "ship "+d.ShipID+" drift blocked by map edge")
		}
	}

	for id, s := range working {
		g.Ships[id] = s
	}
	g.Phase = GameCombat
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// FireBroadside implements fire_broadside (spec.md §6, §4.7-§4.9, §4.11).
func (g *Game) FireBroadside(turn int, firingID string, b Broadside, targetID string, aim AimPoint, rng DiceRoller) error {
	if g.Phase != GameCombat {
		return &ValidationError{Reason: "fire_broadside requires phase COMBAT"}
	}
	if turn != g.TurnNumber {
		return &ValidationError{Reason: "turn does not match current turn number"}
	}
	firing, ok := g.Ships[firingID]
	if !ok {
		return &NotFoundError{Kind: "ship", ID: firingID}
	}
	target, ok := g.Ships[targetID]
	if !ok {
		return &NotFoundError{Kind: "ship", ID: targetID}
	}
	if !firing.CanFireBroadside(b) {
		return &ValidationError{Reason: "ship " + firingID + " cannot fire broadside " + string(b)}
	}
	legal, err := IsLegalTarget(g.snapshotShips(), firingID, targetID, b, g.MaxRange)
	if err != nil {
		return err
	}
	if !legal {
		return &ValidationError{Reason: "ship " + targetID + " is not a legal target"}
	}

	hit := ResolveBroadsideFire(*firing, *target, b, aim, g.HitTables, rng)
	firing.setLoad(b, Empty)

	// fire_broadside carries no separate "aim at this broadside's guns"
	// parameter (spec.md §6), so gun damage always falls back to the
	// round-robin distribution in ApplyDamage.
	app := ApplyDamage(target, hit, aim, nil)

	entry := g.appendEvent(EventDamage, "ship "+firingID+" fired "+string(b)+" at "+targetID)
	entry.DiceRecord = append([]int(nil), hit.DieRolls...)
	entry.Modifiers = hit.Modifiers
	entry.StateDiff = map[string]interface{}{
		"hull_before": app.HullBefore, "hull_after": app.HullAfter,
		"rigging_before": app.RiggingBefore, "rigging_after": app.RiggingAfter,
		"crew_killed": app.CrewKilled, "marines_killed": app.MarinesKilled,
		"gun_damage_applied": app.GunDamageApplied,
	}
	entry.Metadata = map[string]interface{}{"range": hit.Range, "bracket": hit.Bracket}

	g.checkVictoryAndRecord()
	return nil
}

func (g *Game) checkVictoryAndRecord() {
	if g.GameEnded {
		return
	}
	result := CheckVictory(g.snapshotShips(), g.sortedShipIDs(), g.VictoryCondition, g.TurnNumber, g.TurnLimit, g.TurnLimitSet)
	if !result.Ended {
		return
	}
	g.GameEnded = true
	g.Winner = result.Winner
	g.Draw = result.Draw
	entry := g.appendEvent(EventGameEnd, result.Reason)
	entry.Metadata = map[string]interface{}{"winner": string(result.Winner), "draw": result.Draw}
}

// GetBroadsideArc wraps GetBroadsideArc over the current snapshot
// (spec.md §6: ship exists is the only precondition, valid in any phase).
func (g *Game) GetBroadsideArc(shipID string, b Broadside) (BroadsideArcQuery, error) {
	return GetBroadsideArc(g.snapshotShips(), shipID, b, g.MaxRange)
}

// ResolveReload implements resolve_reload (spec.md §6, §4.10-§4.11).
func (g *Game) ResolveReload(turn int) error {
	if g.Phase != GameCombat {
		return &ValidationError{Reason: "resolve_reload requires phase COMBAT"}
	}
	if turn != g.TurnNumber {
		return &ValidationError{Reason: "turn does not match current turn number"}
	}

	order := g.sortedShipIDs()
	results := ResolveReload(g.Ships, order)
	for _, r := range results {
		switch {
		case r.NoneNeeded:
			g.appendEvent(EventReload, "ship "+r.ShipID+" needed no reload")
		default:
			g.appendEvent(EventReload, "ship "+r.ShipID+" reloaded")
		}
	}
	g.Phase = GameReload
	g.checkVictoryAndRecord()
	return nil
}

// AdvanceTurn implements advance_turn (spec.md §6, §4.12).
func (g *Game) AdvanceTurn(turn int) error {
	if g.Phase != GameReload {
		return &ValidationError{Reason: "advance_turn requires phase RELOAD"}
	}
	if turn != g.TurnNumber {
		return &ValidationError{Reason: "turn does not match current turn number"}
	}
	if g.GameEnded {
		return &ValidationError{Reason: "game has ended"}
	}

	g.TurnNumber++
	g.P1Orders = nil
	g.P2Orders = nil
	g.ReadyP1 = false
	g.ReadyP2 = false
	g.Phase = GamePlanning
	g.appendEvent(EventTurnAdvance, "turn advanced")
	return nil
}
