package wsim

// EventLogEntry is one append-only record of the game's event log
// (spec.md §3, §4.12). Entries are never reordered or removed.
type EventLogEntry struct {
	TurnNumber int
	Phase      GamePhase
	EventType  string
	Summary    string
	DiceRecord []int
	Modifiers  map[string]int
	StateDiff  map[string]interface{}
	Metadata   map[string]interface{}
}

// Event type tags. Free-form per spec.md §3, but fixed here so every
// collaborator (and every test) agrees on the vocabulary.
const (
	EventOrdersSubmitted = "orders_submitted"
	EventMovement        = "movement"
	EventCollision       = "collision"
	EventFouling         = "fouling_check"
	EventDrift           = "drift"
	EventDamage          = "damage"
	EventReload          = "reload"
	EventGameEnd         = "game_end"
	EventTurnAdvance     = "turn_advance"
)

// appendEvent appends entry to the game's log, stamping turn number and
// phase from the game's current state at the moment of emission.
func (g *Game) appendEvent(eventType, summary string) *EventLogEntry {
	return g.appendEventPhase(g.Phase, eventType, summary)
}

// appendEventPhase is appendEvent with an explicit phase tag, for events
// emitted during a transient phase (MOVEMENT) that the Game itself never
// sits in between calls.
func (g *Game) appendEventPhase(phase GamePhase, eventType, summary string) *EventLogEntry {
	entry := EventLogEntry{
		TurnNumber: g.TurnNumber,
		Phase:      phase,
		EventType:  eventType,
		Summary:    summary,
	}
	g.EventLog = append(g.EventLog, entry)
	return &g.EventLog[len(g.EventLog)-1]
}
