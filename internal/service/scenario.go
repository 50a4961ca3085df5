package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/ironhull/wsim/pkg/wsim"
)

// Scenario is the external, JSON-serialized description of a starting
// position: map size, wind, victory condition, and the ship roster for
// both sides. This is the format spec.md §6 names but does not specify a
// loader for; the shape follows the original Python scenario loader
// (wsim_core/serialization/scenario_loader.py).
type Scenario struct {
	Name             string          `json:"name"`
	MapWidth         int             `json:"map_width"`
	MapHeight        int             `json:"map_height"`
	Wind             string          `json:"wind"`
	VictoryCondition string          `json:"victory_condition"`
	TurnLimit        int             `json:"turn_limit,omitempty"`
	Ships            []ScenarioShip  `json:"ships"`
}

// ScenarioShip is one ship's starting configuration.
type ScenarioShip struct {
	ID                       string `json:"id,omitempty"`
	Name                     string `json:"name"`
	Side                     string `json:"side"`
	BowCol                   int    `json:"bow_col"`
	BowRow                   int    `json:"bow_row"`
	Facing                   string `json:"facing"`
	BattleSailSpeed          int    `json:"battle_sail_speed"`
	GunsL                    int    `json:"guns_l"`
	GunsR                    int    `json:"guns_r"`
	CarronadesL              int    `json:"carronades_l"`
	CarronadesR              int    `json:"carronades_r"`
	Hull                     int    `json:"hull"`
	Rigging                  int    `json:"rigging"`
	Crew                     int    `json:"crew"`
	Marines                  int    `json:"marines"`
}

// LoadScenarioFile reads and parses a scenario JSON file from disk. The
// engine itself never does file I/O (SPEC_FULL.md §3); this is the
// collaborator spec.md leaves external.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	return &sc, nil
}

// Build converts the scenario into a set of engine ships keyed by ship
// ID, assigning a uuid to any ship that omits one. The scenario format
// carries only bow and facing, so each ship's Stern is derived here with
// wsim.SternFromBow before the ships reach pkg/wsim.
func (sc *Scenario) Build() (map[string]*wsim.Ship, error) {
	ships := make(map[string]*wsim.Ship, len(sc.Ships))
	for _, s := range sc.Ships {
		id := s.ID
		if id == "" {
			id = uuid.NewString()
		}
		side := wsim.Side(s.Side)
		if side != wsim.P1 && side != wsim.P2 {
			return nil, fmt.Errorf("scenario ship %q: invalid side %q", s.Name, s.Side)
		}
		facing := wsim.Facing(s.Facing)
		bow := wsim.HexCoord{Col: s.BowCol, Row: s.BowRow}
		ships[id] = &wsim.Ship{
			ID:              id,
			Name:            s.Name,
			Side:            side,
			Bow:             bow,
			Stern:           wsim.SternFromBow(bow, facing),
			Facing:          facing,
			BattleSailSpeed: s.BattleSailSpeed,
			GunsL:           s.GunsL,
			GunsR:           s.GunsR,
			CarronadesL:     s.CarronadesL,
			CarronadesR:     s.CarronadesR,
			Hull:            s.Hull,
			Rigging:         s.Rigging,
			Crew:            s.Crew,
			Marines:         s.Marines,
			LoadL:           wsim.Roundshot,
			LoadR:           wsim.Roundshot,
			InitialCrew:     s.Crew,
		}
	}
	return ships, nil
}

// LoadHitTables reads a hit-table JSON file from disk and decodes it
// directly into a wsim.HitTables value. All of HitTables' fields are
// exported plain maps, so no custom marshaling is needed; an empty path
// is the caller's signal to fall back to wsim.DefaultHitTables() instead
// of calling this at all.
func LoadHitTables(path string) (wsim.HitTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wsim.HitTables{}, fmt.Errorf("read hit table file: %w", err)
	}
	var ht wsim.HitTables
	if err := json.Unmarshal(data, &ht); err != nil {
		return wsim.HitTables{}, fmt.Errorf("parse hit table file: %w", err)
	}
	return ht, nil
}

// victoryCondition converts the scenario's string field to the engine
// enum, defaulting to first_struck if unset or unrecognized.
func (sc *Scenario) victoryCondition() wsim.VictoryCondition {
	switch wsim.VictoryCondition(sc.VictoryCondition) {
	case wsim.VictoryScoreAfterTurns:
		return wsim.VictoryScoreAfterTurns
	case wsim.VictoryFirstSideStruckTwoShips:
		return wsim.VictoryFirstSideStruckTwoShips
	default:
		return wsim.VictoryFirstStruck
	}
}
