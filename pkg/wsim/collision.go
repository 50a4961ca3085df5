package wsim

import "sort"

// CollisionResult records the outcome of resolving one hex where two or
// more ships ended up after movement.
type CollisionResult struct {
	Hex              HexCoord
	Involved         []string // all ship ids at this hex, sorted
	Stationary       []string
	Movers           []string
	Occupant         string // the ship that keeps the hex
	Displaced        []string
	ResolutionMethod string
	TiebreakRoll     int  // 0 if no random tiebreak was needed
	FoulingRoll      int
	Fouled           bool
}

const (
	ResolutionStationaryPriority = "stationary_priority"
	ResolutionRandomTiebreak     = "random_tiebreak"
	ResolutionPathologicalMulti  = "pathological_multi_stationary"
)

func occupiedHexes(id string, s Ship) []HexCoord {
	if s.Bow == s.Stern {
		return []HexCoord{s.Bow}
	}
	return []HexCoord{s.Bow, s.Stern}
}

func buildOccupancy(ships map[string]Ship) map[HexCoord][]string {
	occ := make(map[HexCoord][]string)
	ids := sortedKeys(ships)
	for _, id := range ids {
		for _, hex := range occupiedHexes(id, ships[id]) {
			occ[hex] = append(occ[hex], id)
		}
	}
	return occ
}

func sortedKeys(ships map[string]Ship) []string {
	ids := make([]string, 0, len(ships))
	for id := range ships {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveCollisions detects every hex occupied by two or more ships after
// movement and resolves each one per spec.md §4.5. ships is mutated in
// place: displaced ships have their pose restored from preMovement.
func ResolveCollisions(ships map[string]*Ship, preMovement map[string]Ship, rng DiceRoller) ([]CollisionResult, error) {
	if len(ships) < 1 {
		return nil, nil
	}
	snapshot := make(map[string]Ship, len(ships))
	for id, s := range ships {
		snapshot[id] = *s
	}
	postOcc := buildOccupancy(snapshot)
	preOcc := buildOccupancy(preMovement)

	hexes := make([]HexCoord, 0, len(postOcc))
	for hex, ids := range postOcc {
		if len(uniqueSorted(ids)) >= 2 {
			hexes = append(hexes, hex)
		}
	}
	sort.Slice(hexes, func(i, j int) bool {
		if hexes[i].Col != hexes[j].Col {
			return hexes[i].Col < hexes[j].Col
		}
		return hexes[i].Row < hexes[j].Row
	})

	var results []CollisionResult
	for _, hex := range hexes {
		involved := uniqueSorted(postOcc[hex])
		if len(involved) < 2 {
			continue
		}

		wasStationaryBefore := func(id string) bool {
			for _, preHex := range preOcc[hex] {
				if preHex == id {
					return true
				}
			}
			return false
		}

		var stationary, movers []string
		for _, id := range involved {
			if wasStationaryBefore(id) {
				stationary = append(stationary, id)
			} else {
				movers = append(movers, id)
			}
		}

		result := CollisionResult{Hex: hex, Involved: involved, Stationary: stationary, Movers: movers}

		var occupant string
		var displaced []string
		switch {
		case len(stationary) == 1:
			occupant = stationary[0]
			displaced = movers
			result.ResolutionMethod = ResolutionStationaryPriority
		case len(stationary) == 0 && len(movers) >= 2:
			roll := rng.RollD6()
			result.TiebreakRoll = roll
			idx := roll % len(movers)
			occupant = movers[idx]
			for _, id := range movers {
				if id != occupant {
					displaced = append(displaced, id)
				}
			}
			result.ResolutionMethod = ResolutionRandomTiebreak
		case len(stationary) >= 2:
			occupant = stationary[0]
			for _, id := range involved {
				if id != occupant {
					displaced = append(displaced, id)
				}
			}
			result.ResolutionMethod = ResolutionPathologicalMulti
		default:
			return nil, &ExecutionError{Reason: "resolve_collision called with fewer than 2 ships"}
		}
		result.Occupant = occupant
		result.Displaced = displaced

		for _, id := range displaced {
			pre := preMovement[id]
			s := ships[id]
			s.Bow = pre.Bow
			s.Stern = pre.Stern
			s.Facing = pre.Facing
			s.TurnsWithoutBowAdvance = pre.TurnsWithoutBowAdvance
		}

		foulRoll := rng.RollD6()
		result.FoulingRoll = foulRoll
		result.Fouled = foulRoll <= 3
		if result.Fouled {
			for _, id := range involved {
				ships[id].Fouled = true
			}
		}

		results = append(results, result)
	}
	return results, nil
}
