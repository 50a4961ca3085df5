package wsim

// DriftResult records the drift (or attempted drift) outcome for one ship.
type DriftResult struct {
	ShipID  string
	Drifted bool
	Blocked bool
	NewBow  HexCoord
}

// ApplyDrift updates every ship's turns-without-bow-advance counter and
// applies mandatory downwind displacement to any ship that has gone two
// consecutive turns without its bow moving. Ships whose displacement would
// leave the map are left in place with the counter unchanged and a
// drift_blocked outcome. Facing is never changed by drift.
func ApplyDrift(ships map[string]*Ship, order []string, bowAdvanced map[string]bool, wind WindDirection, width, height int) []DriftResult {
	for _, id := range order {
		s := ships[id]
		if bowAdvanced[id] {
			s.TurnsWithoutBowAdvance = 0
		} else {
			s.TurnsWithoutBowAdvance++
		}
	}

	downwind := Opposite(wind)
	var results []DriftResult
	for _, id := range order {
		s := ships[id]
		if s.TurnsWithoutBowAdvance < 2 {
			continue
		}
		newBow := Adjacent(s.Bow, downwind)
		newStern := Adjacent(s.Stern, downwind)
		if !InBounds(newBow, width, height) || !InBounds(newStern, width, height) {
			results = append(results, DriftResult{ShipID: id, Blocked: true})
			continue
		}
		s.Bow = newBow
		s.Stern = newStern
		s.TurnsWithoutBowAdvance = 0
		results = append(results, DriftResult{ShipID: id, Drifted: true, NewBow: newBow})
	}
	return results
}
