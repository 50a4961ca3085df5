package wsim

import "sort"

// DefaultMaxRange is the broadside arc's default reach in hexes.
const DefaultMaxRange = 10

// primaryDirections selects the three primary facings for a broadside arc:
// the direction perpendicular to the ship's facing (90 degrees, i.e. two
// steps around the 8-direction cycle, toward the given broadside) and its
// two neighbours in the cycle.
func primaryDirections(facing Facing, b Broadside) [3]Facing {
	perp := facing
	if b == BroadsideR {
		perp = RotateRight(RotateRight(facing))
	} else {
		perp = RotateLeft(RotateLeft(facing))
	}
	return [3]Facing{RotateLeft(perp), perp, RotateRight(perp)}
}

// ArcHexes returns the set of hexes in a ship's broadside arc: a cone
// extending from the bow out to maxRange hexes, perpendicular to facing,
// on the broadside's side. The bow hex itself is never included.
func ArcHexes(bow HexCoord, facing Facing, b Broadside, maxRange int) map[HexCoord]bool {
	set := make(map[HexCoord]bool)
	for _, primary := range primaryDirections(facing, b) {
		cur := bow
		for step := 1; step <= maxRange; step++ {
			cur = Adjacent(cur, primary)
			set[cur] = true
			if step >= 2 {
				set[Adjacent(cur, RotateLeft(primary))] = true
				set[Adjacent(cur, RotateRight(primary))] = true
			}
		}
	}
	delete(set, bow)
	return set
}

// ShipsInArc returns the ids of ships (other than self) with their bow or
// stern hex inside arc, sorted for determinism.
func ShipsInArc(ships map[string]Ship, selfID string, arc map[HexCoord]bool) []string {
	var ids []string
	for id, s := range ships {
		if id == selfID {
			continue
		}
		if arc[s.Bow] || arc[s.Stern] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// BroadsideArcQuery is the result of get_broadside_arc (spec.md §6).
type BroadsideArcQuery struct {
	Arc              map[HexCoord]bool
	ShipsInArc       []string
	LegalTargets     []string
	ClosestDistance  int // -1 if no enemy ship is in arc
}

// GetBroadsideArc answers the arc/targeting query for firingID's broadside
// b: the arc hex set, every ship (of either side) in that arc, and the
// legal target subset per the closest-target rule (spec.md §4.7) — enemy,
// non-struck ships in arc at the minimum bow-to-bow distance.
func GetBroadsideArc(ships map[string]Ship, firingID string, b Broadside, maxRange int) (BroadsideArcQuery, error) {
	firing, ok := ships[firingID]
	if !ok {
		return BroadsideArcQuery{}, &NotFoundError{Kind: "ship", ID: firingID}
	}

	arc := ArcHexes(firing.Bow, firing.Facing, b, maxRange)
	inArc := ShipsInArc(ships, firingID, arc)

	closest := -1
	var atClosest []string
	for _, id := range inArc {
		target := ships[id]
		if target.Side == firing.Side || target.Struck {
			continue
		}
		d := Distance(firing.Bow, target.Bow)
		switch {
		case closest == -1 || d < closest:
			closest = d
			atClosest = []string{id}
		case d == closest:
			atClosest = append(atClosest, id)
		}
	}
	sort.Strings(atClosest)

	return BroadsideArcQuery{
		Arc:             arc,
		ShipsInArc:      inArc,
		LegalTargets:    atClosest,
		ClosestDistance: closest,
	}, nil
}

// IsLegalTarget reports whether targetID is among firingID's legal targets
// for broadside b (the closest-target rule).
func IsLegalTarget(ships map[string]Ship, firingID, targetID string, b Broadside, maxRange int) (bool, error) {
	q, err := GetBroadsideArc(ships, firingID, b, maxRange)
	if err != nil {
		return false, err
	}
	for _, id := range q.LegalTargets {
		if id == targetID {
			return true, nil
		}
	}
	return false, nil
}
