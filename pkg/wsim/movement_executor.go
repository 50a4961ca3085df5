package wsim

// MovementOutcome reports, per ship id, whether that ship's bow hex
// changed at any point during movement resolution. Drift (§4.6) consumes
// this directly.
type MovementOutcome struct {
	BowAdvanced map[string]bool
}

// ExecuteMovement runs every ship's parsed action list simultaneously:
// each ship advances at most one action per pass over order, so no ship
// completes its whole sequence before another has taken its first step.
// Ships are mutated in place. Collisions are NOT detected here — per
// spec.md §4.4 they are evaluated once, after every ship has finished
// every action, from the end-of-turn occupancy snapshot.
//
// order fixes the iteration order used for stepping (this engine passes
// ship ids sorted lexically, see game.go). The later collision pass does
// not depend on it: ResolveCollisions orders its d6 draws by hex and ship
// id on its own.
func ExecuteMovement(ships map[string]*Ship, parsed map[string][]Action, order []string, width, height int) (MovementOutcome, error) {
	outcome := MovementOutcome{BowAdvanced: make(map[string]bool, len(order))}

	remaining := make(map[string][]Action, len(order))
	forwardSoFar := make(map[string]int, len(order))
	for _, id := range order {
		remaining[id] = append([]Action(nil), parsed[id]...)
		outcome.BowAdvanced[id] = false
	}

	for {
		anyLeft := false
		for _, id := range order {
			queue := remaining[id]
			if len(queue) == 0 {
				continue
			}
			anyLeft = true
			action := queue[0]
			remaining[id] = queue[1:]

			ship := ships[id]
			if ship == nil {
				return outcome, &ExecutionError{Reason: "movement references unknown ship " + id}
			}

			switch action.Type {
			case NoMovement:
				// no-op
			case TurnLeft:
				ship.Facing = RotateLeft(ship.Facing)
				ship.Stern = SternFromBow(ship.Bow, ship.Facing)
			case TurnRight:
				ship.Facing = RotateRight(ship.Facing)
				ship.Stern = SternFromBow(ship.Bow, ship.Facing)
			case MoveForward:
				for step := 0; step < action.N; step++ {
					forwardSoFar[id]++
					if forwardSoFar[id] > ship.BattleSailSpeed {
						return outcome, &ExecutionError{Reason: "ship " + id + " exceeded battle sail speed during execution"}
					}
					next := Adjacent(ship.Bow, ship.Facing)
					if !InBounds(next, width, height) {
						return outcome, &ExecutionError{Reason: "ship " + id + " moved out of bounds"}
					}
					ship.Bow = next
					ship.Stern = SternFromBow(ship.Bow, ship.Facing)
					outcome.BowAdvanced[id] = true
				}
			}
		}
		if !anyLeft {
			break
		}
	}

	return outcome, nil
}
