package wsim

// VictoryCondition selects which of the three predicates governs a game.
type VictoryCondition string

const (
	VictoryFirstStruck            VictoryCondition = "first_struck"
	VictoryScoreAfterTurns        VictoryCondition = "score_after_turns"
	VictoryFirstSideStruckTwoShips VictoryCondition = "first_side_struck_two_ships"
)

// VictoryResult is the outcome of one victory check (spec.md §4.11).
type VictoryResult struct {
	Ended  bool
	Winner Side
	Draw   bool
	Reason string
}

// CheckVictory evaluates the game's configured victory predicate over the
// current ship snapshot. order must be a stable (sorted) ship id order:
// first_struck and first_side_struck_two_ships are both iteration-order
// dependent by design (spec.md §9), so the order passed here is part of
// the contract, not an implementation detail.
func CheckVictory(ships map[string]Ship, order []string, condition VictoryCondition, turnNumber int, turnLimit int, turnLimitSet bool) VictoryResult {
	switch condition {
	case VictoryFirstStruck:
		return checkFirstStruck(ships, order)
	case VictoryScoreAfterTurns:
		return checkScoreAfterTurns(ships, order, turnNumber, turnLimit, turnLimitSet)
	case VictoryFirstSideStruckTwoShips:
		return checkFirstSideStruckTwoShips(ships, order)
	default:
		return VictoryResult{}
	}
}

func checkFirstStruck(ships map[string]Ship, order []string) VictoryResult {
	for _, id := range order {
		s := ships[id]
		if s.Struck {
			return VictoryResult{
				Ended:  true,
				Winner: s.Side.Opponent(),
				Reason: "ship " + id + " struck",
			}
		}
	}
	return VictoryResult{}
}

func checkScoreAfterTurns(ships map[string]Ship, order []string, turnNumber, turnLimit int, turnLimitSet bool) VictoryResult {
	if !turnLimitSet || turnNumber < turnLimit {
		return VictoryResult{}
	}
	var p1Hull, p2Hull int
	for _, id := range order {
		s := ships[id]
		if s.Side == P1 {
			p1Hull += s.Hull
		} else {
			p2Hull += s.Hull
		}
	}
	switch {
	case p1Hull > p2Hull:
		return VictoryResult{Ended: true, Winner: P1, Reason: "higher total hull at turn limit"}
	case p2Hull > p1Hull:
		return VictoryResult{Ended: true, Winner: P2, Reason: "higher total hull at turn limit"}
	default:
		return VictoryResult{Ended: true, Draw: true, Reason: "equal total hull at turn limit"}
	}
}

func checkFirstSideStruckTwoShips(ships map[string]Ship, order []string) VictoryResult {
	counts := map[Side]int{}
	for _, id := range order {
		s := ships[id]
		if s.Struck {
			counts[s.Side]++
		}
	}
	// P1 is checked first: if both sides qualify simultaneously, P1's
	// count is the one that "loses" the check (spec.md §4.11, §9).
	if counts[P1] >= 2 {
		return VictoryResult{Ended: true, Winner: P2, Reason: "P1 has two or more struck ships"}
	}
	if counts[P2] >= 2 {
		return VictoryResult{Ended: true, Winner: P1, Reason: "P2 has two or more struck ships"}
	}
	return VictoryResult{}
}
