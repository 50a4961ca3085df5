package wsim

// ReloadResult records one non-struck ship's reload outcome.
type ReloadResult struct {
	ShipID     string
	ReloadedL  bool
	ReloadedR  bool
	NoneNeeded bool
}

// ResolveReload transitions every non-struck ship's empty broadsides to
// ROUNDSHOT. Carronades are not tracked in the load state and are
// untouched (spec.md §4.10, §9). Struck ships are skipped entirely: no
// reload event is produced for them.
func ResolveReload(ships map[string]*Ship, order []string) []ReloadResult {
	results := make([]ReloadResult, 0, len(order))
	for _, id := range order {
		s := ships[id]
		if s.Struck {
			continue
		}
		r := ReloadResult{ShipID: id}
		if s.LoadL == Empty {
			s.LoadL = Roundshot
			r.ReloadedL = true
		}
		if s.LoadR == Empty {
			s.LoadR = Roundshot
			r.ReloadedR = true
		}
		if !r.ReloadedL && !r.ReloadedR {
			r.NoneNeeded = true
		}
		results = append(results, r)
	}
	return results
}
