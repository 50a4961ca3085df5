package wsim

// DamageApplication records every track's before/after value for one
// damage application, for the event log's state_diff.
type DamageApplication struct {
	Aim AimPoint

	HullBefore, HullAfter, HullDamage int

	RiggingBefore, RiggingAfter, RiggingDamage int

	MarinesBefore, MarinesAfter, MarinesKilled int
	CrewBefore, CrewAfter, CrewKilled          int

	GunsLBefore, GunsLAfter int
	GunsRBefore, GunsRAfter int
	GunDamageApplied        int

	JustStruck bool
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ApplyDamage mutates s according to hit and aim (spec.md §4.9), then
// evaluates the struck predicate. targetBroadside, if non-nil, directs all
// gun damage at that specific broadside; otherwise gun damage alternates
// L, R, L, R... starting with L until exhausted or both broadsides are
// out of guns.
func ApplyDamage(s *Ship, hit HitResult, aim AimPoint, targetBroadside *Broadside) DamageApplication {
	app := DamageApplication{
		Aim:           aim,
		HullBefore:    s.Hull,
		RiggingBefore: s.Rigging,
		MarinesBefore: s.Marines,
		CrewBefore:    s.Crew,
		GunsLBefore:   s.GunsL,
		GunsRBefore:   s.GunsR,
	}

	switch aim {
	case AimHull:
		app.HullDamage = minInt(hit.Hits, s.Hull)
		s.Hull = clampNonNegative(s.Hull - hit.Hits)

		marinesKilled := minInt(hit.CrewCasualties, s.Marines)
		s.Marines -= marinesKilled
		remaining := hit.CrewCasualties - marinesKilled
		crewKilled := minInt(remaining, s.Crew)
		s.Crew -= crewKilled
		app.MarinesKilled = marinesKilled
		app.CrewKilled = crewKilled

		app.GunDamageApplied = applyGunDamage(s, hit.GunDamage, targetBroadside)

	case AimRigging:
		app.RiggingDamage = minInt(hit.Hits, s.Rigging)
		s.Rigging = clampNonNegative(s.Rigging - hit.Hits)
	}

	app.HullAfter = s.Hull
	app.RiggingAfter = s.Rigging
	app.MarinesAfter = s.Marines
	app.CrewAfter = s.Crew
	app.GunsLAfter = s.GunsL
	app.GunsRAfter = s.GunsR

	if !s.Struck {
		hullJustZero := app.HullBefore > 0 && s.Hull == 0
		noCrew := s.Crew+s.Marines == 0
		if hullJustZero || noCrew {
			s.Struck = true
			app.JustStruck = true
		}
	}

	return app
}

// applyGunDamage debits gunDamage guns from the ship, returning the amount
// actually applied (clamped by available guns on the eligible broadsides).
func applyGunDamage(s *Ship, gunDamage int, targetBroadside *Broadside) int {
	if gunDamage <= 0 {
		return 0
	}
	applied := 0
	if targetBroadside != nil {
		debit := minInt(gunDamage, s.GunsOn(*targetBroadside))
		if *targetBroadside == BroadsideL {
			s.GunsL -= debit
		} else {
			s.GunsR -= debit
		}
		return debit
	}

	nextL := true
	for applied < gunDamage && (s.GunsL > 0 || s.GunsR > 0) {
		if nextL && s.GunsL > 0 {
			s.GunsL--
			applied++
		} else if !nextL && s.GunsR > 0 {
			s.GunsR--
			applied++
		} else if s.GunsL > 0 {
			s.GunsL--
			applied++
		} else if s.GunsR > 0 {
			s.GunsR--
			applied++
		}
		nextL = !nextL
	}
	return applied
}
