package wsim

// RangeBracket classifies hex distance for the purpose of indexing the
// hit tables. Only short-range hits produce gun damage.
type RangeBracket string

const (
	RangeShort  RangeBracket = "short"
	RangeMedium RangeBracket = "medium"
	RangeLong   RangeBracket = "long"
)

// RangeBracketDef is one bracket's inclusive hex-distance bounds.
type RangeBracketDef struct {
	Min, Max int
}

// RangeBrackets bins a hex distance into short, medium, or long.
type RangeBrackets struct {
	Short  RangeBracketDef
	Medium RangeBracketDef
	Long   RangeBracketDef
}

// Bracket classifies distance. Anything past Medium.Max falls into Long,
// regardless of Long.Max (spec.md's illustrative long bound is 999, i.e.
// effectively unbounded).
func (rb RangeBrackets) Bracket(distance int) RangeBracket {
	if distance >= rb.Short.Min && distance <= rb.Short.Max {
		return RangeShort
	}
	if distance >= rb.Medium.Min && distance <= rb.Medium.Max {
		return RangeMedium
	}
	return RangeLong
}

// AimTable maps range bracket and die face (1..6) to a hit count.
type AimTable map[RangeBracket]map[int]int

// HitTables holds the full data-driven combat table set, loaded once by
// the collaborator and handed to the engine as a plain value (see
// SPEC_FULL.md §3: the engine itself never reads the hit-table file).
type HitTables struct {
	Hull                AimTable
	Rigging             AimTable
	RangeBrackets       RangeBrackets
	CrewCasualties      map[int]int // die face -> casualties
	GunDamageShortRange map[int]int // die face -> gun damage, short range only
}

// DefaultHitTables returns a reasonable built-in table set, used when no
// HIT_TABLE_PATH is configured. The numbers are illustrative (spec.md §6
// gives the shape, not the values) but internally consistent: higher die
// faces never hit less than lower ones within a bracket, and short range
// is never weaker than long range.
func DefaultHitTables() HitTables {
	return HitTables{
		Hull: AimTable{
			RangeShort:  {1: 0, 2: 0, 3: 1, 4: 1, 5: 2, 6: 2},
			RangeMedium: {1: 0, 2: 0, 3: 0, 4: 1, 5: 1, 6: 2},
			RangeLong:   {1: 0, 2: 0, 3: 0, 4: 0, 5: 1, 6: 1},
		},
		Rigging: AimTable{
			RangeShort:  {1: 0, 2: 1, 3: 1, 4: 2, 5: 2, 6: 3},
			RangeMedium: {1: 0, 2: 0, 3: 1, 4: 1, 5: 2, 6: 2},
			RangeLong:   {1: 0, 2: 0, 3: 0, 4: 1, 5: 1, 6: 1},
		},
		RangeBrackets: RangeBrackets{
			Short:  RangeBracketDef{Min: 0, Max: 2},
			Medium: RangeBracketDef{Min: 3, Max: 5},
			Long:   RangeBracketDef{Min: 6, Max: 999},
		},
		CrewCasualties:      map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 2, 6: 3},
		GunDamageShortRange: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 1, 6: 1},
	}
}

func (t AimTable) lookup(bracket RangeBracket, face int) int {
	byFace, ok := t[bracket]
	if !ok {
		return 0
	}
	return byFace[face]
}

// HitResult is the outcome of one broadside volley (spec.md §4.8).
type HitResult struct {
	Hits           int
	CrewCasualties int
	GunDamage      int
	Range          int
	Bracket        RangeBracket
	DieRolls       []int // every raw d6 draw, in the order produced
	Modifiers      map[string]int
}

func clampRoll(v int) int {
	if v < 1 {
		return 1
	}
	if v > 6 {
		return 6
	}
	return v
}

// crewQualityModifier implements spec.md §4.8 step 4.
func crewQualityModifier(crew, initialCrew int) int {
	if initialCrew <= 0 {
		return -2
	}
	ratio := float64(crew) / float64(initialCrew)
	switch {
	case ratio >= 0.75:
		return 0
	case ratio >= 0.50:
		return -1
	default:
		return -2
	}
}

// ResolveBroadsideFire resolves one firing ship's broadside against one
// target (spec.md §4.8). Callers must already have checked
// firing.CanFireBroadside(b) and that target is a legal target (spec.md
// §4.7) — this function performs no legality checks of its own, only the
// dice-table resolution.
func ResolveBroadsideFire(firing, target Ship, b Broadside, aim AimPoint, tables HitTables, rng DiceRoller) HitResult {
	distance := Distance(firing.Bow, target.Bow)
	bracket := tables.RangeBrackets.Bracket(distance)
	nGuns := firing.GunsOn(b)
	mod := crewQualityModifier(firing.Crew, firing.InitialCrew)

	aimTable := tables.Hull
	if aim == AimRigging {
		aimTable = tables.Rigging
	}

	var dieRolls []int
	hits := 0
	for i := 0; i < nGuns; i++ {
		raw := rng.RollD6()
		dieRolls = append(dieRolls, raw)
		modified := clampRoll(raw + mod)
		hits += aimTable.lookup(bracket, modified)
	}

	crewCasualties := 0
	gunDamage := 0
	if aim == AimHull && hits > 0 {
		for i := 0; i < hits; i++ {
			raw := rng.RollD6()
			dieRolls = append(dieRolls, raw)
			crewCasualties += tables.CrewCasualties[raw]
		}
		if bracket == RangeShort {
			for i := 0; i < hits; i++ {
				raw := rng.RollD6()
				dieRolls = append(dieRolls, raw)
				gunDamage += tables.GunDamageShortRange[raw]
			}
		}
	}

	return HitResult{
		Hits:           hits,
		CrewCasualties: crewCasualties,
		GunDamage:      gunDamage,
		Range:          distance,
		Bracket:        bracket,
		DieRolls:       dieRolls,
		Modifiers:      map[string]int{"crew_quality": mod},
	}
}
