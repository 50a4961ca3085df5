package wsim

// LoadState describes whether a broadside has a shot loaded.
type LoadState string

const (
	Empty     LoadState = "EMPTY"
	Roundshot LoadState = "ROUNDSHOT"
)

// Broadside identifies one side of a ship's guns.
type Broadside string

const (
	BroadsideL Broadside = "L"
	BroadsideR Broadside = "R"
)

// AimPoint is where a broadside volley is aimed.
type AimPoint string

const (
	AimHull    AimPoint = "HULL"
	AimRigging AimPoint = "RIGGING"
)

// Side identifies a player.
type Side string

const (
	P1 Side = "P1"
	P2 Side = "P2"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == P1 {
		return P2
	}
	return P1
}

// GamePhase is the current stage of the turn state machine. MOVEMENT is
// transient: no Game snapshot is ever observed with Phase == GameMovement,
// it exists only to tag events emitted while resolving movement.
type GamePhase string

const (
	GamePlanning GamePhase = "PLANNING"
	GameMovement GamePhase = "MOVEMENT"
	GameCombat   GamePhase = "COMBAT"
	GameReload   GamePhase = "RELOAD"
)

// Ship is a single vessel. Pose invariant: Stern is always
// SternFromBow(Bow, Facing); nothing should set Stern directly except the
// scenario loader and collision-displacement restore, both of which must
// still satisfy the invariant.
type Ship struct {
	ID   string
	Name string
	Side Side

	Bow    HexCoord
	Stern  HexCoord
	Facing Facing

	BattleSailSpeed int

	GunsL, GunsR           int
	CarronadesL, CarronadesR int

	Hull, Rigging, Crew, Marines int

	LoadL, LoadR LoadState

	Fouled bool
	Struck bool

	TurnsWithoutBowAdvance int

	// InitialCrew is the scenario-time crew count, used for the crew
	// quality modifier in combat resolution. It never changes after
	// scenario load.
	InitialCrew int
}

// Clone returns a deep copy. Ship has no reference fields, so this is a
// plain value copy; the explicit method documents the copy contract.
func (s Ship) Clone() Ship {
	return s
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// GunsOn returns the gun count for the given broadside.
func (s *Ship) GunsOn(b Broadside) int {
	if b == BroadsideL {
		return s.GunsL
	}
	return s.GunsR
}

// LoadOn returns the load state for the given broadside.
func (s *Ship) LoadOn(b Broadside) LoadState {
	if b == BroadsideL {
		return s.LoadL
	}
	return s.LoadR
}

func (s *Ship) setLoad(b Broadside, st LoadState) {
	if b == BroadsideL {
		s.LoadL = st
	} else {
		s.LoadR = st
	}
}

// CanFireBroadside reports whether s may fire the given broadside right
// now: not struck, that broadside loaded, and at least one gun mounted.
func (s *Ship) CanFireBroadside(b Broadside) bool {
	return !s.Struck && s.LoadOn(b) == Roundshot && s.GunsOn(b) > 0
}
