package wsim

// HexCoord is an offset-coordinate hex cell using the odd-q vertical
// layout: odd columns are shifted down by half a row relative to even
// columns. Both fields are non-negative; the map origin is the top-left
// hex.
type HexCoord struct {
	Col int
	Row int
}

// Facing is one of the eight directions a ship can point or turn toward.
// The hex grid only has six natural neighbour directions (see the
// direction table below); N/S/NE/SE/SW/NW are natural, E/W are not. The
// Facing cycle nonetheless has eight members, and rotate_left/rotate_right
// step through all eight — see the note on RotateLeft for why this is
// preserved rather than "fixed".
type Facing string

const (
	North     Facing = "N"
	Northeast Facing = "NE"
	East      Facing = "E"
	Southeast Facing = "SE"
	South     Facing = "S"
	Southwest Facing = "SW"
	West      Facing = "W"
	Northwest Facing = "NW"
)

// WindDirection shares Facing's eight values. It names the direction the
// wind is blowing FROM; downwind travel is toward Opposite(wind).
type WindDirection = Facing

// facingCycle is the clockwise order used for rotation. Each step is
// documented in callers as "45 degrees" even though a hex grid only
// supports 60-degree turns — see DESIGN.md's Open Question on this.
var facingCycle = []Facing{North, Northeast, East, Southeast, South, Southwest, West, Northwest}

func facingIndex(f Facing) int {
	for i, c := range facingCycle {
		if c == f {
			return i
		}
	}
	return -1
}

// RotateLeft advances the facing one step counter-clockwise around the
// 8-member cycle.
func RotateLeft(f Facing) Facing {
	i := facingIndex(f)
	if i < 0 {
		return f
	}
	return facingCycle[(i+len(facingCycle)-1)%len(facingCycle)]
}

// RotateRight advances the facing one step clockwise around the 8-member
// cycle.
func RotateRight(f Facing) Facing {
	i := facingIndex(f)
	if i < 0 {
		return f
	}
	return facingCycle[(i+1)%len(facingCycle)]
}

// Opposite returns the facing 180 degrees from f (four steps around the
// 8-cycle).
func Opposite(f Facing) Facing {
	i := facingIndex(f)
	if i < 0 {
		return f
	}
	return facingCycle[(i+4)%len(facingCycle)]
}

// neighborDelta is a per-direction offset table: the column delta, and the
// row delta for even and odd source columns respectively (odd-q vertical
// layout). E and W are not natural hex directions in this layout; they are
// modelled as a same-row, adjacent-column step for both parities. That hex
// is still at distance one: E lands on the SE neighbour from an even column
// and on the NE neighbour from an odd column (W likewise on SW or NW).
// Computed by hand from the cube conversion used by Distance, not from
// trigonometry.
type neighborDelta struct {
	dcol     int
	drowEven int
	drowOdd  int
}

var neighborTable = map[Facing]neighborDelta{
	North:     {0, -1, -1},
	South:     {0, 1, 1},
	Northeast: {1, -1, 0},
	Southeast: {1, 0, 1},
	Southwest: {-1, 0, 1},
	Northwest: {-1, -1, 0},
	East:      {1, 0, 0},
	West:      {-1, 0, 0},
}

// Adjacent returns the neighbour of hex in the given direction. It does
// not check map bounds; callers validate bounds separately.
func Adjacent(hex HexCoord, dir Facing) HexCoord {
	d := neighborTable[dir]
	drow := d.drowEven
	if hex.Col&1 == 1 {
		drow = d.drowOdd
	}
	return HexCoord{Col: hex.Col + d.dcol, Row: hex.Row + drow}
}

// InBounds reports whether hex lies within [0,width) x [0,height).
func InBounds(hex HexCoord, width, height int) bool {
	return hex.Col >= 0 && hex.Col < width && hex.Row >= 0 && hex.Row < height
}

// cube converts an odd-q vertical offset coordinate to cube coordinates
// (q, r, s) with q+r+s == 0.
func cube(h HexCoord) (q, r, s int) {
	q = h.Col
	r = h.Row - (h.Col-(h.Col&1))/2
	s = -q - r
	return
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Distance returns the hex distance between a and b. It is symmetric and
// zero for a hex and itself.
func Distance(a, b HexCoord) int {
	aq, ar, as := cube(a)
	bq, br, bs := cube(b)
	return (absInt(aq-bq) + absInt(ar-br) + absInt(as-bs)) / 2
}

// SternFromBow returns the stern hex for a ship with the given bow and
// facing: the neighbour of bow in the direction opposite facing. This is
// the single authoritative way to derive a stern; stored stern hexes are
// always re-derived from it, never treated as independent state.
func SternFromBow(bow HexCoord, facing Facing) HexCoord {
	return Adjacent(bow, Opposite(facing))
}
