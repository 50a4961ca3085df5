package wsim

import "testing"

func TestRotateLeftRight(t *testing.T) {
	tests := []struct {
		facing    Facing
		wantLeft  Facing
		wantRight Facing
	}{
		{North, Northwest, Northeast},
		{Northeast, North, East},
		{East, Northeast, Southeast},
		{Southeast, East, South},
		{South, Southeast, Southwest},
		{Southwest, South, West},
		{West, Southwest, Northwest},
		{Northwest, West, North},
	}
	for _, tt := range tests {
		if got := RotateLeft(tt.facing); got != tt.wantLeft {
			t.Errorf("RotateLeft(%s) = %s, want %s", tt.facing, got, tt.wantLeft)
		}
		if got := RotateRight(tt.facing); got != tt.wantRight {
			t.Errorf("RotateRight(%s) = %s, want %s", tt.facing, got, tt.wantRight)
		}
	}
}

func TestRotateFullCircle(t *testing.T) {
	f := North
	for range 8 {
		f = RotateRight(f)
	}
	if f != North {
		t.Errorf("8 right rotations should return to North, got %s", f)
	}
}

func TestOpposite(t *testing.T) {
	tests := []struct {
		facing Facing
		want   Facing
	}{
		{North, South},
		{South, North},
		{East, West},
		{West, East},
		{Northeast, Southwest},
		{Southwest, Northeast},
		{Southeast, Northwest},
		{Northwest, Southeast},
	}
	for _, tt := range tests {
		if got := Opposite(tt.facing); got != tt.want {
			t.Errorf("Opposite(%s) = %s, want %s", tt.facing, got, tt.want)
		}
	}
}

func TestSternFromBow(t *testing.T) {
	bow := HexCoord{Col: 5, Row: 5}
	stern := SternFromBow(bow, North)
	want := Adjacent(bow, South)
	if stern != want {
		t.Errorf("SternFromBow(bow, North) = %+v, want %+v", stern, want)
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	a := HexCoord{Col: 3, Row: 4}
	b := HexCoord{Col: 7, Row: 1}

	if Distance(a, a) != 0 {
		t.Errorf("Distance(a, a) = %d, want 0", Distance(a, a))
	}
	if Distance(a, b) != Distance(b, a) {
		t.Errorf("Distance not symmetric: %d vs %d", Distance(a, b), Distance(b, a))
	}
}

func TestDistanceAdjacentIsOne(t *testing.T) {
	center := HexCoord{Col: 4, Row: 4}
	for _, dir := range facingCycle {
		n := Adjacent(center, dir)
		if d := Distance(center, n); d != 1 {
			t.Errorf("Distance to %s neighbour = %d, want 1 (center=%+v, neighbour=%+v)", dir, d, center, n)
		}
	}
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		hex         HexCoord
		width       int
		height      int
		wantInBound bool
	}{
		{HexCoord{0, 0}, 10, 10, true},
		{HexCoord{9, 9}, 10, 10, true},
		{HexCoord{10, 9}, 10, 10, false},
		{HexCoord{9, 10}, 10, 10, false},
		{HexCoord{-1, 0}, 10, 10, false},
		{HexCoord{0, -1}, 10, 10, false},
	}
	for _, tt := range tests {
		if got := InBounds(tt.hex, tt.width, tt.height); got != tt.wantInBound {
			t.Errorf("InBounds(%+v, %d, %d) = %v, want %v", tt.hex, tt.width, tt.height, got, tt.wantInBound)
		}
	}
}

// TestEastWestNotNaturalNeighbours documents the degenerate E/W case noted
// in hex.go: both parities use the same row delta, so E/W neighbours do
// not follow the odd-q vertical layout's natural hex adjacency rule the
// other six directions do.
func TestEastWestNotNaturalNeighbours(t *testing.T) {
	evenCol := HexCoord{Col: 4, Row: 4}
	oddCol := HexCoord{Col: 5, Row: 4}

	if got := Adjacent(evenCol, East); got.Row != evenCol.Row {
		t.Errorf("East from even column changed row: %+v", got)
	}
	if got := Adjacent(oddCol, East); got.Row != oddCol.Row {
		t.Errorf("East from odd column changed row: %+v", got)
	}
}
