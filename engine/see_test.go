package engine

import (
	"testing"

	mg "heron/heronmg"
)

func seeOf(t *testing.T, fen, moveStr string) int32 {
	t.Helper()
	pos, err := mg.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse %q: %v", fen, err)
	}
	m, ok := pos.ParseMove(moveStr)
	if !ok {
		t.Fatalf("%s is not legal in %q", moveStr, fen)
	}
	return see(pos, m)
}

func TestSEEBasicExchanges(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		move string
		want int32
	}{
		{
			"undefended pawn wins its value",
			"k7/8/8/4p3/8/5N2/8/K7 w - - 0 1",
			"f3e5",
			100,
		},
		{
			"defended pawn loses the knight",
			"k7/8/3p4/4p3/8/5N2/8/K7 w - - 0 1",
			"f3e5",
			-200,
		},
		{
			"rook trade on a defended square is level",
			"k7/8/4p3/3r4/8/3R4/8/K7 w - - 0 1",
			"d3d5",
			0,
		},
		{
			"queen grabbing a defended pawn loses heavily",
			"k7/8/3p4/4p3/8/8/4Q3/K7 w - - 0 1",
			"e2e5",
			-800,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := seeOf(t, c.fen, c.move); got != c.want {
				t.Errorf("see(%s in %q) = %d, want %d", c.move, c.fen, got, c.want)
			}
		})
	}
}

func TestSEEEnPassant(t *testing.T) {
	// The en-passant capture of an undefended pawn wins a pawn.
	got := seeOf(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2", "e5d6")
	if got != 100 {
		t.Errorf("en-passant SEE = %d, want 100", got)
	}
}
