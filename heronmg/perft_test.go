package heronmg

import "testing"

type perftCase struct {
	name  string
	fen   string
	depth int
	nodes uint64
}

var perftCases = []perftCase{
	{"startpos d1", StartPos, 1, 20},
	{"startpos d2", StartPos, 2, 400},
	{"startpos d3", StartPos, 3, 8902},
	{"startpos d4", StartPos, 4, 197281},
	{"startpos d5", StartPos, 5, 4865609},

	{"kiwipete d1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
	{"kiwipete d2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
	{"kiwipete d3", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3, 97862},
	{"kiwipete d4", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4, 4085603},

	// Endgame with en passant and promotion traps.
	{"pos3 d4", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, 43238},
	{"pos3 d5", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 5, 674624},

	// Promotion-heavy middlegame.
	{"pos4 d3", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 3, 9467},
	{"pos4 d4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 4, 422333},

	// Talkchess position: castling legality after promotion threats.
	{"pos5 d3", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 3, 62379},
	{"pos5 d4", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 4, 2103487},

	// Steven Edwards' alternative start.
	{"pos6 d3", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 3, 89890},
	{"pos6 d4", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 4, 3894594},
}

func TestPerft(t *testing.T) {
	for _, c := range perftCases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			if testing.Short() && c.nodes > 500000 {
				t.Skip("skipping large perft in short mode")
			}
			pos, err := ParseFEN(c.fen)
			if err != nil {
				t.Fatalf("parse %q: %v", c.fen, err)
			}
			if got := pos.Perft(c.depth); got != c.nodes {
				t.Errorf("perft(%d) of %s = %d, want %d", c.depth, c.fen, got, c.nodes)
			}
		})
	}
}

// TestPerftStartposDeep pins the depth-6 count; slow, so it only runs outside
// -short.
func TestPerftStartposDeep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping perft 6 in short mode")
	}
	pos, err := ParseFEN(StartPos)
	if err != nil {
		t.Fatal(err)
	}
	if got := pos.Perft(6); got != 119060324 {
		t.Errorf("perft(6) = %d, want 119060324", got)
	}
}

// Fischer-random castling: king and rook on non-standard files.
func TestPerftFRC(t *testing.T) {
	cases := []perftCase{
		{"frc1 d3", "bqnb1rkr/pp3ppp/3ppn2/2p5/5P2/P2P4/NPP1P1PP/BQ1BNRKR w HFhf - 2 9", 3, 12189},
		{"frc2 d3", "2nnrbkr/p1qppppp/8/1ppb4/6PP/3PP3/PPP2P2/BQNNRBKR w HEhe - 1 9", 3, 18002},
		{"frc3 d3", "b1q1rrkb/pppppppp/3nn3/8/P7/1PPP4/4PPPP/BQNNRKRB w GE - 1 9", 3, 10471},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			pos, err := ParseFEN(c.fen)
			if err != nil {
				t.Fatalf("parse %q: %v", c.fen, err)
			}
			if !pos.Chess960() {
				t.Fatal("shredder castling field should flag the position as FRC")
			}
			if got := pos.Perft(c.depth); got != c.nodes {
				t.Errorf("perft(%d) of %s = %d, want %d", c.depth, c.fen, got, c.nodes)
			}
		})
	}
}

func BenchmarkPerftStartpos(b *testing.B) {
	pos, err := ParseFEN(StartPos)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos.Perft(4)
	}
}
