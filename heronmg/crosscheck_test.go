package heronmg

import (
	"sort"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// Cross-checks move generation against an independent generator: for a set
// of tactical positions, the legal move lists (as coordinate strings) must
// agree exactly, here and one ply deeper.
var crossCheckFens = []string{
	StartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"8/8/8/8/8/6k1/6p1/5KQ1 w - - 0 1",
	"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2",
}

func legalMoveSet(pos *Position) []string {
	var buf [MaxMoves]Move
	moves := pos.GenerateLegal(buf[:0])
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func dragontoothMoveSet(b *dragontoothmg.Board) []string {
	moves := b.GenerateLegalMoves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMoveGenerationAgainstDragontooth(t *testing.T) {
	for _, fen := range crossCheckFens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("parse %q: %v", fen, err)
		}
		ref := dragontoothmg.ParseFen(fen)

		ours := legalMoveSet(pos)
		theirs := dragontoothMoveSet(&ref)
		if !sameStrings(ours, theirs) {
			t.Errorf("move list mismatch at %q:\n  ours:   %v\n  theirs: %v", fen, ours, theirs)
			continue
		}

		// One ply deeper: apply each reference move to both boards via the
		// shared coordinate text and compare again.
		for _, refMove := range ref.GenerateLegalMoves() {
			m, ok := pos.ParseMove(refMove.String())
			if !ok {
				t.Errorf("%q: reference move %s not found by our generator", fen, refMove.String())
				continue
			}
			undo := ref.Apply(refMove)
			pos.MakeMove(m)
			if !sameStrings(legalMoveSet(pos), dragontoothMoveSet(&ref)) {
				t.Errorf("%q after %s: child move lists diverge", fen, refMove.String())
			}
			pos.UnmakeMove(m)
			undo()
		}
	}
}
