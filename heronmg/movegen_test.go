package heronmg

import (
	"sort"
	"testing"
)

var genTestFens = []string{
	StartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2",
	"5rk1/5ppp/8/8/8/8/3N4/4KR2 w - - 0 1",
}

func moveSet(moves []Move) map[Move]bool {
	set := make(map[Move]bool, len(moves))
	for _, m := range moves {
		set[m] = true
	}
	return set
}

// Loud plus Quiets must partition NonEvasions exactly: captures and
// promotions on one side, everything else on the other, with the promotion
// piece enumeration lining up across the split.
func TestLoudPlusQuietsEqualsNonEvasions(t *testing.T) {
	for _, fen := range genTestFens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("parse %q: %v", fen, err)
		}
		if pos.InCheck() {
			continue
		}
		var b1, b2, b3 [MaxMoves]Move
		loud := pos.GenerateMoves(GenLoud, b1[:0])
		quiets := pos.GenerateMoves(GenQuiets, b2[:0])
		all := pos.GenerateMoves(GenNonEvasions, b3[:0])

		union := moveSet(loud)
		for _, m := range quiets {
			if union[m] {
				t.Errorf("%q: move %s generated by both Loud and Quiets", fen, m)
			}
			union[m] = true
		}
		allSet := moveSet(all)
		if len(union) != len(allSet) {
			t.Errorf("%q: Loud+Quiets has %d moves, NonEvasions %d", fen, len(union), len(allSet))
		}
		for m := range allSet {
			if !union[m] {
				t.Errorf("%q: %s in NonEvasions but missing from Loud+Quiets", fen, m)
			}
		}
	}
}

// Every quiet-check move must be a quiet move that gives check, and every
// legal quiet move giving check must be emitted.
func TestQuietChecksExact(t *testing.T) {
	for _, fen := range genTestFens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("parse %q: %v", fen, err)
		}
		if pos.InCheck() {
			continue
		}
		var b1, b2 [MaxMoves]Move
		checksSet := moveSet(pos.GenerateMoves(GenQuietChecks, b1[:0]))
		quiets := pos.GenerateMoves(GenQuiets, b2[:0])
		quietSet := moveSet(quiets)

		for m := range checksSet {
			if m.Flag() == FlagCastle {
				continue // castles are emitted by Quiets only
			}
			if !quietSet[m] {
				t.Errorf("%q: quiet check %s is not a quiet move", fen, m)
			}
			if pos.Legal(m) && !pos.GivesCheck(m) {
				t.Errorf("%q: %s emitted as quiet check but gives no check", fen, m)
			}
		}
		for _, m := range quiets {
			if m.Flag() == FlagCastle || m.Flag() == FlagPromotion {
				continue
			}
			if pos.Legal(m) && pos.GivesCheck(m) && !checksSet[m] {
				t.Errorf("%q: legal checking quiet %s missing from QuietChecks", fen, m)
			}
		}
	}
}

// Evasion generation must agree with filtering NonEvasions through the
// legality test.
func TestEvasionsMatchFilteredLegal(t *testing.T) {
	fens := []string{
		"4k3/8/8/8/8/8/8/4RK2 b - - 0 1",        // rook check
		"4k3/8/5N2/8/8/8/8/4RK2 b - - 0 1",      // double check
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", // queen check
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("parse %q: %v", fen, err)
		}
		if !pos.InCheck() {
			t.Fatalf("%q: expected a check position", fen)
		}
		var buf [MaxMoves]Move
		legal := moveSet(pos.GenerateLegal(buf[:0]))
		var allBuf [MaxMoves]Move
		filtered := make(map[Move]bool)
		for _, m := range pos.GenerateMoves(GenNonEvasions, allBuf[:0]) {
			if pos.Legal(m) {
				filtered[m] = true
			}
		}
		if len(filtered) != len(legal) {
			t.Errorf("%q: evasions give %d legal moves, filtered NonEvasions %d", fen, len(legal), len(filtered))
		}
		for m := range filtered {
			if !legal[m] {
				t.Errorf("%q: legal move %s missing from evasions", fen, m)
			}
		}
		for m := range legal {
			pos.MakeMove(m)
			if pos.AttackersTo(pos.KingSquare(pos.SideToMove().Other()), pos.AllOccupancy())&
				pos.ColorOccupancy(pos.SideToMove()) != 0 {
				t.Errorf("%q: evasion %s leaves the king in check", fen, m)
			}
			pos.UnmakeMove(m)
		}
		// The queen-check position is in fact the fool's mate: no evasions
		// is correct there. The others must offer king moves.
		if len(legal) == 0 && popcount(pos.Checkers()) == 2 {
			t.Errorf("%q: double check must still allow king moves", fen)
		}
	}
}

// Generation into a caller buffer must not allocate or disturb neighbors.
func TestGenerateIntoBufferReuse(t *testing.T) {
	pos, err := ParseFEN(StartPos)
	if err != nil {
		t.Fatal(err)
	}
	var buf [MaxMoves]Move
	first := pos.GenerateMoves(GenNonEvasions, buf[:0])
	a := make([]string, 0, len(first))
	for _, m := range first {
		a = append(a, m.String())
	}
	second := pos.GenerateMoves(GenNonEvasions, buf[:0])
	b := make([]string, 0, len(second))
	for _, m := range second {
		b = append(b, m.String())
	}
	sort.Strings(a)
	sort.Strings(b)
	if len(a) != len(b) {
		t.Fatalf("regeneration changed the move count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("regeneration changed the move list at %d: %s vs %s", i, a[i], b[i])
		}
	}
}
