package engine

import (
	"testing"

	mg "heron/heronmg"
)

func mustPos(t *testing.T, fen string) *mg.Position {
	t.Helper()
	pos, err := mg.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse %q: %v", fen, err)
	}
	return pos
}

func TestSearchFindsMateInOne(t *testing.T) {
	eng := NewEngine()
	eng.SetPosition(mustPos(t, "4k3/8/4K3/8/8/8/8/6Q1 w - - 0 1"))
	move, score := eng.SearchSync(Limits{Depth: 4})
	if move.String() != "g1g8" {
		t.Errorf("expected g1g8 mate, got %s", move)
	}
	if score < MateInMax {
		t.Errorf("expected a mate score, got %d", score)
	}
}

// KQ versus K with the strong king well placed: a shallow search proves a
// short mate.
func TestSearchFindsShortMateKQK(t *testing.T) {
	eng := NewEngine()
	eng.SetPosition(mustPos(t, "7k/4Q3/8/6K1/8/8/8/8 w - - 0 1"))
	_, score := eng.SearchSync(Limits{Depth: 8})
	if score < MateInMax {
		t.Fatalf("expected a mate score at depth 8, got %d", score)
	}
	if dist := MateScore - score; dist > 10 {
		t.Errorf("mate distance %d plies, want <= 10", dist)
	}
}

func TestStalemateIsDraw(t *testing.T) {
	pos := mustPos(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	var buf [mg.MaxMoves]mg.Move
	if legal := pos.GenerateLegal(buf[:0]); len(legal) != 0 {
		t.Fatalf("stalemate position has %d legal moves", len(legal))
	}
	if pos.InCheck() {
		t.Fatal("stalemate position must not be check")
	}

	// White is stalemated outright: search reports no move and a draw score.
	eng := NewEngine()
	eng.SetPosition(mustPos(t, "8/8/8/8/8/5k2/5p2/5K2 w - - 0 1"))
	move, score := eng.SearchSync(Limits{Depth: 6})
	if move != mg.NoMove {
		t.Errorf("stalemated side has no move to play, got %s", move)
	}
	if score != DrawScore {
		t.Errorf("stalemate scored %d, want %d", score, DrawScore)
	}
}

func TestSearchReturnsLegalMove(t *testing.T) {
	fens := []string{
		mg.StartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	for _, fen := range fens {
		eng := NewEngine()
		pos := mustPos(t, fen)
		eng.SetPosition(pos.Clone())
		move, _ := eng.SearchSync(Limits{Depth: 5})
		if _, ok := pos.ParseMove(move.String()); !ok {
			t.Errorf("search returned illegal move %s for %q", move, fen)
		}
	}
}

// Multi-threaded search must agree with single-threaded search to within a
// few centipawns and must return a legal move.
func TestThreadedSearchConsistency(t *testing.T) {
	fen := "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10"

	single := NewEngine()
	single.SetPosition(mustPos(t, fen))
	_, singleScore := single.SearchSync(Limits{Depth: 7})

	multi := NewEngine()
	multi.Opts.Threads = 4
	multi.SetPosition(mustPos(t, fen))
	move, multiScore := multi.SearchSync(Limits{Depth: 7})

	pos := mustPos(t, fen)
	if _, ok := pos.ParseMove(move.String()); !ok {
		t.Fatalf("threaded search returned illegal move %s", move)
	}
	if diff := abs32(singleScore - multiScore); diff > 60 {
		t.Errorf("threaded score %d far from single-thread score %d", multiScore, singleScore)
	}
}

func TestNodeLimitRespected(t *testing.T) {
	eng := NewEngine()
	eng.SetPosition(mustPos(t, mg.StartPos))
	nodes := eng.Bench(Limits{Nodes: 5000})
	// The limit is checked on checkup boundaries, so allow that much slack.
	if nodes > 5000+2*(checkupMask+1) {
		t.Errorf("node budget 5000 overshot to %d", nodes)
	}
}

func TestMultiPVSearchesDisjointLines(t *testing.T) {
	eng := NewEngine()
	eng.Opts.MultiPV = 3
	eng.SetPosition(mustPos(t, mg.StartPos))
	eng.SearchSync(Limits{Depth: 5})

	t0 := engThreadForTest(eng)
	seen := map[mg.Move]bool{}
	for i := 0; i < 3; i++ {
		m := t0.rootMoves[i].Move
		if seen[m] {
			t.Fatalf("MultiPV line %d repeats move %s", i+1, m)
		}
		seen[m] = true
		if len(t0.rootMoves[i].PV.Moves) == 0 {
			t.Errorf("MultiPV line %d has no PV", i+1)
		}
	}
	// Lines come back ordered best first.
	if t0.rootMoves[0].Score < t0.rootMoves[1].Score ||
		t0.rootMoves[1].Score < t0.rootMoves[2].Score {
		t.Error("MultiPV lines are not sorted by score")
	}
}

func engThreadForTest(e *Engine) *Thread { return e.threads[0] }

func TestQuiescenceStandPat(t *testing.T) {
	// A quiet position: quiescence should return close to the static eval.
	eng := NewEngine()
	eng.SetPosition(mustPos(t, mg.StartPos))
	eng.ensureThreads()
	th := eng.threads[0]
	th.pos = eng.rootPos.Clone()
	th.eval.Reset()

	static := th.eval.Evaluate(th.pos)
	score := th.quiescence(-Infinity, Infinity, 0, &PVLine{})
	if abs32(score-static) > 100 {
		t.Errorf("quiescence %d drifted from static eval %d in a quiet position", score, static)
	}
}

func TestHistoryBonusFormula(t *testing.T) {
	cases := []struct {
		depth int
		want  int32
	}{
		{1, 150},
		{2, 500},
		{4, 1200},
		{6, 1550}, // capped
		{20, 1550},
	}
	for _, c := range cases {
		if got := historyBonus(c.depth); got != c.want {
			t.Errorf("historyBonus(%d) = %d, want %d", c.depth, got, c.want)
		}
	}
}
