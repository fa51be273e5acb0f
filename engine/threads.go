package engine

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"slices"

	mg "heron/heronmg"
	"heron/nnue"
)

// Limits carries the budget of one go command.
type Limits struct {
	Depth     int
	Nodes     uint64
	MoveTime  int
	WTime     int
	BTime     int
	WInc      int
	BInc      int
	MovesToGo int
	Infinite  bool
}

// Options mirrors the UCI option registry.
type Options struct {
	HashMB       int
	Threads      int
	MultiPV      int
	MoveOverhead int
	Chess960     bool
	EvalFile     string
}

// DefaultOptions are announced to the GUI on startup.
func DefaultOptions() Options {
	return Options{
		HashMB:       DefaultTTSizeMB,
		Threads:      1,
		MultiPV:      1,
		MoveOverhead: 30,
	}
}

// bestThreadScoreDelta: a deeper helper result is adopted only if its score
// is not worse than the incumbent by more than this.
const bestThreadScoreDelta = 20

// RootMove is one entry of the pre-ordered root move list.
type RootMove struct {
	Move      mg.Move
	Score     int32
	PrevScore int32
	PV        PVLine
}

// Engine owns the transposition table, the thread pool and the shared search
// state. One instance serves the whole process.
type Engine struct {
	TT   *TransTable
	Opts Options

	net     *nnue.Network
	rootPos *mg.Position

	stop      atomic.Bool
	searching atomic.Bool
	nodes     atomic.Uint64
	silent    bool

	threads []*Thread
	timeman TimeHandler
	limits  Limits
	wg      sync.WaitGroup
}

// Thread is one search worker: its own position copy, stacks and heuristic
// tables. Nothing here is shared; only the TT, the stop flag and the node
// counter cross thread boundaries.
type Thread struct {
	id  int
	eng *Engine

	pos  *mg.Position
	eval *Evaluator

	killers        KillerTable
	history        HistoryTable
	captureHistory CaptureHistoryTable
	counters       CounterTable

	rootMoves      []RootMove
	pvIdx          int
	completedDepth int

	stack [MaxPly + 4]stackFrame
}

// stackFrame is the per-ply search scratch.
type stackFrame struct {
	staticEval  int32
	staticValid bool
	currentMove mg.Move
}

// NewEngine builds an engine with default options and the standard starting
// position.
func NewEngine() *Engine {
	e := &Engine{
		TT:   NewTransTable(DefaultTTSizeMB),
		Opts: DefaultOptions(),
	}
	pos, err := mg.ParseFEN(mg.StartPos)
	if err != nil {
		panic(err)
	}
	e.rootPos = pos
	return e
}

// SetNetwork installs (or removes, with nil) the NNUE weights. Existing
// threads are rebuilt so their evaluators pick up the change.
func (e *Engine) SetNetwork(net *nnue.Network) {
	e.net = net
	e.threads = nil
}

// Network returns the currently installed network, if any.
func (e *Engine) Network() *nnue.Network { return e.net }

// LoadNetworkFile loads weights from disk. When required is set a failure is
// fatal for the caller to surface; otherwise the engine reverts to the
// classical evaluation.
func (e *Engine) LoadNetworkFile(path string, required bool) error {
	net, err := nnue.LoadFile(path)
	if err != nil {
		if required {
			return err
		}
		fmt.Fprintln(os.Stderr, err)
		e.SetNetwork(nil)
		return nil
	}
	e.SetNetwork(net)
	return nil
}

// SetPosition replaces the root position.
func (e *Engine) SetPosition(pos *mg.Position) {
	pos.SetChess960(e.Opts.Chess960)
	e.rootPos = pos
	for _, t := range e.threads {
		t.eval.Reset()
	}
}

// Position returns the current root position.
func (e *Engine) Position() *mg.Position { return e.rootPos }

// NewGame ages the table and clears per-game heuristics. The TT allocation
// is kept.
func (e *Engine) NewGame() {
	e.TT.NewSearch()
	for _, t := range e.threads {
		t.clearHeuristics()
	}
}

// ResizeHash reallocates the TT to the option size.
func (e *Engine) ResizeHash() { e.TT.Resize(e.Opts.HashMB) }

// Stop requests search termination; the tree unwinds cooperatively.
func (e *Engine) Stop() { e.stop.Store(true) }

// Searching reports whether a search is in flight.
func (e *Engine) Searching() bool { return e.searching.Load() }

// StaticEval evaluates the root position outside of any search.
func (e *Engine) StaticEval() int32 {
	e.ensureThreads()
	t := e.threads[0]
	t.pos = e.rootPos.Clone()
	t.eval.Reset()
	return t.eval.Evaluate(t.pos)
}

func (t *Thread) clearHeuristics() {
	t.killers.Clear()
	t.history.Clear()
	t.captureHistory.Clear()
	t.counters.Clear()
}

// ensureThreads (re)builds the pool to the Threads option.
func (e *Engine) ensureThreads() {
	n := Clamp(e.Opts.Threads, 1, 512)
	if len(e.threads) == n {
		return
	}
	e.threads = make([]*Thread, n)
	for i := 0; i < n; i++ {
		e.threads[i] = &Thread{
			id:   i,
			eng:  e,
			eval: NewEvaluator(e.net),
		}
	}
}

// Search runs a full go command to completion and emits info lines plus the
// final bestmove. Run it on its own goroutine so stop can interrupt it.
func (e *Engine) Search(limits Limits) {
	best := e.runSearch(limits, false)
	if best == nil {
		fmt.Println("bestmove 0000")
		return
	}
	bm := best.rootMoves[0]
	out := "bestmove " + e.moveText(bm.Move)
	if len(bm.PV.Moves) > 1 {
		out += " ponder " + e.moveText(bm.PV.Moves[1])
	}
	fmt.Println(out)
}

// SearchSync runs a search without any UCI output and returns the chosen
// move and its score. Drivers (datagen, bench) use it.
func (e *Engine) SearchSync(limits Limits) (mg.Move, int32) {
	best := e.runSearch(limits, true)
	if best == nil {
		return mg.NoMove, 0
	}
	return best.rootMoves[0].Move, best.rootMoves[0].Score
}

// Bench searches and reports how many nodes it took.
func (e *Engine) Bench(limits Limits) uint64 {
	e.runSearch(limits, true)
	return e.nodes.Load()
}

// runSearch is the shared search driver; it returns the best thread, or nil
// when the root has no legal moves.
func (e *Engine) runSearch(limits Limits, silent bool) *Thread {
	e.searching.Store(true)
	defer e.searching.Store(false)

	e.silent = silent
	e.limits = limits
	e.stop.Store(false)
	e.nodes.Store(0)
	e.TT.NewSearch()
	e.timeman.Start(&limits, e.rootPos.SideToMove(), e.Opts.MoveOverhead)

	e.ensureThreads()

	var rootBuf [mg.MaxMoves]mg.Move
	rootLegal := e.rootPos.GenerateLegal(rootBuf[:0])
	if len(rootLegal) == 0 {
		return nil
	}

	for _, t := range e.threads {
		t.pos = e.rootPos.Clone()
		t.eval.Reset()
		t.rootMoves = t.rootMoves[:0]
		for _, m := range rootLegal {
			t.rootMoves = append(t.rootMoves, RootMove{Move: m, Score: -Infinity, PrevScore: -Infinity})
		}
		t.completedDepth = 0
		t.pvIdx = 0
	}

	for _, t := range e.threads[1:] {
		helper := t
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			helper.iterativeDeepening()
		}()
	}
	e.threads[0].iterativeDeepening()

	// Main is done: everyone else unwinds at the next node-check boundary.
	e.stop.Store(true)
	e.wg.Wait()

	return e.bestThread()
}

// bestThread applies the conservative pick: adopt a helper only when it
// completed a deeper iteration without a clearly worse score. Exact ties
// stay with the main thread.
func (e *Engine) bestThread() *Thread {
	best := e.threads[0]
	for _, t := range e.threads[1:] {
		if len(t.rootMoves) == 0 || t.completedDepth == 0 {
			continue
		}
		if t.completedDepth > best.completedDepth &&
			t.rootMoves[0].Score >= best.rootMoves[0].Score-bestThreadScoreDelta {
			best = t
		}
	}
	return best
}

func (e *Engine) moveText(m mg.Move) string {
	if e.Opts.Chess960 {
		return m.StringFRC()
	}
	return m.String()
}

// sortRootMoves stable-sorts the tail of the root list by score, preserving
// generation order between equals so re-searches stay deterministic.
func (t *Thread) sortRootMoves(from int) {
	slices.SortStableFunc(t.rootMoves[from:], func(a, b RootMove) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
}

// report prints the UCI info line(s) for a completed depth. Only the main
// thread reports.
func (t *Thread) report(depth int) {
	e := t.eng
	if e.silent {
		return
	}
	elapsed := e.timeman.Elapsed().Milliseconds()
	if elapsed == 0 {
		elapsed = 1
	}
	nodes := e.nodes.Load()
	nps := nodes * 1000 / uint64(elapsed)

	multiPV := Clamp(e.Opts.MultiPV, 1, len(t.rootMoves))
	for i := 0; i < multiPV; i++ {
		rm := &t.rootMoves[i]
		line := fmt.Sprintf("info depth %d", depth)
		if multiPV > 1 {
			line += fmt.Sprintf(" multipv %d", i+1)
		}
		line += fmt.Sprintf(" score %s nodes %d time %d nps %d hashfull %d",
			formatScore(rm.Score), nodes, elapsed, nps, e.TT.Hashfull())
		if len(rm.PV.Moves) > 0 {
			line += " pv " + rm.PV.String(e.Opts.Chess960)
		}
		fmt.Println(line)
	}
}
