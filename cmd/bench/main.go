// Command bench runs a fixed-depth search over a small FEN suite and prints
// a total node count and speed, for quick regression comparisons between
// builds.
package main

import (
	"flag"
	"fmt"
	"time"

	"heron/engine"
	mg "heron/heronmg"
)

var benchFens = []string{
	mg.StartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"8/8/8/8/8/6k1/6p1/5KQ1 w - - 0 1",
	"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
	"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1",
}

func main() {
	depth := flag.Int("depth", 10, "search depth per position")
	flag.Parse()

	eng := engine.NewEngine()

	start := time.Now()
	var totalNodes uint64
	for i, fen := range benchFens {
		pos, err := mg.ParseFEN(fen)
		if err != nil {
			panic(err)
		}
		eng.NewGame()
		eng.SetPosition(pos)
		fmt.Printf("position %d/%d: %s\n", i+1, len(benchFens), fen)
		nodes := eng.Bench(engine.Limits{Depth: *depth})
		totalNodes += nodes
	}
	elapsed := time.Since(start)

	fmt.Println("===========================")
	fmt.Printf("total nodes: %d\n", totalNodes)
	fmt.Printf("total time:  %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("nps:         %.0f\n", float64(totalNodes)/elapsed.Seconds())
}
