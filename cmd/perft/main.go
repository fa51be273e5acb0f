// Command perft counts (and optionally divides) the legal move tree of a
// position, for validating move generation.
//
// Usage: perft [-fen FEN] [-divide] depth
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	mg "heron/heronmg"
)

func main() {
	fen := flag.String("fen", mg.StartPos, "position to search from")
	divide := flag.Bool("divide", false, "print per-move subtree counts")
	flag.Parse()

	depth := 5
	if flag.NArg() > 0 {
		n, err := strconv.Atoi(flag.Arg(0))
		if err != nil || n < 1 {
			fmt.Fprintln(os.Stderr, "perft: depth must be a positive integer")
			os.Exit(1)
		}
		depth = n
	}

	pos, err := mg.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, "perft:", err)
		os.Exit(1)
	}

	start := time.Now()
	var total uint64
	if *divide {
		counts, sum := pos.PerftDivide(depth)
		moves := make([]string, 0, len(counts))
		for m := range counts {
			moves = append(moves, m)
		}
		sort.Strings(moves)
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, counts[m])
		}
		total = sum
	} else {
		total = pos.Perft(depth)
	}
	elapsed := time.Since(start)

	nps := float64(total) / elapsed.Seconds()
	fmt.Printf("perft(%d) = %d  (%.2fs, %.0f nps)\n", depth, total, elapsed.Seconds(), nps)
}
