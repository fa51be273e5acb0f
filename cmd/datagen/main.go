// Command datagen plays fixed-node self-play games from randomized openings
// and writes one "fen | score | result | game-id" record per stored position, the raw
// material for evaluation training.
//
// Games run in parallel workers; every game carries a UUID so records from
// interrupted runs can be traced back to their game.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"heron/engine"
	mg "heron/heronmg"
)

const maxGamePlies = 400

func main() {
	games := flag.Int("games", 100, "number of self-play games")
	nodes := flag.Uint64("nodes", 25000, "node budget per move")
	workers := flag.Int("workers", 4, "parallel games")
	randomPlies := flag.Int("random-plies", 8, "random opening half-moves")
	seed := flag.Int64("seed", 1, "opening randomization seed")
	out := flag.String("out", "datagen.txt", "output file")
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "datagen:", err)
		os.Exit(1)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	var mu sync.Mutex
	var group errgroup.Group
	group.SetLimit(*workers)

	for g := 0; g < *games; g++ {
		gameSeed := *seed + int64(g)
		group.Go(func() error {
			records, err := playGame(gameSeed, *nodes, *randomPlies)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, r := range records {
				fmt.Fprintln(w, r)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "datagen:", err)
		os.Exit(1)
	}
}

type record struct {
	fen   string
	score int32
}

// playGame runs one self-play game and returns its finished records, each
// labeled with the game id and final result from White's point of view.
func playGame(seed int64, nodes uint64, randomPlies int) ([]string, error) {
	gameID := uuid.New()
	rnd := rand.New(rand.NewSource(seed))

	pos, err := mg.ParseFEN(mg.StartPos)
	if err != nil {
		return nil, err
	}

	// Randomized opening; abandon games whose opening is already decided.
	for i := 0; i < randomPlies; i++ {
		var buf [mg.MaxMoves]mg.Move
		legal := pos.GenerateLegal(buf[:0])
		if len(legal) == 0 {
			return nil, nil
		}
		pos.MakeMove(legal[rnd.Intn(len(legal))])
	}

	eng := engine.NewEngine()
	eng.Opts.HashMB = 16
	eng.ResizeHash()

	var pending []record
	result := "1/2-1/2"

	for ply := 0; ply < maxGamePlies; ply++ {
		var buf [mg.MaxMoves]mg.Move
		legal := pos.GenerateLegal(buf[:0])
		if len(legal) == 0 {
			if pos.InCheck() {
				if pos.SideToMove() == mg.White {
					result = "0-1"
				} else {
					result = "1-0"
				}
			}
			break
		}
		if pos.IsDraw(0) {
			break
		}

		eng.SetPosition(pos.Clone())
		move, score := eng.SearchSync(engine.Limits{Nodes: nodes})
		if move == mg.NoMove {
			break
		}

		// Skip noisy samples: positions in check or with a tactical best
		// move tell the trainer little about quiet evaluation.
		whiteScore := score
		if pos.SideToMove() == mg.Black {
			whiteScore = -score
		}
		if !pos.InCheck() && pos.PieceAt(move.To()) == mg.NoPiece {
			pending = append(pending, record{fen: pos.ToFEN(), score: whiteScore})
		}

		pos.MakeMove(move)
	}

	lines := make([]string, 0, len(pending))
	for _, r := range pending {
		lines = append(lines, fmt.Sprintf("%s | %d | %s | %s", r.fen, r.score, result, gameID))
	}
	return lines, nil
}
