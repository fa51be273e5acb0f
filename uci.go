package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"heron/engine"
	mg "heron/heronmg"
	"heron/nnue"
)

const (
	engineName   = "Heron 1.0"
	engineAuthor = "the Heron authors"
)

func main() {
	eng := engine.NewEngine()

	// A missing default net is not an error: the engine falls back to the
	// classical evaluation until EvalFile points at a real file.
	if _, err := os.Stat(nnue.DefaultNetFile); err == nil {
		if err := eng.LoadNetworkFile(nnue.DefaultNetFile, true); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	uciLoop(eng)
}

func uciLoop(eng *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<16), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Println("id name", engineName)
			fmt.Println("id author", engineAuthor)
			fmt.Printf("option name Hash type spin default %d min %d max %d\n",
				engine.DefaultTTSizeMB, engine.MinTTSizeMB, engine.MaxTTSizeMB)
			fmt.Println("option name Threads type spin default 1 min 1 max 512")
			fmt.Println("option name MultiPV type spin default 1 min 1 max 64")
			fmt.Println("option name Move Overhead type spin default 30 min 0 max 5000")
			fmt.Println("option name UCI_Chess960 type check default false")
			fmt.Printf("option name EvalFile type string default %s\n", nnue.DefaultNetFile)
			fmt.Println("uciok")

		case "isready":
			fmt.Println("readyok")

		case "ucinewgame":
			eng.NewGame()

		case "setoption":
			handleSetOption(eng, tokens[1:])

		case "position":
			handlePosition(eng, tokens[1:])

		case "go":
			if eng.Searching() {
				fmt.Println("info string search already running")
				continue
			}
			limits := parseGoLimits(tokens[1:])
			go eng.Search(limits)

		case "stop":
			eng.Stop()

		case "quit":
			eng.Stop()
			return

		case "d":
			fmt.Print(eng.Position().String())

		case "eval":
			fmt.Printf("info string static eval %d cp (side to move)\n", eng.StaticEval())

		case "perft":
			depth := 5
			if len(tokens) > 1 {
				if n, err := strconv.Atoi(tokens[1]); err == nil && n > 0 {
					depth = n
				}
			}
			counts, total := eng.Position().PerftDivide(depth)
			for move, n := range counts {
				fmt.Printf("%s: %d\n", move, n)
			}
			fmt.Printf("nodes %d\n", total)

		default:
			// A bare FEN on its own line loads the position.
			if pos, err := mg.ParseFEN(line); err == nil {
				eng.SetPosition(pos)
				continue
			}
			fmt.Println("info string Unknown command:", line)
		}
	}
}

func handleSetOption(eng *engine.Engine, tokens []string) {
	// setoption name <Name...> [value <Value...>]
	var nameParts, valueParts []string
	cur := &nameParts
	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "name":
			cur = &nameParts
		case "value":
			cur = &valueParts
		default:
			*cur = append(*cur, tok)
		}
	}
	name := strings.ToLower(strings.Join(nameParts, " "))
	value := strings.Join(valueParts, " ")

	atoi := func() (int, bool) {
		n, err := strconv.Atoi(value)
		return n, err == nil
	}

	switch name {
	case "hash":
		if n, ok := atoi(); ok {
			eng.Opts.HashMB = n
			eng.ResizeHash()
		} else {
			fmt.Println("info string Malformed Hash value")
		}
	case "threads":
		if n, ok := atoi(); ok {
			eng.Opts.Threads = n
		} else {
			fmt.Println("info string Malformed Threads value")
		}
	case "multipv":
		if n, ok := atoi(); ok {
			eng.Opts.MultiPV = n
		} else {
			fmt.Println("info string Malformed MultiPV value")
		}
	case "move overhead":
		if n, ok := atoi(); ok {
			eng.Opts.MoveOverhead = n
		} else {
			fmt.Println("info string Malformed Move Overhead value")
		}
	case "uci_chess960":
		eng.Opts.Chess960 = strings.EqualFold(value, "true")
		eng.Position().SetChess960(eng.Opts.Chess960)
	case "evalfile":
		eng.Opts.EvalFile = value
		if err := eng.LoadNetworkFile(value, false); err != nil {
			fmt.Println("info string", err)
		}
	default:
		fmt.Println("info string Unknown option", strings.Join(nameParts, " "))
	}
}

func handlePosition(eng *engine.Engine, tokens []string) {
	if len(tokens) == 0 {
		fmt.Println("info string Malformed position command")
		return
	}

	var pos *mg.Position
	var err error
	movesAt := -1

	switch strings.ToLower(tokens[0]) {
	case "startpos":
		pos, err = mg.ParseFEN(mg.StartPos)
		for i, tok := range tokens {
			if strings.ToLower(tok) == "moves" {
				movesAt = i
				break
			}
		}
	case "fen":
		fenParts := []string{}
		for i := 1; i < len(tokens); i++ {
			if strings.ToLower(tokens[i]) == "moves" {
				movesAt = i
				break
			}
			fenParts = append(fenParts, tokens[i])
		}
		pos, err = mg.ParseFEN(strings.Join(fenParts, " "))
	default:
		fmt.Println("info string Invalid position subcommand")
		return
	}
	if err != nil {
		fmt.Println("info string Invalid fen position:", err)
		return
	}

	pos.SetChess960(eng.Opts.Chess960)
	if movesAt >= 0 {
		for _, moveStr := range tokens[movesAt+1:] {
			m, ok := pos.ParseMove(moveStr)
			if !ok {
				fmt.Println("info string Move", moveStr, "not found for position", pos.ToFEN())
				return
			}
			pos.MakeMove(m)
		}
	}
	eng.SetPosition(pos)
}

func parseGoLimits(tokens []string) engine.Limits {
	var limits engine.Limits
	readInt := func(i int) (int, bool) {
		if i+1 >= len(tokens) {
			fmt.Println("info string Malformed go command option", tokens[i])
			return 0, false
		}
		n, err := strconv.Atoi(tokens[i+1])
		if err != nil {
			fmt.Println("info string Malformed go command option; could not convert", tokens[i])
			return 0, false
		}
		return n, true
	}

	for i := 0; i < len(tokens); i++ {
		switch strings.ToLower(tokens[i]) {
		case "infinite":
			limits.Infinite = true
		case "depth":
			if n, ok := readInt(i); ok {
				limits.Depth = n
				i++
			}
		case "nodes":
			if n, ok := readInt(i); ok {
				limits.Nodes = uint64(n)
				i++
			}
		case "movetime":
			if n, ok := readInt(i); ok {
				limits.MoveTime = n
				i++
			}
		case "wtime":
			if n, ok := readInt(i); ok {
				limits.WTime = n
				i++
			}
		case "btime":
			if n, ok := readInt(i); ok {
				limits.BTime = n
				i++
			}
		case "winc":
			if n, ok := readInt(i); ok {
				limits.WInc = n
				i++
			}
		case "binc":
			if n, ok := readInt(i); ok {
				limits.BInc = n
				i++
			}
		case "movestogo":
			if n, ok := readInt(i); ok {
				limits.MovesToGo = n
				i++
			}
		default:
			fmt.Println("info string Unknown go subcommand", tokens[i])
		}
	}
	return limits
}
