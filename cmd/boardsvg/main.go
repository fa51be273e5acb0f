// Command boardsvg renders a FEN position as an SVG diagram.
//
// Usage: boardsvg [-out file.svg] "FEN"
package main

import (
	"flag"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"

	mg "heron/heronmg"
)

const cell = 64

var pieceGlyphs = map[mg.Piece]string{
	mg.WhiteKing:   "♔",
	mg.WhiteQueen:  "♕",
	mg.WhiteRook:   "♖",
	mg.WhiteBishop: "♗",
	mg.WhiteKnight: "♘",
	mg.WhitePawn:   "♙",
	mg.BlackKing:   "♚",
	mg.BlackQueen:  "♛",
	mg.BlackRook:   "♜",
	mg.BlackBishop: "♝",
	mg.BlackKnight: "♞",
	mg.BlackPawn:   "♟",
}

func main() {
	out := flag.String("out", "board.svg", "output file")
	flag.Parse()

	fen := mg.StartPos
	if flag.NArg() > 0 {
		fen = flag.Arg(0)
	}
	pos, err := mg.ParseFEN(fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, "boardsvg:", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "boardsvg:", err)
		os.Exit(1)
	}
	defer f.Close()

	size := 8 * cell
	canvas := svg.New(f)
	canvas.Start(size, size)

	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			x := file * cell
			y := (7 - rank) * cell
			fill := "fill:rgb(240,217,181)"
			if (rank+file)%2 == 0 {
				fill = "fill:rgb(181,136,99)"
			}
			canvas.Rect(x, y, cell, cell, fill)

			pc := pos.PieceAt(mg.Square(rank*8 + file))
			if pc == mg.NoPiece {
				continue
			}
			canvas.Text(x+cell/2, y+cell*3/4, pieceGlyphs[pc],
				fmt.Sprintf("font-size:%dpx;text-anchor:middle", cell*3/4))
		}
	}
	canvas.End()
}
