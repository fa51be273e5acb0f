package engine

import (
	mg "heron/heronmg"
)

// KillerTable keeps two quiet cutoff moves per ply.
type KillerTable struct {
	moves [MaxPly + 2][2]mg.Move
}

// Insert shifts a new killer in unless it already leads the slot.
func (k *KillerTable) Insert(move mg.Move, ply int) {
	if move != k.moves[ply][0] {
		k.moves[ply][1] = k.moves[ply][0]
		k.moves[ply][0] = move
	}
}

// IsKiller reports whether the move is a killer at this ply.
func (k *KillerTable) IsKiller(move mg.Move, ply int) bool {
	return k.moves[ply][0] == move || k.moves[ply][1] == move
}

// Clear wipes the table.
func (k *KillerTable) Clear() {
	for ply := range k.moves {
		k.moves[ply][0] = mg.NoMove
		k.moves[ply][1] = mg.NoMove
	}
}

// HistoryTable scores quiet moves by side, from- and to-square, rewarded on
// beta cutoffs and punished on failure with the shared bonus formula.
type HistoryTable struct {
	scores [2][64][64]int32
}

func (h *HistoryTable) Get(c mg.Color, m mg.Move) int32 {
	return h.scores[c][m.From()][m.To()]
}

func (h *HistoryTable) Update(c mg.Color, m mg.Move, bonus int32) {
	gravityUpdate(&h.scores[c][m.From()][m.To()], bonus)
}

func (h *HistoryTable) Clear() {
	for c := 0; c < 2; c++ {
		for f := 0; f < 64; f++ {
			for t := 0; t < 64; t++ {
				h.scores[c][f][t] = 0
			}
		}
	}
}

// CaptureHistoryTable scores captures by side, moving piece type, target
// square and captured piece type.
type CaptureHistoryTable struct {
	scores [2][7][64][7]int32
}

func (h *CaptureHistoryTable) Get(c mg.Color, moved mg.PieceType, to mg.Square, captured mg.PieceType) int32 {
	return h.scores[c][moved][to][captured]
}

func (h *CaptureHistoryTable) Update(c mg.Color, moved mg.PieceType, to mg.Square, captured mg.PieceType, bonus int32) {
	gravityUpdate(&h.scores[c][moved][to][captured], bonus)
}

func (h *CaptureHistoryTable) Clear() {
	for c := 0; c < 2; c++ {
		for pt := 0; pt < 7; pt++ {
			for sq := 0; sq < 64; sq++ {
				for cap := 0; cap < 7; cap++ {
					h.scores[c][pt][sq][cap] = 0
				}
			}
		}
	}
}

// CounterTable remembers the quiet reply that refuted each previous move.
type CounterTable struct {
	moves [2][64][64]mg.Move
}

func (ct *CounterTable) Get(c mg.Color, prev mg.Move) mg.Move {
	if prev == mg.NoMove {
		return mg.NoMove
	}
	return ct.moves[c][prev.From()][prev.To()]
}

func (ct *CounterTable) Store(c mg.Color, prev, move mg.Move) {
	if prev != mg.NoMove {
		ct.moves[c][prev.From()][prev.To()] = move
	}
}

func (ct *CounterTable) Clear() {
	for c := 0; c < 2; c++ {
		for f := 0; f < 64; f++ {
			for t := 0; t < 64; t++ {
				ct.moves[c][f][t] = mg.NoMove
			}
		}
	}
}
