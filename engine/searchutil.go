package engine

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/constraints"

	mg "heron/heronmg"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	Infinity  int32 = 32500
	MateScore int32 = 32000
	// MateInMax separates mate scores from everything else: any score at or
	// beyond it encodes a forced mate within MaxPly plies.
	MateInMax int32 = MateScore - int32(MaxPly)
	DrawScore int32 = 0

	MaxPly = 128
)

// Clamp bounds v into [low, high].
func Clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// PVLine collects the principal variation: the current move prepended to the
// child's line whenever alpha improves in a PV node.
type PVLine struct {
	Moves []mg.Move
}

// Update sets this line to move followed by the child's line.
func (pv *PVLine) Update(move mg.Move, child PVLine) {
	pv.Moves = pv.Moves[:0]
	pv.Moves = append(pv.Moves, move)
	pv.Moves = append(pv.Moves, child.Moves...)
}

// Clear empties the line, keeping its storage.
func (pv *PVLine) Clear() { pv.Moves = pv.Moves[:0] }

// Clone deep-copies the line.
func (pv *PVLine) Clone() PVLine {
	out := PVLine{Moves: make([]mg.Move, len(pv.Moves))}
	copy(out.Moves, pv.Moves)
	return out
}

// BestMove returns the first move of the line, or NoMove.
func (pv *PVLine) BestMove() mg.Move {
	if len(pv.Moves) == 0 {
		return mg.NoMove
	}
	return pv.Moves[0]
}

// String renders the line in wire notation.
func (pv *PVLine) String(frc bool) string {
	var sb strings.Builder
	for i, m := range pv.Moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if frc {
			sb.WriteString(m.StringFRC())
		} else {
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

// =============================================================================
// REDUCTION AND PRUNING TABLES
// =============================================================================

// lmrTable[depth][moveIndex] is the base late-move reduction, log-scaled in
// both dimensions.
var lmrTable [MaxPly + 1][64]int

// lmpTable[improving][depth] caps how many quiet moves are tried at shallow
// depths before the rest are skipped.
var lmpTable [2][9]int

func init() {
	for d := 1; d <= MaxPly; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = int(0.75 + math.Log(float64(d))*math.Log(float64(m))/2.25)
		}
	}
	for d := 0; d < len(lmpTable[0]); d++ {
		lmpTable[0][d] = (3 + d*d) / 2
		lmpTable[1][d] = 3 + d*d
	}
}

// Pruning margins, indexed by depth.
var futilityMargins = [8]int32{0, 120, 220, 320, 420, 520, 620, 720}
var rfpMargins = [8]int32{0, 100, 200, 300, 400, 500, 600, 700}

const (
	razorMargin        = 240
	razorMaxDepth      = 3
	rfpMaxDepth        = 7
	futilityMaxDepth   = 7
	lmpMaxDepth        = 8
	nullMoveMinDepth   = 2
	iidMinDepth        = 5
	seePruneMarginQS   = 100
	deltaMargin        = 200
	checkLMRBonusDepth = 6
)

// historyBonus is the shared update magnitude for the history and capture
// history tables at a given depth.
func historyBonus(depth int) int32 {
	return Min(int32(350*(depth+1)-550), 1550)
}

const historyMaxVal = 16384

// gravityUpdate applies a bonus with saturation toward the table limit, so
// repeated rewards flatten out instead of overflowing.
func gravityUpdate(slot *int32, bonus int32) {
	*slot += bonus - *slot*abs32(bonus)/historyMaxVal
}

// formatScore renders a UCI score field, converting mate distances to moves.
func formatScore(score int32) string {
	if score >= MateInMax {
		return fmt.Sprintf("mate %d", (MateScore-score+1)/2)
	}
	if score <= -MateInMax {
		return fmt.Sprintf("mate %d", -(MateScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

// matedIn returns the score of being mated at the given ply.
func matedIn(ply int) int32 { return -MateScore + int32(ply) }
