package engine

import (
	mg "heron/heronmg"
)

type scoredMove struct {
	move  mg.Move
	score int32
}

type moveList struct {
	moves []scoredMove
}

// Most Valuable Victim - Least Valuable Aggressor; used to score captures.
// Row is the victim type, column the aggressor type.
var mvvLva = [7][7]int32{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 15}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 25}, // victim Knight
	{0, 34, 33, 32, 31, 30, 35}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 45}, // victim Rook
	{0, 54, 53, 52, 51, 50, 55}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},       // victim King
}

// Move ordering offsets. The TT move goes first, then promotions, then captures by MVV/LVA
// plus capture history, then killers and counters, then quiets by history.
const (
	ttMoveScore     int32 = 1 << 30
	promotionOffset int32 = 1 << 28
	captureOffset   int32 = 1 << 26
	killerOffset    int32 = 1 << 24
	counterOffset   int32 = 1 << 23
)

// orderNextMove selection-sorts the best remaining move to currIndex.
func orderNextMove(currIndex int, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score

	for i := currIndex + 1; i < len(moves.moves); i++ {
		if moves.moves[i].score > bestScore {
			bestIndex = i
			bestScore = moves.moves[i].score
		}
	}
	moves.moves[currIndex], moves.moves[bestIndex] = moves.moves[bestIndex], moves.moves[currIndex]
}

// capturedType resolves what a capture takes, seeing through en passant.
func capturedType(pos *mg.Position, m mg.Move) mg.PieceType {
	if m.Flag() == mg.FlagEnPassant {
		return mg.PieceTypePawn
	}
	return pos.PieceAt(m.To()).Type()
}

// isCapture reports whether the move takes material.
func isCapture(pos *mg.Position, m mg.Move) bool {
	if m.Flag() == mg.FlagEnPassant {
		return true
	}
	if m.Flag() == mg.FlagCastle {
		return false
	}
	return pos.PieceAt(m.To()) != mg.NoPiece
}

// scoreMoves fills the move list with ordering scores for the main search.
func (t *Thread) scoreMoves(pos *mg.Position, moves []mg.Move, ply int, ttMove, prevMove mg.Move, buf []scoredMove) moveList {
	us := pos.SideToMove()
	list := moveList{moves: buf[:len(moves)]}

	for i, m := range moves {
		var score int32
		switch {
		case m == ttMove:
			score = ttMoveScore
		case m.Flag() == mg.FlagPromotion:
			score = promotionOffset + mg.PieceValue[m.PromotionPieceType()]
			if captured := capturedType(pos, m); captured != mg.PieceTypeNone {
				score += mg.PieceValue[captured]
			}
		case isCapture(pos, m):
			victim := capturedType(pos, m)
			aggressor := pos.PieceAt(m.From()).Type()
			score = captureOffset + mvvLva[victim][aggressor]*64 +
				t.captureHistory.Get(us, aggressor, m.To(), victim)
		case t.killers.moves[ply][0] == m:
			score = killerOffset + 200
		case t.killers.moves[ply][1] == m:
			score = killerOffset
		case t.counters.Get(us, prevMove) == m:
			score = counterOffset
		default:
			score = t.history.Get(us, m)
		}
		list.moves[i] = scoredMove{move: m, score: score}
	}
	return list
}

// scoreCaptures orders the quiescence move list: promotions first, then
// MVV/LVA with capture history.
func (t *Thread) scoreCaptures(pos *mg.Position, moves []mg.Move, ttMove mg.Move, buf []scoredMove) moveList {
	us := pos.SideToMove()
	list := moveList{moves: buf[:len(moves)]}

	for i, m := range moves {
		var score int32
		switch {
		case m == ttMove:
			score = ttMoveScore
		case m.Flag() == mg.FlagPromotion:
			score = promotionOffset + mg.PieceValue[m.PromotionPieceType()]
		default:
			victim := capturedType(pos, m)
			aggressor := pos.PieceAt(m.From()).Type()
			score = mvvLva[victim][aggressor]*64 +
				t.captureHistory.Get(us, aggressor, m.To(), victim)
		}
		list.moves[i] = scoredMove{move: m, score: score}
	}
	return list
}
