package heronmg

// GenType selects which subset of pseudo-legal moves to generate.
type GenType int

const (
	// GenLoud: captures and promotions.
	GenLoud GenType = iota
	// GenQuiets: non-captures; promotions limited to underpromotions.
	GenQuiets
	// GenQuietChecks: non-captures that give direct or discovered check.
	GenQuietChecks
	// GenEvasions: moves that may resolve a check.
	GenEvasions
	// GenNonEvasions: every pseudo-legal move.
	GenNonEvasions
)

// MaxMoves bounds the per-node move buffer. 218 is the known maximum for a
// legal position; rounded up.
const MaxMoves = 256

// GenerateMoves appends pseudo-legal moves of the given type to the supplied
// buffer and returns the extended slice. Callers pass a stack-allocated
// buffer sliced to zero length; generation never allocates.
func (p *Position) GenerateMoves(gt GenType, moves []Move) []Move {
	us := p.sideToMove
	st := &p.st[p.ply]
	ksq := st.kingSq[us]
	occ := p.AllOccupancy()

	if gt == GenEvasions {
		moves = p.genKingMoves(moves, ^p.occupancy[us])
		// Double check: only the king may move.
		if st.checkers&(st.checkers-1) != 0 {
			return moves
		}
		checker := lsb(st.checkers)
		targets := betweenBB[ksq][checker] | bb(checker)
		moves = p.genPawnMoves(gt, moves, targets)
		moves = p.genPieceMoves(moves, targets)
		return moves
	}

	var targets uint64
	switch gt {
	case GenNonEvasions:
		targets = ^p.occupancy[us]
	case GenLoud:
		targets = p.occupancy[us.Other()]
	case GenQuiets, GenQuietChecks:
		targets = ^occ
	}

	moves = p.genPawnMoves(gt, moves, targets)

	if gt == GenQuietChecks {
		moves = p.genQuietCheckPieces(moves, targets)
	} else {
		moves = p.genPieceMoves(moves, targets)
		moves = p.genKingMoves(moves, targets)
		if gt == GenQuiets || gt == GenNonEvasions {
			moves = p.genCastles(moves)
		}
	}
	return moves
}

// genKingMoves emits king steps into the target mask. During evasions the
// legality filter rejects squares still covered by the checker's ray.
func (p *Position) genKingMoves(moves []Move, targets uint64) []Move {
	us := p.sideToMove
	ksq := p.st[p.ply].kingSq[us]
	dests := kingMoves[ksq] & targets
	for dests != 0 {
		moves = append(moves, NewMove(ksq, popLSB(&dests)))
	}
	return moves
}

// genPieceMoves emits knight/bishop/rook/queen moves into the target mask.
func (p *Position) genPieceMoves(moves []Move, targets uint64) []Move {
	us := p.sideToMove
	occ := p.AllOccupancy()

	for pieces := p.knights[us]; pieces != 0; {
		from := popLSB(&pieces)
		dests := knightMoves[from] & targets
		for dests != 0 {
			moves = append(moves, NewMove(from, popLSB(&dests)))
		}
	}
	for pieces := p.bishops[us]; pieces != 0; {
		from := popLSB(&pieces)
		dests := BishopAttacks(occ, from) & targets
		for dests != 0 {
			moves = append(moves, NewMove(from, popLSB(&dests)))
		}
	}
	for pieces := p.rooks[us]; pieces != 0; {
		from := popLSB(&pieces)
		dests := RookAttacks(occ, from) & targets
		for dests != 0 {
			moves = append(moves, NewMove(from, popLSB(&dests)))
		}
	}
	for pieces := p.queens[us]; pieces != 0; {
		from := popLSB(&pieces)
		dests := (RookAttacks(occ, from) | BishopAttacks(occ, from)) & targets
		for dests != 0 {
			moves = append(moves, NewMove(from, popLSB(&dests)))
		}
	}
	return moves
}

// genQuietCheckPieces emits quiet non-pawn moves that give check: direct
// checks via the precomputed check squares, and every quiet move of a
// discovered-check candidate.
func (p *Position) genQuietCheckPieces(moves []Move, targets uint64) []Move {
	us := p.sideToMove
	st := &p.st[p.ply]
	them := us.Other()
	theirKsq := st.kingSq[them]
	occ := p.AllOccupancy()
	dc := st.blockers[them] & p.occupancy[us]

	for pt := PieceTypeKnight; pt <= PieceTypeKing; pt++ {
		for pieces := p.PieceBB(us, pt); pieces != 0; {
			from := popLSB(&pieces)
			dests := attacksOf(pt, from, occ) & targets
			if dc&bb(from) != 0 {
				// Any departure off the king line discovers a check.
				if pt != PieceTypeKing {
					dests &^= lineBB[from][theirKsq]
					for extra := attacksOf(pt, from, occ) & targets & lineBB[from][theirKsq] & st.checkSquares[pt]; extra != 0; {
						moves = append(moves, NewMove(from, popLSB(&extra)))
					}
				} else {
					dests &^= lineBB[from][theirKsq]
				}
			} else {
				dests &= st.checkSquares[pt]
			}
			for dests != 0 {
				moves = append(moves, NewMove(from, popLSB(&dests)))
			}
		}
	}
	return moves
}

// genPawnMoves emits pawn pushes, captures, promotions and en passant per
// the generation type, constrained by the target mask.
func (p *Position) genPawnMoves(gt GenType, moves []Move, targets uint64) []Move {
	us := p.sideToMove
	st := &p.st[p.ply]
	them := us.Other()
	occ := p.AllOccupancy()
	empty := ^occ
	enemy := p.occupancy[them]
	pawns := p.pawns[us]

	var up Square
	var promoRank, doubleRank uint64
	if us == White {
		up = 8
		promoRank = rankBB[7]
		doubleRank = rankBB[3]
	} else {
		up = -8
		promoRank = rankBB[0]
		doubleRank = rankBB[4]
	}

	shiftUp := func(b uint64) uint64 {
		if us == White {
			return b << 8
		}
		return b >> 8
	}
	shiftUpEast := func(b uint64) uint64 {
		if us == White {
			return (b &^ fileBB[7]) << 9
		}
		return (b &^ fileBB[7]) >> 7
	}
	shiftUpWest := func(b uint64) uint64 {
		if us == White {
			return (b &^ fileBB[0]) << 7
		}
		return (b &^ fileBB[0]) >> 9
	}

	// Pushes, including push-promotions.
	single := shiftUp(pawns) & empty
	double := shiftUp(single) & empty & doubleRank

	pushTargets := targets
	switch gt {
	case GenLoud:
		// Loud takes only the promotion pushes from the push set.
		pushTargets = promoRank
	case GenQuietChecks:
		// Checking pushes only; promotions are not quiet.
		pushTargets = (targets & st.checkSquares[PieceTypePawn]) |
			(targets & p.discoveredPawnPushMask())
		pushTargets &^= promoRank
	}

	for dests := single & pushTargets; dests != 0; {
		to := popLSB(&dests)
		from := to - up
		if promoRank&bb(to) != 0 {
			moves = appendPromotions(moves, from, to, gt, false)
		} else {
			moves = append(moves, NewMove(from, to))
		}
	}
	if gt != GenLoud {
		doubleTargets := targets
		if gt == GenQuietChecks {
			doubleTargets = (targets & st.checkSquares[PieceTypePawn]) |
				(targets & p.discoveredPawnPushMask())
		}
		for dests := double & doubleTargets; dests != 0; {
			to := popLSB(&dests)
			moves = append(moves, NewMove(to-up-up, to))
		}
	}

	// Captures (including capture-promotions). Quiet tags skip these.
	if gt == GenLoud || gt == GenEvasions || gt == GenNonEvasions {
		capTargets := enemy
		if gt == GenEvasions {
			capTargets &= targets
		}
		for dests := shiftUpEast(pawns) & capTargets; dests != 0; {
			to := popLSB(&dests)
			var from Square
			if us == White {
				from = to - 9
			} else {
				from = to + 7
			}
			if promoRank&bb(to) != 0 {
				moves = appendPromotions(moves, from, to, gt, true)
			} else {
				moves = append(moves, NewMove(from, to))
			}
		}
		for dests := shiftUpWest(pawns) & capTargets; dests != 0; {
			to := popLSB(&dests)
			var from Square
			if us == White {
				from = to - 7
			} else {
				from = to + 9
			}
			if promoRank&bb(to) != 0 {
				moves = appendPromotions(moves, from, to, gt, true)
			} else {
				moves = append(moves, NewMove(from, to))
			}
		}

		if ep := st.epSquare; ep != NoSquare {
			capSq := ep - up
			if gt != GenEvasions || st.checkers&bb(capSq) != 0 || targets&bb(ep) != 0 {
				for attackers := pawnAttacks[them][ep] & pawns; attackers != 0; {
					moves = append(moves, NewEnPassant(popLSB(&attackers), ep))
				}
			}
		}
	}

	// Evasions also need push-promotions onto blocking squares; those were
	// covered by the push loop above via the target mask.
	return moves
}

// discoveredPawnPushMask returns destination squares whose pushes discover a
// check: every advance square of a pawn that blocks a slider aimed at the
// enemy king, off the blocking line.
func (p *Position) discoveredPawnPushMask() uint64 {
	us := p.sideToMove
	st := &p.st[p.ply]
	them := us.Other()
	theirKsq := st.kingSq[them]
	dcPawns := st.blockers[them] & p.pawns[us]
	if dcPawns == 0 {
		return 0
	}
	var mask uint64
	for dcPawns != 0 {
		from := popLSB(&dcPawns)
		var to Square
		if us == White {
			to = from + 8
		} else {
			to = from - 8
		}
		if to >= 0 && to < 64 && lineBB[from][theirKsq]&bb(to) == 0 {
			mask |= bb(to)
			// Second square of a double push discovers just the same.
			if us == White && from.Rank() == 1 {
				mask |= bb(to + 8)
			} else if us == Black && from.Rank() == 6 {
				mask |= bb(to - 8)
			}
		}
	}
	return mask
}

// appendPromotions enumerates promotion piece choices per generation type.
func appendPromotions(moves []Move, from, to Square, gt GenType, capture bool) []Move {
	switch gt {
	case GenLoud:
		if capture {
			moves = append(moves,
				NewPromotion(from, to, PieceTypeQueen),
				NewPromotion(from, to, PieceTypeRook),
				NewPromotion(from, to, PieceTypeBishop),
				NewPromotion(from, to, PieceTypeKnight))
		} else {
			moves = append(moves, NewPromotion(from, to, PieceTypeQueen))
		}
	case GenQuiets:
		moves = append(moves,
			NewPromotion(from, to, PieceTypeRook),
			NewPromotion(from, to, PieceTypeBishop),
			NewPromotion(from, to, PieceTypeKnight))
	default:
		moves = append(moves,
			NewPromotion(from, to, PieceTypeQueen),
			NewPromotion(from, to, PieceTypeRook),
			NewPromotion(from, to, PieceTypeBishop),
			NewPromotion(from, to, PieceTypeKnight))
	}
	return moves
}

// genCastles emits castling moves whose rights survive and whose path is
// clear; transit safety is left to the legality filter.
func (p *Position) genCastles(moves []Move) []Move {
	us := p.sideToMove
	st := &p.st[p.ply]
	occ := p.AllOccupancy()
	ksq := st.kingSq[us]

	var rights [2]CastlingRights
	if us == White {
		rights = [2]CastlingRights{CastlingWhiteK, CastlingWhiteQ}
	} else {
		rights = [2]CastlingRights{CastlingBlackK, CastlingBlackQ}
	}
	for side := CastleKingSide; side <= CastleQueenSide; side++ {
		if st.castling&rights[side] == 0 {
			continue
		}
		rookSq := p.castleRookFrom[us][side]
		if p.pieces[rookSq] != PieceFromType(us, PieceTypeRook) {
			continue
		}
		if p.castlePath[us][side]&occ != 0 {
			continue
		}
		moves = append(moves, NewCastle(ksq, rookSq))
	}
	return moves
}

// GenerateLegal appends all fully legal moves for the side to move.
func (p *Position) GenerateLegal(moves []Move) []Move {
	var buf [MaxMoves]Move
	var pseudo []Move
	if p.InCheck() {
		pseudo = p.GenerateMoves(GenEvasions, buf[:0])
	} else {
		pseudo = p.GenerateMoves(GenNonEvasions, buf[:0])
	}
	for _, m := range pseudo {
		if p.Legal(m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// ParseMove resolves coordinate text (or FRC king-takes-rook) against the
// legal moves of the position.
func (p *Position) ParseMove(s string) (Move, bool) {
	from, to, promo, err := ParseMoveText(s)
	if err != nil {
		return NoMove, false
	}
	var buf [MaxMoves]Move
	for _, m := range p.GenerateLegal(buf[:0]) {
		mTo := m.To()
		if m.Flag() == FlagCastle {
			// Accept both wire encodings: king destination and rook square.
			if m.From() == from && (mTo == to || m.castleKingTo() == to) && promo == PieceTypeNone {
				return m, true
			}
			continue
		}
		if m.From() == from && mTo == to && m.PromotionPieceType() == promo {
			return m, true
		}
	}
	return NoMove, false
}

// Perft counts leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var buf [MaxMoves]Move
	legal := p.GenerateLegal(buf[:0])
	if depth == 1 {
		return uint64(len(legal))
	}
	var nodes uint64
	for _, m := range legal {
		p.MakeMove(m)
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(m)
	}
	return nodes
}

// PerftDivide returns the per-move subtree counts at the given depth.
func (p *Position) PerftDivide(depth int) (map[string]uint64, uint64) {
	counts := make(map[string]uint64)
	var total uint64
	var buf [MaxMoves]Move
	for _, m := range p.GenerateLegal(buf[:0]) {
		p.MakeMove(m)
		n := p.Perft(depth - 1)
		p.UnmakeMove(m)
		name := m.String()
		if p.chess960 {
			name = m.StringFRC()
		}
		counts[name] = n
		total += n
	}
	return counts, total
}
