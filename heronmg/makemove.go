package heronmg

// attacksOf returns the attack set of a piece type from sq under occ.
func attacksOf(pt PieceType, sq Square, occ uint64) uint64 {
	switch pt {
	case PieceTypeKnight:
		return knightMoves[sq]
	case PieceTypeBishop:
		return BishopAttacks(occ, sq)
	case PieceTypeRook:
		return RookAttacks(occ, sq)
	case PieceTypeQueen:
		return RookAttacks(occ, sq) | BishopAttacks(occ, sq)
	case PieceTypeKing:
		return kingMoves[sq]
	}
	return 0
}

// MakeMove applies a legal move, pushing a new state frame. The caller must
// have verified legality (generator output filtered through Legal).
func (p *Position) MakeMove(m Move) {
	prev := &p.st[p.ply]
	p.ply++
	st := &p.st[p.ply]

	st.castling = prev.castling
	st.epSquare = prev.epSquare
	st.rule50 = prev.rule50 + 1
	st.pliesFromNull = prev.pliesFromNull + 1
	st.key = prev.key
	st.kingSq = prev.kingSq
	st.captured = NoPiece
	st.dirtyCount = 0
	st.evalValid = false

	us := p.sideToMove
	them := us.Other()
	from := m.From()
	to := m.To()

	// Clear a stale en-passant key before anything else touches the hash.
	if st.epSquare != NoSquare {
		st.key ^= zobristEnPassant[st.epSquare.File()]
		st.epSquare = NoSquare
	}

	switch m.Flag() {
	case FlagCastle:
		// to is the rook square; both pieces may cross each other in FRC,
		// so remove both before placing either.
		side := CastleQueenSide
		if to > from {
			side = CastleKingSide
		}
		kingTo := m.castleKingTo()
		rookTo := castleRookTo(us, side)
		p.removePiece(from)
		p.removePiece(to)
		p.addPiece(kingTo, PieceFromType(us, PieceTypeKing))
		p.addPiece(rookTo, PieceFromType(us, PieceTypeRook))
		st.kingSq[us] = kingTo
		st.dirties[0] = DirtyPiece{Pc: PieceFromType(us, PieceTypeKing), From: from, To: kingTo}
		st.dirties[1] = DirtyPiece{Pc: PieceFromType(us, PieceTypeRook), From: to, To: rookTo}
		st.dirtyCount = 2

	case FlagEnPassant:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		capPc := p.removePiece(capSq)
		st.captured = capPc
		p.movePiece(from, to)
		st.rule50 = 0
		st.dirties[0] = DirtyPiece{Pc: p.pieces[to], From: from, To: to}
		st.dirties[1] = DirtyPiece{Pc: capPc, From: capSq, To: NoSquare}
		st.dirtyCount = 2

	case FlagPromotion:
		n := 0
		if captured := p.pieces[to]; captured != NoPiece {
			p.removePiece(to)
			st.captured = captured
			st.dirties[n] = DirtyPiece{Pc: captured, From: to, To: NoSquare}
			n++
		}
		pawn := p.removePiece(from)
		promo := PieceFromType(us, m.PromotionPieceType())
		p.addPiece(to, promo)
		st.rule50 = 0
		st.dirties[n] = DirtyPiece{Pc: pawn, From: from, To: NoSquare}
		st.dirties[n+1] = DirtyPiece{Pc: promo, From: NoSquare, To: to}
		st.dirtyCount = n + 2

	default:
		n := 0
		if captured := p.pieces[to]; captured != NoPiece {
			p.removePiece(to)
			st.captured = captured
			st.rule50 = 0
			st.dirties[n] = DirtyPiece{Pc: captured, From: to, To: NoSquare}
			n++
		}
		moved := p.pieces[from]
		p.movePiece(from, to)
		st.dirties[n] = DirtyPiece{Pc: moved, From: from, To: to}
		st.dirtyCount = n + 1

		switch moved.Type() {
		case PieceTypeKing:
			st.kingSq[us] = to
		case PieceTypePawn:
			st.rule50 = 0
			// Double push: record the en-passant square only when an enemy
			// pawn stands ready to take it, so the hash reflects capturable
			// en passant only.
			if to-from == 16 || from-to == 16 {
				ep := (from + to) / 2
				if pawnAttacks[us][ep]&p.pawns[them] != 0 {
					st.epSquare = ep
					st.key ^= zobristEnPassant[ep.File()]
				}
			}
		}
	}

	// Castling rights decay when king or rook squares are touched.
	if mask := p.castleMask[from] | p.castleMask[to]; st.castling&mask != 0 {
		st.key ^= zobristCastle[st.castling]
		st.castling &^= mask
		st.key ^= zobristCastle[st.castling]
	}

	p.sideToMove = them
	st.key ^= zobristSide
	if us == Black {
		p.fullmove++
	}

	p.setCheckInfo()
}

// UnmakeMove restores the position to before MakeMove(m). The hash and all
// copied fields come back with the dropped state frame.
func (p *Position) UnmakeMove(m Move) {
	st := &p.st[p.ply]
	them := p.sideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	switch m.Flag() {
	case FlagCastle:
		side := CastleQueenSide
		if to > from {
			side = CastleKingSide
		}
		p.removePiece(m.castleKingTo())
		p.removePiece(castleRookTo(us, side))
		p.addPiece(from, PieceFromType(us, PieceTypeKing))
		p.addPiece(to, PieceFromType(us, PieceTypeRook))

	case FlagEnPassant:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.movePiece(to, from)
		p.addPiece(capSq, st.captured)

	case FlagPromotion:
		p.removePiece(to)
		p.addPiece(from, PieceFromType(us, PieceTypePawn))
		if st.captured != NoPiece {
			p.addPiece(to, st.captured)
		}

	default:
		p.movePiece(to, from)
		if st.captured != NoPiece {
			p.addPiece(to, st.captured)
		}
	}

	p.sideToMove = us
	if us == Black {
		p.fullmove--
	}
	p.ply--
}

// castleRookTo returns the rook destination for a castling side.
func castleRookTo(c Color, side int) Square {
	rank := 0
	if c == Black {
		rank = 7
	}
	if side == CastleKingSide {
		return Square(rank*8 + 5) // f-file
	}
	return Square(rank*8 + 3) // d-file
}

// MakeNullMove passes the turn: no piece moves, the en-passant right is
// forfeited, and the accumulator carries forward unchanged.
func (p *Position) MakeNullMove() {
	prev := &p.st[p.ply]
	p.ply++
	st := &p.st[p.ply]

	st.castling = prev.castling
	st.epSquare = NoSquare
	st.rule50 = prev.rule50 + 1
	st.pliesFromNull = 0
	st.key = prev.key
	st.kingSq = prev.kingSq
	st.captured = NoPiece
	st.dirtyCount = 0
	st.evalValid = false

	if prev.epSquare != NoSquare {
		st.key ^= zobristEnPassant[prev.epSquare.File()]
	}
	p.sideToMove = p.sideToMove.Other()
	st.key ^= zobristSide

	p.setCheckInfo()
}

// UnmakeNullMove restores the position to before MakeNullMove.
func (p *Position) UnmakeNullMove() {
	p.sideToMove = p.sideToMove.Other()
	p.ply--
}

// Legal reports whether a pseudo-legal move from the generator leaves the
// mover's king safe.
func (p *Position) Legal(m Move) bool {
	st := &p.st[p.ply]
	us := p.sideToMove
	them := us.Other()
	ksq := st.kingSq[us]
	from := m.From()
	to := m.To()
	occ := p.AllOccupancy()

	switch m.Flag() {
	case FlagEnPassant:
		// Remove both pawns and slide ours in: the only move where two
		// pieces leave a king ray at once.
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		simOcc := occ&^bb(from)&^bb(capSq) | bb(to)
		if RookAttacks(simOcc, ksq)&(p.rooks[them]|p.queens[them]) != 0 {
			return false
		}
		if BishopAttacks(simOcc, ksq)&(p.bishops[them]|p.queens[them]) != 0 {
			return false
		}
		if knightMoves[ksq]&p.knights[them] != 0 {
			return false
		}
		return pawnAttacks[us][ksq]&(p.pawns[them]&^bb(capSq)) == 0

	case FlagCastle:
		if st.checkers != 0 {
			return false
		}
		side := CastleQueenSide
		if to > from {
			side = CastleKingSide
		}
		path := p.kingPath[us][side]
		for path != 0 {
			sq := popLSB(&path)
			if sq != from && p.attackedBy(sq, them, occ) {
				return false
			}
		}
		// FRC: the castling rook may itself be shielding the king.
		return !p.chess960 || st.blockers[us]&bb(to) == 0

	default:
		if p.pieces[from].Type() == PieceTypeKing {
			return !p.attackedBy(to, them, occ&^bb(from))
		}
		if st.blockers[us]&bb(from) != 0 && !aligned(from, to, ksq) {
			return false
		}
		if st.checkers != 0 {
			// Double check admits king moves only; a single checker must be
			// captured or blocked. Evasion targets guarantee this for
			// generated moves, re-verify for moves arriving off the wire.
			if st.checkers&(st.checkers-1) != 0 {
				return false
			}
			checker := lsb(st.checkers)
			if to != checker && betweenBB[ksq][checker]&bb(to) == 0 {
				return false
			}
		}
		return true
	}
}

// GivesCheck reports whether a legal move checks the opponent, without
// mutating the position.
func (p *Position) GivesCheck(m Move) bool {
	st := &p.st[p.ply]
	us := p.sideToMove
	them := us.Other()
	theirKsq := st.kingSq[them]
	from := m.From()
	to := m.To()
	occ := p.AllOccupancy()

	switch m.Flag() {
	case FlagPromotion:
		if st.blockers[them]&bb(from) != 0 && !aligned(from, to, theirKsq) {
			return true
		}
		return attacksOf(m.PromotionPieceType(), to, occ&^bb(from))&p.kings[them] != 0

	case FlagEnPassant:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		if pawnAttacks[us][to]&p.kings[them] != 0 {
			return true
		}
		simOcc := occ&^bb(from)&^bb(capSq) | bb(to)
		return RookAttacks(simOcc, theirKsq)&(p.rooks[us]|p.queens[us]) != 0 ||
			BishopAttacks(simOcc, theirKsq)&(p.bishops[us]|p.queens[us]) != 0

	case FlagCastle:
		side := CastleQueenSide
		if to > from {
			side = CastleKingSide
		}
		kingTo := m.castleKingTo()
		rookTo := castleRookTo(us, side)
		simOcc := occ&^bb(from)&^bb(to) | bb(kingTo) | bb(rookTo)
		return RookAttacks(simOcc, theirKsq)&bb(rookTo) != 0

	default:
		if st.checkSquares[p.pieces[from].Type()]&bb(to) != 0 {
			return true
		}
		return st.blockers[them]&bb(from) != 0 && !aligned(from, to, theirKsq)
	}
}
