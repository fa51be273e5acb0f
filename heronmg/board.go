package heronmg

import "math/bits"

// Piece constants and types for pieces and colors
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	// Black pieces are encoded as (white piece type | 8) so that
	// - piece & 7 gives the type in [1..6]
	// - piece & 8 != 0 indicates Black
	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// PieceType is a colorless representation of a chess piece.
type PieceType uint8

const (
	PieceTypeNone   PieceType = 0
	PieceTypePawn   PieceType = 1
	PieceTypeKnight PieceType = 2
	PieceTypeBishop PieceType = 3
	PieceTypeRook   PieceType = 4
	PieceTypeQueen  PieceType = 5
	PieceTypeKing   PieceType = 6
)

// Type returns the colorless type of the piece (ignores side).
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the side that owns the piece. NoPiece defaults to White.
func (p Piece) Color() Color {
	if p&8 != 0 {
		return Black
	}
	return White
}

// PieceFromType combines a colorless type with a side to produce a Piece.
func PieceFromType(c Color, pt PieceType) Piece {
	if pt == PieceTypeNone {
		return NoPiece
	}
	return Piece(pt) | Piece(c<<3)
}

// Castling rights bit flags
type CastlingRights uint8

const (
	CastlingWhiteK CastlingRights = 1 << iota
	CastlingWhiteQ
	CastlingBlackK
	CastlingBlackQ
)

const (
	// CastleKingSide / CastleQueenSide index the per-side castling arrays.
	CastleKingSide  = 0
	CastleQueenSide = 1
)

// PieceValue holds the centipawn material value per piece type, used by the
// material counters, SEE and quiescence delta pruning.
var PieceValue = [7]int32{0, 100, 320, 330, 500, 950, 0}

// MaxGamePly bounds the state stack: longest representable game plus the
// deepest search on top of it.
const MaxGamePly = 1024

// DirtyPiece records one board change of a move for the NNUE accumulator:
// From == NoSquare means the piece appeared, To == NoSquare it disappeared.
type DirtyPiece struct {
	Pc   Piece
	From Square
	To   Square
}

// StateInfo is the per-ply record of everything a move destroys plus the
// derived check information of the resulting position.
type StateInfo struct {
	castling      CastlingRights
	epSquare      Square
	rule50        int
	pliesFromNull int
	captured      Piece
	key           uint64
	checkers      uint64
	blockers      [2]uint64
	pinners       [2]uint64
	checkSquares  [7]uint64
	kingSq        [2]Square
	dirties       [3]DirtyPiece
	dirtyCount    int
	evalScore     int32
	evalValid     bool
}

// Position is a chess position with its full make/unmake history. The state
// stack is preallocated; making and unmaking moves never allocates.
type Position struct {
	pawns   [2]uint64
	knights [2]uint64
	bishops [2]uint64
	rooks   [2]uint64
	queens  [2]uint64
	kings   [2]uint64

	occupancy [2]uint64

	pieces [64]Piece

	sideToMove Color
	fullmove   int
	chess960   bool

	// Castling geometry, fixed at load time. Indexed [color][side].
	castleRookFrom [2][2]Square
	castlePath     [2][2]uint64 // must be empty to castle
	kingPath       [2][2]uint64 // king transit squares incl. from and to
	castleMask     [64]CastlingRights

	st  []StateInfo
	ply int

	material        [2]int32
	nonPawnMaterial [2]int32
}

// Clone deep-copies the position, including its state stack, so a search
// thread can own it outright.
func (p *Position) Clone() *Position {
	q := *p
	q.st = make([]StateInfo, len(p.st))
	copy(q.st, p.st)
	return &q
}

// ==========================
// Accessors
// ==========================

// Hash returns the current zobrist key.
func (p *Position) Hash() uint64 { return p.st[p.ply].key }

// SideToMove reports which side is to play.
func (p *Position) SideToMove() Color { return p.sideToMove }

// Ply returns the index of the current state in the stack.
func (p *Position) Ply() int { return p.ply }

// KingSquare returns the king square of the given color.
func (p *Position) KingSquare(c Color) Square { return p.st[p.ply].kingSq[c] }

// PieceAt returns the piece on a square.
func (p *Position) PieceAt(sq Square) Piece { return p.pieces[sq] }

// AllOccupancy returns a bitboard of all occupied squares.
func (p *Position) AllOccupancy() uint64 { return p.occupancy[0] | p.occupancy[1] }

// ColorOccupancy returns the occupancy bitboard for the given color.
func (p *Position) ColorOccupancy(c Color) uint64 { return p.occupancy[c] }

// PieceBB returns the bitboard of one piece type for one color.
func (p *Position) PieceBB(c Color, pt PieceType) uint64 {
	switch pt {
	case PieceTypePawn:
		return p.pawns[c]
	case PieceTypeKnight:
		return p.knights[c]
	case PieceTypeBishop:
		return p.bishops[c]
	case PieceTypeRook:
		return p.rooks[c]
	case PieceTypeQueen:
		return p.queens[c]
	case PieceTypeKing:
		return p.kings[c]
	}
	return 0
}

// Checkers returns the pieces currently giving check to the side to move.
func (p *Position) Checkers() uint64 { return p.st[p.ply].checkers }

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.st[p.ply].checkers != 0 }

// HalfmoveClock returns plies since the last capture or pawn move.
func (p *Position) HalfmoveClock() int { return p.st[p.ply].rule50 }

// PliesFromNull returns plies since the last null move (or since the root).
func (p *Position) PliesFromNull() int { return p.st[p.ply].pliesFromNull }

// FullmoveNumber returns the full move counter.
func (p *Position) FullmoveNumber() int { return p.fullmove }

// EnPassantSquare returns the capturable en-passant target, or NoSquare.
func (p *Position) EnPassantSquare() Square { return p.st[p.ply].epSquare }

// CastlingRightsMask returns the raw rights mask.
func (p *Position) CastlingRightsMask() CastlingRights { return p.st[p.ply].castling }

// CapturedPiece returns the piece captured by the move that produced the
// current state, or NoPiece.
func (p *Position) CapturedPiece() Piece { return p.st[p.ply].captured }

// Chess960 reports whether the position was loaded with FRC castling rules.
func (p *Position) Chess960() bool { return p.chess960 }

// SetChess960 switches castle-move formatting and FEN output to FRC style.
func (p *Position) SetChess960(on bool) { p.chess960 = on }

// CastleRookSquare returns the rook start square for a castling side.
func (p *Position) CastleRookSquare(c Color, side int) Square {
	return p.castleRookFrom[c][side]
}

// Material returns the total piece material for a color in centipawns.
func (p *Position) Material(c Color) int32 { return p.material[c] }

// NonPawnMaterial returns material excluding pawns for a color.
func (p *Position) NonPawnMaterial(c Color) int32 { return p.nonPawnMaterial[c] }

// PieceCount returns the number of pieces on the board, kings included.
func (p *Position) PieceCount() int { return popcount(p.AllOccupancy()) }

// State history accessors used by the NNUE accumulator sync.

// StateKey returns the zobrist key of the state at index i.
func (p *Position) StateKey(i int) uint64 { return p.st[i].key }

// StateKings returns both king squares of the state at index i.
func (p *Position) StateKings(i int) (white, black Square) {
	return p.st[i].kingSq[White], p.st[i].kingSq[Black]
}

// StateDirties returns the board changes that produced the state at index i.
func (p *Position) StateDirties(i int) []DirtyPiece {
	return p.st[i].dirties[:p.st[i].dirtyCount]
}

// StaticEval returns the cached static evaluation for the current state.
func (p *Position) StaticEval() (int32, bool) {
	return p.st[p.ply].evalScore, p.st[p.ply].evalValid
}

// SetStaticEval caches the static evaluation for the current state.
func (p *Position) SetStaticEval(score int32) {
	p.st[p.ply].evalScore = score
	p.st[p.ply].evalValid = true
}

// ==========================
// Board mutation helpers
// ==========================

func (p *Position) pieceBBPtr(c Color, pt PieceType) *uint64 {
	switch pt {
	case PieceTypePawn:
		return &p.pawns[c]
	case PieceTypeKnight:
		return &p.knights[c]
	case PieceTypeBishop:
		return &p.bishops[c]
	case PieceTypeRook:
		return &p.rooks[c]
	case PieceTypeQueen:
		return &p.queens[c]
	default:
		return &p.kings[c]
	}
}

// addPiece places a piece on an empty square, updating bitboards, occupancy,
// zobrist and material.
func (p *Position) addPiece(sq Square, pc Piece) {
	c := pc.Color()
	pt := pc.Type()
	p.pieces[sq] = pc
	p.occupancy[c] |= bb(sq)
	*p.pieceBBPtr(c, pt) |= bb(sq)
	p.st[p.ply].key ^= zobristPiece[pc][sq]
	p.material[c] += PieceValue[pt]
	if pt != PieceTypePawn {
		p.nonPawnMaterial[c] += PieceValue[pt]
	}
}

// removePiece removes the piece from a square, undoing addPiece's updates.
func (p *Position) removePiece(sq Square) Piece {
	pc := p.pieces[sq]
	if pc == NoPiece {
		return NoPiece
	}
	c := pc.Color()
	pt := pc.Type()
	p.pieces[sq] = NoPiece
	p.occupancy[c] &^= bb(sq)
	*p.pieceBBPtr(c, pt) &^= bb(sq)
	p.st[p.ply].key ^= zobristPiece[pc][sq]
	p.material[c] -= PieceValue[pt]
	if pt != PieceTypePawn {
		p.nonPawnMaterial[c] -= PieceValue[pt]
	}
	return pc
}

// movePiece slides a piece between two squares without capture handling.
func (p *Position) movePiece(from, to Square) {
	pc := p.pieces[from]
	c := pc.Color()
	pt := pc.Type()
	fromTo := bb(from) | bb(to)
	p.pieces[from] = NoPiece
	p.pieces[to] = pc
	p.occupancy[c] ^= fromTo
	*p.pieceBBPtr(c, pt) ^= fromTo
	p.st[p.ply].key ^= zobristPiece[pc][from] ^ zobristPiece[pc][to]
}

// ==========================
// Attack queries
// ==========================

// AttackersTo returns all pieces of both colors attacking sq under occ.
func (p *Position) AttackersTo(sq Square, occ uint64) uint64 {
	return pawnAttacks[White][sq]&p.pawns[Black] |
		pawnAttacks[Black][sq]&p.pawns[White] |
		knightMoves[sq]&(p.knights[White]|p.knights[Black]) |
		kingMoves[sq]&(p.kings[White]|p.kings[Black]) |
		RookAttacks(occ, sq)&(p.rooks[White]|p.rooks[Black]|p.queens[White]|p.queens[Black]) |
		BishopAttacks(occ, sq)&(p.bishops[White]|p.bishops[Black]|p.queens[White]|p.queens[Black])
}

// attackedBy reports whether any piece of color c attacks sq under occ.
func (p *Position) attackedBy(sq Square, c Color, occ uint64) bool {
	if pawnAttacks[c.Other()][sq]&p.pawns[c] != 0 {
		return true
	}
	if knightMoves[sq]&p.knights[c] != 0 {
		return true
	}
	if kingMoves[sq]&p.kings[c] != 0 {
		return true
	}
	if RookAttacks(occ, sq)&(p.rooks[c]|p.queens[c]) != 0 {
		return true
	}
	return BishopAttacks(occ, sq)&(p.bishops[c]|p.queens[c]) != 0
}

// sliderBlockers computes the pieces blocking slider attacks from the given
// sniper set toward sq, and the snipers that pin exactly one blocker.
func (p *Position) sliderBlockers(sliders uint64, sq Square) (blockers, pinners uint64) {
	occ := p.AllOccupancy()
	snipers := (RookAttacks(0, sq)&(p.rooks[White]|p.rooks[Black]|p.queens[White]|p.queens[Black]) |
		BishopAttacks(0, sq)&(p.bishops[White]|p.bishops[Black]|p.queens[White]|p.queens[Black])) & sliders
	occNoSnipers := occ &^ snipers
	for snipers != 0 {
		sniper := popLSB(&snipers)
		between := betweenBB[sq][sniper] & occNoSnipers
		if between != 0 && between&(between-1) == 0 {
			blockers |= between
			pinners |= bb(sniper)
		}
	}
	return blockers, pinners
}

// setCheckInfo recomputes the derived check state for the current ply:
// checkers against the side to move, blockers and pinners for both kings,
// and the squares from which each piece type would check the enemy king.
func (p *Position) setCheckInfo() {
	st := &p.st[p.ply]
	us := p.sideToMove
	them := us.Other()
	occ := p.AllOccupancy()

	ourKsq := st.kingSq[us]
	st.checkers = p.AttackersTo(ourKsq, occ) & p.occupancy[them]

	st.blockers[White], st.pinners[White] = p.sliderBlockers(p.occupancy[Black], st.kingSq[White])
	st.blockers[Black], st.pinners[Black] = p.sliderBlockers(p.occupancy[White], st.kingSq[Black])

	theirKsq := st.kingSq[them]
	st.checkSquares[PieceTypePawn] = pawnAttacks[them][theirKsq]
	st.checkSquares[PieceTypeKnight] = knightMoves[theirKsq]
	st.checkSquares[PieceTypeBishop] = BishopAttacks(occ, theirKsq)
	st.checkSquares[PieceTypeRook] = RookAttacks(occ, theirKsq)
	st.checkSquares[PieceTypeQueen] = st.checkSquares[PieceTypeBishop] | st.checkSquares[PieceTypeRook]
	st.checkSquares[PieceTypeKing] = 0
}

// BlockersForKing returns the pieces shielding c's king from sliders.
func (p *Position) BlockersForKing(c Color) uint64 { return p.st[p.ply].blockers[c] }

// ==========================
// Draw detection
// ==========================

// IsDraw reports a 50-move, repetition or insufficient-material draw.
// plyFromRoot separates game history (threefold required) from search
// history (a single repetition suffices to score a draw).
func (p *Position) IsDraw(plyFromRoot int) bool {
	st := &p.st[p.ply]
	if st.rule50 >= 100 && (st.checkers == 0 || p.hasLegalMoves()) {
		return true
	}
	if p.isRepetition(plyFromRoot) {
		return true
	}
	return p.InsufficientMaterial()
}

// isRepetition scans backward in steps of two plies, bounded by the
// halfmove clock and the last null move.
func (p *Position) isRepetition(plyFromRoot int) bool {
	st := &p.st[p.ply]
	limit := st.rule50
	if st.pliesFromNull < limit {
		limit = st.pliesFromNull
	}
	rootIdx := p.ply - plyFromRoot
	count := 0
	for back := 4; back <= limit; back += 2 {
		idx := p.ply - back
		if idx < 0 {
			break
		}
		if p.st[idx].key == st.key {
			if idx >= rootIdx {
				return true // repetition inside the search tree
			}
			count++
			if count >= 2 {
				return true // threefold against game history
			}
		}
	}
	return false
}

// InsufficientMaterial reports a dead position: bare kings, or a single
// minor piece per side with no pawns, rooks or queens.
func (p *Position) InsufficientMaterial() bool {
	if p.pawns[White]|p.pawns[Black]|p.rooks[White]|p.rooks[Black]|p.queens[White]|p.queens[Black] != 0 {
		return false
	}
	minorsW := p.knights[White] | p.bishops[White]
	minorsB := p.knights[Black] | p.bishops[Black]
	return popcount(minorsW) <= 1 && popcount(minorsB) <= 1
}

// hasLegalMoves reports whether the side to move has any legal move.
func (p *Position) hasLegalMoves() bool {
	var buf [MaxMoves]Move
	return len(p.GenerateLegal(buf[:0])) > 0
}

// HasLegalMoves reports whether the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool { return p.hasLegalMoves() }

// ==========================
// Validation
// ==========================

// Validate checks internal consistency between pieces[], the per-piece
// bitboards, occupancy, material and the zobrist key.
func (p *Position) Validate() bool {
	var occ [2]uint64
	var byType [2][7]uint64
	var mat, npm [2]int32
	for sq := Square(0); sq < 64; sq++ {
		pc := p.pieces[sq]
		if pc == NoPiece {
			continue
		}
		c := pc.Color()
		pt := pc.Type()
		occ[c] |= bb(sq)
		byType[c][pt] |= bb(sq)
		mat[c] += PieceValue[pt]
		if pt != PieceTypePawn {
			npm[c] += PieceValue[pt]
		}
	}
	if occ != p.occupancy || p.occupancy[White]&p.occupancy[Black] != 0 {
		return false
	}
	for c := White; c <= Black; c++ {
		if byType[c][PieceTypePawn] != p.pawns[c] || byType[c][PieceTypeKnight] != p.knights[c] ||
			byType[c][PieceTypeBishop] != p.bishops[c] || byType[c][PieceTypeRook] != p.rooks[c] ||
			byType[c][PieceTypeQueen] != p.queens[c] || byType[c][PieceTypeKing] != p.kings[c] {
			return false
		}
		if popcount(p.kings[c]) != 1 {
			return false
		}
		if mat[c] != p.material[c] || npm[c] != p.nonPawnMaterial[c] {
			return false
		}
		if Square(bits.TrailingZeros64(p.kings[c])) != p.st[p.ply].kingSq[c] {
			return false
		}
	}
	return p.st[p.ply].key == p.ComputeZobrist()
}
