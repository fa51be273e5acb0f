package heronmg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartPos is the FEN string for the standard initial position.
const StartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// pieceFromChar converts a FEN character to the corresponding Piece.
func pieceFromChar(ch rune) Piece {
	switch ch {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// charFromPiece converts a Piece to its FEN character.
func charFromPiece(p Piece) byte {
	const chars = " PNBRQK  pnbrqk"
	return chars[p]
}

// ParseFEN parses a six-field FEN (the clock fields may be omitted) into a
// fresh Position. Castling accepts KQkq and Shredder-style file letters for
// Fischer-random rook placements. Positions with the side not to move in
// check are rejected.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, errors.New("invalid FEN: not enough fields")
	}

	p := &Position{st: make([]StateInfo, MaxGamePly)}
	st := &p.st[0]
	st.epSquare = NoSquare
	st.kingSq = [2]Square{NoSquare, NoSquare}

	// 1. Piece placement
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, errors.New("invalid FEN: incorrect number of ranks")
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc := pieceFromChar(ch)
			if pc == NoPiece {
				return nil, errors.New("invalid FEN: unrecognized piece character")
			}
			if file >= 8 {
				return nil, errors.New("invalid FEN: too many squares in rank")
			}
			sq := Square(rank*8 + file)
			p.addPiece(sq, pc)
			if pc.Type() == PieceTypeKing {
				if st.kingSq[pc.Color()] != NoSquare {
					return nil, errors.New("invalid FEN: duplicate king")
				}
				st.kingSq[pc.Color()] = sq
			}
			file++
		}
		if file != 8 {
			return nil, errors.New("invalid FEN: rank does not span eight files")
		}
	}
	if st.kingSq[White] == NoSquare || st.kingSq[Black] == NoSquare {
		return nil, errors.New("invalid FEN: missing king")
	}

	// 2. Side to move
	switch fields[1] {
	case "w":
		p.sideToMove = White
	case "b":
		p.sideToMove = Black
	default:
		return nil, errors.New("invalid FEN: bad side to move")
	}

	// 3. Castling availability
	if fields[2] != "-" {
		for _, ch := range fields[2] {
			var c Color
			var rookSq Square
			switch {
			case ch == 'K' || ch == 'Q' || (ch >= 'A' && ch <= 'H'):
				c = White
			case ch == 'k' || ch == 'q' || (ch >= 'a' && ch <= 'h'):
				c = Black
			default:
				return nil, errors.New("invalid FEN: bad castling field")
			}
			ksq := st.kingSq[c]
			rank := ksq.Rank()
			switch {
			case ch == 'K' || ch == 'k':
				rookSq = p.outermostRook(c, rank, true)
			case ch == 'Q' || ch == 'q':
				rookSq = p.outermostRook(c, rank, false)
			default:
				fileCh := byte(ch)
				if fileCh >= 'a' {
					fileCh -= 'a' - 'A'
				}
				rookSq = Square(rank*8 + int(fileCh-'A'))
				p.chess960 = true
			}
			if rookSq == NoSquare || p.pieces[rookSq] != PieceFromType(c, PieceTypeRook) {
				return nil, errors.New("invalid FEN: castling right without rook")
			}
			p.setCastlingRight(c, rookSq)
		}
	}

	// 4. En passant: recorded verbatim, but treated as set only when an
	// enemy pawn can actually take it; the hash sees capturable EP only.
	if fields[3] != "-" {
		if len(fields[3]) != 2 {
			return nil, errors.New("invalid FEN: bad en passant square")
		}
		f := fields[3][0]
		r := fields[3][1]
		if f < 'a' || f > 'h' || r < '1' || r > '8' {
			return nil, errors.New("invalid FEN: bad en passant square")
		}
		ep := Square(int(r-'1')*8 + int(f-'a'))
		us := p.sideToMove
		if pawnAttacks[us.Other()][ep]&p.pawns[us] != 0 {
			st.epSquare = ep
		}
	}

	// 5-6. Clocks
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, errors.New("invalid FEN: bad halfmove clock")
		}
		st.rule50 = n
	}
	p.fullmove = 1
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, errors.New("invalid FEN: bad fullmove number")
		}
		p.fullmove = n
	}

	st.key = p.ComputeZobrist()
	p.setCheckInfo()

	// The side not to move must not be in check.
	if p.attackedBy(st.kingSq[p.sideToMove.Other()], p.sideToMove, p.AllOccupancy()) {
		return nil, errors.New("invalid FEN: side not to move is in check")
	}
	return p, nil
}

// outermostRook finds the rook closest to the board edge on the king's side.
func (p *Position) outermostRook(c Color, rank int, kingside bool) Square {
	rooks := p.rooks[c] & rankBB[rank]
	if kingside {
		rooks &= ^uint64(0) << uint(p.st[0].kingSq[c]+1)
		if rooks == 0 {
			return NoSquare
		}
		return msb(rooks)
	}
	rooks &= (uint64(1) << uint(p.st[0].kingSq[c])) - 1
	if rooks == 0 {
		return NoSquare
	}
	return lsb(rooks)
}

// setCastlingRight registers one castling right and its precomputed
// geometry: the squares that must be empty and the king transit squares.
func (p *Position) setCastlingRight(c Color, rookSq Square) {
	st := &p.st[0]
	ksq := st.kingSq[c]
	side := CastleQueenSide
	if rookSq > ksq {
		side = CastleKingSide
	}
	var right CastlingRights
	if c == White {
		right = CastlingWhiteK
		if side == CastleQueenSide {
			right = CastlingWhiteQ
		}
	} else {
		right = CastlingBlackK
		if side == CastleQueenSide {
			right = CastlingBlackQ
		}
	}
	st.castling |= right
	p.castleRookFrom[c][side] = rookSq

	rank := ksq.Rank()
	var kingTo, rookTo Square
	if side == CastleKingSide {
		kingTo = Square(rank*8 + 6)
		rookTo = Square(rank*8 + 5)
	} else {
		kingTo = Square(rank*8 + 2)
		rookTo = Square(rank*8 + 3)
	}
	path := betweenBB[ksq][kingTo] | betweenBB[rookSq][rookTo] | bb(kingTo) | bb(rookTo)
	p.castlePath[c][side] = path &^ (bb(ksq) | bb(rookSq))
	p.kingPath[c][side] = betweenBB[ksq][kingTo] | bb(kingTo) | bb(ksq)

	p.castleMask[ksq] |= right
	p.castleMask[rookSq] |= right
}

// ToFEN renders the position as a six-field FEN string.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.pieces[rank*8+file]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(charFromPiece(pc))
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	st := &p.st[p.ply]
	if st.castling == 0 {
		sb.WriteByte('-')
	} else {
		write := func(c Color, side int, std byte) {
			if p.chess960 {
				ch := byte('A' + p.castleRookFrom[c][side].File())
				if c == Black {
					ch += 'a' - 'A'
				}
				sb.WriteByte(ch)
			} else {
				sb.WriteByte(std)
			}
		}
		if st.castling&CastlingWhiteK != 0 {
			write(White, CastleKingSide, 'K')
		}
		if st.castling&CastlingWhiteQ != 0 {
			write(White, CastleQueenSide, 'Q')
		}
		if st.castling&CastlingBlackK != 0 {
			write(Black, CastleKingSide, 'k')
		}
		if st.castling&CastlingBlackQ != 0 {
			write(Black, CastleQueenSide, 'q')
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(st.epSquare.String())
	fmt.Fprintf(&sb, " %d %d", st.rule50, p.fullmove)
	return sb.String()
}

// String renders an ASCII diagram with the FEN and hash, for the "d" command.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("  +---+---+---+---+---+---+---+---+\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d |", rank+1)
		for file := 0; file < 8; file++ {
			pc := p.pieces[rank*8+file]
			if pc == NoPiece {
				sb.WriteString("   |")
			} else {
				fmt.Fprintf(&sb, " %c |", charFromPiece(pc))
			}
		}
		sb.WriteString("\n  +---+---+---+---+---+---+---+---+\n")
	}
	sb.WriteString("    a   b   c   d   e   f   g   h\n\n")
	fmt.Fprintf(&sb, "FEN: %s\nKey: %016X\n", p.ToFEN(), p.Hash())
	return sb.String()
}
