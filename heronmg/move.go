package heronmg

import (
	"errors"
	"strings"
)

// Move encodes a chess move in 16 bits:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bits 12-13 promotion piece (0=N, 1=B, 2=R, 3=Q; valid only with FlagPromotion)
//	bits 14-15 flag
//
// Castling moves are stored as king-from, rook-square, for both standard and
// Fischer-random games; String converts to the wire form the GUI expects.
type Move uint16

const NoMove Move = 0

const (
	FlagNone      = 0
	FlagPromotion = 1
	FlagEnPassant = 2
	FlagCastle    = 3
)

const (
	moveToShift    = 6
	movePromoShift = 12
	moveFlagShift  = 14
)

// NewMove constructs a plain move.
func NewMove(from, to Square) Move {
	return Move(uint16(from) | uint16(to)<<moveToShift)
}

// NewPromotion constructs a promotion move to the given piece type.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(uint16(from) | uint16(to)<<moveToShift |
		uint16(promo-PieceTypeKnight)<<movePromoShift | FlagPromotion<<moveFlagShift)
}

// NewEnPassant constructs an en-passant capture.
func NewEnPassant(from, to Square) Move {
	return Move(uint16(from) | uint16(to)<<moveToShift | FlagEnPassant<<moveFlagShift)
}

// NewCastle constructs a castling move from the king square to the rook square.
func NewCastle(kingFrom, rookSq Square) Move {
	return Move(uint16(kingFrom) | uint16(rookSq)<<moveToShift | FlagCastle<<moveFlagShift)
}

// From returns the source square of the move.
func (m Move) From() Square { return Square(m & 0x3F) }

// To returns the destination square. For castling this is the rook square.
func (m Move) To() Square { return Square((m >> moveToShift) & 0x3F) }

// Flag returns the special move flag.
func (m Move) Flag() int { return int(m>>moveFlagShift) & 0x3 }

// PromotionPieceType returns the promoted-to type, or PieceTypeNone.
func (m Move) PromotionPieceType() PieceType {
	if m.Flag() != FlagPromotion {
		return PieceTypeNone
	}
	return PieceType((m>>movePromoShift)&0x3) + PieceTypeKnight
}

// castleKingTo maps a castle move to the king destination square in the
// standard encoding (g- or c-file on the back rank).
func (m Move) castleKingTo() Square {
	rank := m.From().Rank()
	if m.To() > m.From() {
		return Square(rank*8 + 6) // g-file
	}
	return Square(rank*8 + 2) // c-file
}

var promoChars = [4]byte{'n', 'b', 'r', 'q'}

// String renders the move in long algebraic notation for standard chess:
// castles print as king-from/king-to. Use StringFRC for 960 output.
func (m Move) String() string { return m.text(false) }

// StringFRC renders the move with castling as king-captures-own-rook, the
// form mandated for Fischer-random games.
func (m Move) StringFRC() string { return m.text(true) }

func (m Move) text(frc bool) string {
	if m == NoMove {
		return "0000"
	}
	to := m.To()
	if m.Flag() == FlagCastle && !frc {
		to = m.castleKingTo()
	}
	s := m.From().String() + to.String()
	if m.Flag() == FlagPromotion {
		s += string(promoChars[(m>>movePromoShift)&0x3])
	}
	return s
}

// ParseMoveText parses coordinate notation ("e2e4", "e7e8q") into its raw
// components without reference to a position. Castling cannot be
// distinguished here; use Position.ParseMove to resolve against legal moves.
func ParseMoveText(s string) (from, to Square, promo PieceType, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 || len(s) > 5 {
		return NoSquare, NoSquare, PieceTypeNone, errors.New("malformed move string")
	}
	parseSq := func(fs, rs byte) (Square, bool) {
		if fs < 'a' || fs > 'h' || rs < '1' || rs > '8' {
			return NoSquare, false
		}
		return Square(int(rs-'1')*8 + int(fs-'a')), true
	}
	var ok bool
	if from, ok = parseSq(s[0], s[1]); !ok {
		return NoSquare, NoSquare, PieceTypeNone, errors.New("malformed from square")
	}
	if to, ok = parseSq(s[2], s[3]); !ok {
		return NoSquare, NoSquare, PieceTypeNone, errors.New("malformed to square")
	}
	promo = PieceTypeNone
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = PieceTypeKnight
		case 'b':
			promo = PieceTypeBishop
		case 'r':
			promo = PieceTypeRook
		case 'q':
			promo = PieceTypeQueen
		default:
			return NoSquare, NoSquare, PieceTypeNone, errors.New("malformed promotion piece")
		}
	}
	return from, to, promo, nil
}
