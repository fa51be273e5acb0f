package heronmg

import (
	"math/rand"
	"testing"
)

// TestMagicSlidersMatchReference checks the magic lookup against the ray
// reference for random occupancies on every square.
func TestMagicSlidersMatchReference(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for sq := Square(0); sq < 64; sq++ {
		for trial := 0; trial < 2000; trial++ {
			occ := rnd.Uint64() & rnd.Uint64() // sparse-ish occupancies
			if got, want := RookAttacks(occ, sq), slidingAttacksRef(sq, occ, true); got != want {
				t.Fatalf("rook attacks mismatch sq=%v occ=%016x: got %016x want %016x", sq, occ, got, want)
			}
			if got, want := BishopAttacks(occ, sq), slidingAttacksRef(sq, occ, false); got != want {
				t.Fatalf("bishop attacks mismatch sq=%v occ=%016x: got %016x want %016x", sq, occ, got, want)
			}
		}
	}
}

// TestMagicSlidersFullMaskSubsets walks every relevant-occupancy subset for a
// handful of squares, covering each table slot exactly.
func TestMagicSlidersFullMaskSubsets(t *testing.T) {
	for _, sq := range []Square{SqA1, SqE1, Square(27), Square(36), SqH8} {
		for _, rook := range []bool{true, false} {
			mask := slidingMask(sq, rook)
			occ := uint64(0)
			for {
				var got, want uint64
				if rook {
					got, want = RookAttacks(occ, sq), slidingAttacksRef(sq, occ, true)
				} else {
					got, want = BishopAttacks(occ, sq), slidingAttacksRef(sq, occ, false)
				}
				if got != want {
					t.Fatalf("slider mismatch sq=%v rook=%v occ=%016x", sq, rook, occ)
				}
				occ = (occ - mask) & mask
				if occ == 0 {
					break
				}
			}
		}
	}
}

func TestBetweenSubsetOfLine(t *testing.T) {
	for a := Square(0); a < 64; a++ {
		for b := Square(0); b < 64; b++ {
			if a == b || Line(a, b) == 0 {
				continue
			}
			want := Between(a, b) | SquareBB(b)
			if want&Line(a, b) != want {
				t.Errorf("between(%v,%v)+%v not within line", a, b, b)
			}
		}
	}
}

func TestBetweenEndpoints(t *testing.T) {
	if Between(SqA1, SqH8) != Line(SqA1, SqH8)&^SquareBB(SqA1)&^SquareBB(SqH8) {
		t.Error("a1-h8 between should be the open diagonal")
	}
	if Between(SqA1, SqB1) != 0 {
		t.Error("adjacent squares have nothing between them")
	}
	if Between(SqA1, Square(10)) != 0 {
		t.Error("unaligned squares have nothing between them")
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b Square
		want int
	}{
		{SqA1, SqA1, 0},
		{SqA1, SqH1, 7},
		{SqA1, SqH8, 7},
		{SqE1, SqE8, 7},
		{Square(27), Square(36), 1},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("distance(%v,%v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestPawnAttackTables(t *testing.T) {
	// e4 white pawn attacks d5 and f5.
	e4 := Square(28)
	want := SquareBB(Square(35)) | SquareBB(Square(37))
	if PawnAttacks(White, e4) != want {
		t.Errorf("white pawn attacks from e4 wrong: %016x", PawnAttacks(White, e4))
	}
	// a-file pawns attack one square only.
	a2 := Square(8)
	if popcount(PawnAttacks(White, a2)) != 1 {
		t.Error("a2 pawn should attack exactly b3")
	}
}
