package heronmg

// Magic bitboard implementation for sliding piece attacks.
// Attack sets are looked up from precomputed tables addressed by
// (occupancy & mask) * magic >> shift, plus a per-square offset.

type magicEntry struct {
	mask   uint64
	magic  uint64
	shift  uint8
	offset uint32
}

var (
	bishopMagics [64]magicEntry
	rookMagics   [64]magicEntry

	bishopTable [5248]uint64
	rookTable   [102400]uint64
)

var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

func initMagics() {
	var offset uint32
	for sq := Square(0); sq < 64; sq++ {
		mask := slidingMask(sq, false)
		nbits := popcount(mask)
		bishopMagics[sq] = magicEntry{
			mask:   mask,
			magic:  bishopMagicNumbers[sq],
			shift:  uint8(64 - nbits),
			offset: offset,
		}
		fillAttackTable(sq, &bishopMagics[sq], bishopTable[:], false)
		offset += 1 << uint(nbits)
	}
	offset = 0
	for sq := Square(0); sq < 64; sq++ {
		mask := slidingMask(sq, true)
		nbits := popcount(mask)
		rookMagics[sq] = magicEntry{
			mask:   mask,
			magic:  rookMagicNumbers[sq],
			shift:  uint8(64 - nbits),
			offset: offset,
		}
		fillAttackTable(sq, &rookMagics[sq], rookTable[:], true)
		offset += 1 << uint(nbits)
	}
}

// slidingMask is the relevant-occupancy mask: the rays from sq with the board
// edge squares stripped off.
func slidingMask(sq Square, rook bool) uint64 {
	var mask uint64
	if rook {
		mask |= rookRays[sq][0] &^ rankBB[7]
		mask |= rookRays[sq][1] &^ rankBB[0]
		mask |= rookRays[sq][2] &^ fileBB[7]
		mask |= rookRays[sq][3] &^ fileBB[0]
	} else {
		edges := rankBB[0] | rankBB[7] | fileBB[0] | fileBB[7]
		for d := 0; d < 4; d++ {
			mask |= bishopRays[sq][d] &^ edges
		}
	}
	return mask
}

// fillAttackTable enumerates every subset of the mask (carry-rippler) and
// stores the ray-scanned attack set at its magic index.
func fillAttackTable(sq Square, m *magicEntry, table []uint64, rook bool) {
	occ := uint64(0)
	for {
		idx := m.offset + uint32((occ*m.magic)>>m.shift)
		table[idx] = slidingAttacksRef(sq, occ, rook)
		occ = (occ - m.mask) & m.mask
		if occ == 0 {
			break
		}
	}
}

// slidingAttacksRef is the ray-by-ray reference used to seed the tables and
// to validate them in tests.
func slidingAttacksRef(sq Square, occ uint64, rook bool) uint64 {
	var rays *[64][4]uint64
	if rook {
		rays = &rookRays
	} else {
		rays = &bishopRays
	}
	var attacks uint64
	for d := 0; d < 4; d++ {
		ray := rays[sq][d]
		attacks |= ray
		if blockers := ray & occ; blockers != 0 {
			var first Square
			if towardHigherBits(d, rook) {
				first = lsb(blockers)
			} else {
				first = msb(blockers)
			}
			attacks &^= rays[first][d]
		}
	}
	return attacks
}

// towardHigherBits reports whether a direction index scans from low bit to
// high bit (N/E for rooks, NE/NW for bishops).
func towardHigherBits(d int, rook bool) bool {
	if rook {
		return d == 0 || d == 2
	}
	return d == 0 || d == 1
}

// RookAttacks returns the rook attack set from sq under the given occupancy.
func RookAttacks(occ uint64, sq Square) uint64 {
	m := &rookMagics[sq]
	return rookTable[m.offset+uint32(((occ&m.mask)*m.magic)>>m.shift)]
}

// BishopAttacks returns the bishop attack set from sq under the given occupancy.
func BishopAttacks(occ uint64, sq Square) uint64 {
	m := &bishopMagics[sq]
	return bishopTable[m.offset+uint32(((occ&m.mask)*m.magic)>>m.shift)]
}
