package heronmg

import "math/rand"

// Zobrist hashing tables for pieces, castling, en passant, and side to move.
var zobristPiece [15][64]uint64 // keys per piece code per square
var zobristCastle [16]uint64    // keys per castling rights mask (0-15)
var zobristEnPassant [8]uint64  // keys per en passant file
var zobristSide uint64          // key for Black to move

// zobristSeed is fixed so hashes of identical positions match across runs.
const zobristSeed = 0x48655230

func init() {
	initZobrist()
}

func initZobrist() {
	rnd := rand.New(rand.NewSource(zobristSeed))

	for p := 0; p < 15; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rnd.Uint64()
		}
	}
	for cr := 0; cr < 16; cr++ {
		zobristCastle[cr] = rnd.Uint64()
	}
	for f := 0; f < 8; f++ {
		zobristEnPassant[f] = rnd.Uint64()
	}
	zobristSide = rnd.Uint64()
}

// ComputeZobrist calculates the hash for the current position from scratch.
// The incremental key must always equal this value.
func (p *Position) ComputeZobrist() uint64 {
	var key uint64

	for sq := Square(0); sq < 64; sq++ {
		if pc := p.pieces[sq]; pc != NoPiece {
			key ^= zobristPiece[pc][sq]
		}
	}
	if p.sideToMove == Black {
		key ^= zobristSide
	}
	key ^= zobristCastle[p.st[p.ply].castling]
	if ep := p.st[p.ply].epSquare; ep != NoSquare {
		key ^= zobristEnPassant[ep.File()]
	}
	return key
}
