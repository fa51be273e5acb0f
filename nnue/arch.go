// Package nnue implements the engine's efficiently updatable neural network
// evaluation: a king-bucketed, horizontally mirrored 768-feature transformer
// with perspective accumulators and squared clipped-ReLU output buckets.
package nnue

import "heron/heronmg"

// Network architecture constants.
const (
	// HiddenSize is the accumulator width per perspective.
	HiddenSize = 512

	// InputBuckets partitions king squares into feature subspaces.
	InputBuckets = 4

	// OutputBuckets partitions positions by piece count.
	OutputBuckets = 8

	// FeaturesPerBucket covers (2 colors) x (6 piece types) x (64 squares).
	FeaturesPerBucket = 768

	// Quantization constants.
	QA          = 255
	QB          = 64
	OutputScale = 400
)

// kingBucketsV1 maps a perspective-transformed king square to its input
// bucket. Version 1 of the weight format: back rank split in two, second
// rank its own bucket, everything else shared.
var kingBucketsV1 = [64]int{
	0, 0, 1, 1, 1, 1, 0, 0,
	2, 2, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3,
}

// kingBucketTables is indexed by the weight-file version word: the bucket
// mapping is a property of the net, not of the engine.
var kingBucketTables = map[uint32]*[64]int{
	1: &kingBucketsV1,
}

// orient transforms a square into the perspective's frame: vertical flip for
// Black, horizontal mirror when the king sits on files e-h.
func orient(persp heronmg.Color, sq heronmg.Square, mirror bool) heronmg.Square {
	if persp == heronmg.Black {
		sq ^= 56
	}
	if mirror {
		sq ^= 7
	}
	return sq
}

// kingOrientation describes the feature frame of one perspective: the input
// bucket and whether the board is mirrored. Any change forces a refresh.
type kingOrientation struct {
	bucket int
	mirror bool
}

func (n *Network) orientationFor(persp heronmg.Color, ksq heronmg.Square) kingOrientation {
	flipped := ksq
	if persp == heronmg.Black {
		flipped ^= 56
	}
	mirror := flipped.File() > 3
	if mirror {
		flipped ^= 7
	}
	return kingOrientation{bucket: n.kingBuckets[flipped], mirror: mirror}
}

// featureIndex maps an absolute (piece, square) to the perspective's feature
// slot given the king orientation.
func featureIndex(o kingOrientation, persp heronmg.Color, pc heronmg.Piece, sq heronmg.Square) int {
	colorBit := 0
	if pc.Color() != persp {
		colorBit = 1
	}
	tsq := orient(persp, sq, o.mirror)
	return o.bucket*FeaturesPerBucket + colorBit*384 + (int(pc.Type())-1)*64 + int(tsq)
}

// outputBucket selects the output head from the piece count: counts 2..32
// fall into groups of four (2-5, 6-9, ...), the last head taking 30-32.
func outputBucket(pieceCount int) int {
	const divisor = (32 - 2 + OutputBuckets - 1) / OutputBuckets
	b := (pieceCount - 2) / divisor
	if b >= OutputBuckets {
		b = OutputBuckets - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}
