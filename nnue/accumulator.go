package nnue

import (
	"math/bits"

	"heron/heronmg"
)

// Accumulator holds the feature-transformer output for both perspectives at
// one ply: bias plus the summed weights of every active feature.
type Accumulator struct {
	values   [2][HiddenSize]int16
	computed [2]bool
	key      uint64 // zobrist key of the state these values describe
}

// Evaluator owns a network reference and a per-thread accumulator stack
// aligned with the position's state stack. Each ply owns its accumulator;
// values are never back-patched into earlier plies.
type Evaluator struct {
	net   *Network
	stack []Accumulator
}

// NewEvaluator creates an evaluator for one search thread.
func NewEvaluator(net *Network) *Evaluator {
	return &Evaluator{
		net:   net,
		stack: make([]Accumulator, heronmg.MaxGamePly),
	}
}

// Network returns the shared network.
func (e *Evaluator) Network() *Network { return e.net }

// Reset invalidates every cached accumulator (new game or new position).
func (e *Evaluator) Reset() {
	for i := range e.stack {
		e.stack[i].computed[0] = false
		e.stack[i].computed[1] = false
		e.stack[i].key = 0
	}
}

// Evaluate returns the network score in centipawn-scaled units from the
// side to move's point of view.
func (e *Evaluator) Evaluate(pos *heronmg.Position) int32 {
	e.ensure(pos, heronmg.White)
	e.ensure(pos, heronmg.Black)

	acc := &e.stack[pos.Ply()]
	us := pos.SideToMove()
	return e.forward(&acc.values[us], &acc.values[us.Other()], pos.PieceCount())
}

// ensure makes the current ply's accumulator valid for one perspective,
// preferring incremental updates from the deepest still-valid ancestor and
// falling back to a full refresh when the king changed frame or no usable
// ancestor exists.
func (e *Evaluator) ensure(pos *heronmg.Position, persp heronmg.Color) {
	ply := pos.Ply()
	cur := &e.stack[ply]
	if cur.key == pos.Hash() && cur.computed[persp] {
		return
	}

	// Walk back to a state we can update forward from. A king-frame change
	// between two states is a barrier: everything above it refreshes.
	start := -1
	for j := ply - 1; j >= 0; j-- {
		if e.orientationChanged(pos, j+1, persp) {
			break
		}
		a := &e.stack[j]
		if a.key == pos.StateKey(j) && a.computed[persp] {
			start = j
			break
		}
	}
	if start == -1 {
		e.refresh(pos, persp)
		return
	}
	for j := start + 1; j <= ply; j++ {
		e.applyDelta(pos, j, persp)
	}
}

// orientationChanged reports whether the perspective's king frame (bucket or
// mirror) differs between state j-1 and state j.
func (e *Evaluator) orientationChanged(pos *heronmg.Position, j int, persp heronmg.Color) bool {
	prevW, prevB := pos.StateKings(j - 1)
	curW, curB := pos.StateKings(j)
	var prev, cur heronmg.Square
	if persp == heronmg.White {
		prev, cur = prevW, curW
	} else {
		prev, cur = prevB, curB
	}
	if prev == cur {
		return false
	}
	return e.net.orientationFor(persp, prev) != e.net.orientationFor(persp, cur)
}

// applyDelta advances one ply by adding and subtracting the dirty pieces of
// state j on top of state j-1's values.
func (e *Evaluator) applyDelta(pos *heronmg.Position, j int, persp heronmg.Color) {
	prev := &e.stack[j-1]
	cur := &e.stack[j]
	cur.values[persp] = prev.values[persp]

	var ksq heronmg.Square
	w, b := pos.StateKings(j)
	if persp == heronmg.White {
		ksq = w
	} else {
		ksq = b
	}
	o := e.net.orientationFor(persp, ksq)

	vals := &cur.values[persp]
	for _, d := range pos.StateDirties(j) {
		if d.From != heronmg.NoSquare {
			idx := featureIndex(o, persp, d.Pc, d.From)
			weights := e.net.FeatureWeights[idx*HiddenSize : (idx+1)*HiddenSize]
			for i := 0; i < HiddenSize; i++ {
				vals[i] -= weights[i]
			}
		}
		if d.To != heronmg.NoSquare {
			idx := featureIndex(o, persp, d.Pc, d.To)
			weights := e.net.FeatureWeights[idx*HiddenSize : (idx+1)*HiddenSize]
			for i := 0; i < HiddenSize; i++ {
				vals[i] += weights[i]
			}
		}
	}
	e.stamp(cur, pos.StateKey(j), persp)
}

// stamp records the state key an accumulator now matches. A key change
// invalidates whatever the other perspective had cached at this ply.
func (e *Evaluator) stamp(acc *Accumulator, key uint64, persp heronmg.Color) {
	if acc.key != key {
		acc.computed[persp.Other()] = false
	}
	acc.key = key
	acc.computed[persp] = true
}

// refresh recomputes one perspective of the current ply from scratch:
// bias plus every active feature.
func (e *Evaluator) refresh(pos *heronmg.Position, persp heronmg.Color) {
	ply := pos.Ply()
	cur := &e.stack[ply]
	o := e.net.orientationFor(persp, pos.KingSquare(persp))

	vals := &cur.values[persp]
	copy(vals[:], e.net.FeatureBias)

	occ := pos.AllOccupancy()
	for occ != 0 {
		sq := heronmg.Square(trailingZeros(&occ))
		pc := pos.PieceAt(sq)
		idx := featureIndex(o, persp, pc, sq)
		weights := e.net.FeatureWeights[idx*HiddenSize : (idx+1)*HiddenSize]
		for i := 0; i < HiddenSize; i++ {
			vals[i] += weights[i]
		}
	}
	e.stamp(cur, pos.Hash(), persp)
}

// trailingZeros pops and returns the lowest set bit index.
func trailingZeros(mask *uint64) int {
	idx := bits.TrailingZeros64(*mask)
	*mask &= *mask - 1
	return idx
}

// forward runs the output layer: squared clipped ReLU over both
// perspectives into the piece-count output bucket.
func (e *Evaluator) forward(us, them *[HiddenSize]int16, pieceCount int) int32 {
	bucket := outputBucket(pieceCount)
	weights := e.net.OutputWeights[bucket]

	var sum int32
	for i := 0; i < HiddenSize; i++ {
		x := clip(us[i])
		sum += x * int32(weights[i]) * x
	}
	for i := 0; i < HiddenSize; i++ {
		x := clip(them[i])
		sum += x * int32(weights[HiddenSize+i]) * x
	}
	return (sum/QA + e.net.OutputBias[bucket]) * OutputScale / (QA * QB)
}

// clip clamps an accumulator lane to [0, QA].
func clip(v int16) int32 {
	if v < 0 {
		return 0
	}
	if v > QA {
		return QA
	}
	return int32(v)
}
