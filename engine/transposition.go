package engine

import (
	"math/bits"

	mg "heron/heronmg"
)

// Bound types stored in the packed entry byte.
const (
	BoundNone  = 0
	BoundAlpha = 1 // fail-low: score is an upper bound
	BoundBeta  = 2 // fail-high: score is a lower bound
	BoundExact = 3
)

const (
	// DefaultTTSizeMB is used until the GUI sends a Hash option.
	DefaultTTSizeMB = 64
	MinTTSizeMB     = 1
	MaxTTSizeMB     = 4096

	clusterEntries = 3

	ageCycle     = 32 // 5 bits
	ageIncrement = 1

	// NoScore marks an empty score/eval slot in an entry.
	NoScore int16 = -32700
)

// TTEntry is one 10-byte slot; a cluster packs three plus padding. Reads and
// writes are deliberately unsynchronized across threads: a torn entry fails
// the 16-bit key check and simply reads as a miss.
type TTEntry struct {
	key16      uint16
	move       mg.Move
	score      int16
	eval       int16
	depth      uint8
	agePvBound uint8 // bits 0-1 bound, bit 2 pv, bits 3-7 age
}

func (e *TTEntry) Bound() int    { return int(e.agePvBound & 0x3) }
func (e *TTEntry) IsPV() bool    { return e.agePvBound&0x4 != 0 }
func (e *TTEntry) age() uint8    { return e.agePvBound >> 3 }
func (e *TTEntry) Move() mg.Move { return e.move }
func (e *TTEntry) Score() int16  { return e.score }
func (e *TTEntry) Eval() int16   { return e.eval }
func (e *TTEntry) Depth() int    { return int(e.depth) }
func (e *TTEntry) empty() bool   { return e.agePvBound&0x3 == BoundNone }

func packAPB(age uint8, pv bool, bound int) uint8 {
	v := uint8(bound) | age<<3
	if pv {
		v |= 0x4
	}
	return v
}

type ttCluster struct {
	entries [clusterEntries]TTEntry
	_       uint16 // pad the cluster to 32 bytes
}

// TransTable is the process-wide transposition table: a flat array of
// three-entry clusters indexed by the high word of hash*count.
type TransTable struct {
	clusters []ttCluster
	count    uint64
	curAge   uint8
}

// NewTransTable allocates a table of roughly the given megabyte size.
func NewTransTable(mb int) *TransTable {
	tt := &TransTable{}
	tt.Resize(mb)
	return tt
}

// Resize reallocates the table. Entries do not survive a resize.
func (tt *TransTable) Resize(mb int) {
	if mb < MinTTSizeMB {
		mb = MinTTSizeMB
	}
	if mb > MaxTTSizeMB {
		mb = MaxTTSizeMB
	}
	count := uint64(mb) * (1 << 20) / 32
	tt.clusters = make([]ttCluster, count)
	tt.count = count
	tt.curAge = 0
}

// Clear wipes every entry but keeps the allocation.
func (tt *TransTable) Clear() {
	for i := range tt.clusters {
		tt.clusters[i] = ttCluster{}
	}
	tt.curAge = 0
}

// NewSearch bumps the age counter; entries from older searches become
// replacement fodder.
func (tt *TransTable) NewSearch() {
	tt.curAge = (tt.curAge + ageIncrement) % ageCycle
}

// clusterIndex maps a hash onto the table using the high half of the full
// 128-bit product, so every cluster is reachable for any table size.
func (tt *TransTable) clusterIndex(hash uint64) uint64 {
	hi, _ := bits.Mul64(hash, tt.count)
	return hi
}

// Probe finds the entry for a hash. On a key match the entry's age is
// refreshed and it comes back with hit set; an empty slot comes back as it
// is, with hit unset. On a full cluster the replacement victim comes back: the entry
// minimizing depth minus age staleness.
func (tt *TransTable) Probe(hash uint64) (*TTEntry, bool) {
	cluster := &tt.clusters[tt.clusterIndex(hash)]
	key16 := uint16(hash)

	for i := 0; i < clusterEntries; i++ {
		e := &cluster.entries[i]
		if e.empty() {
			return e, false
		}
		if e.key16 == key16 {
			e.agePvBound = packAPB(tt.curAge, e.IsPV(), e.Bound())
			return e, true
		}
	}

	victim := &cluster.entries[0]
	best := tt.replaceScore(victim)
	for i := 1; i < clusterEntries; i++ {
		e := &cluster.entries[i]
		if s := tt.replaceScore(e); s < best {
			best = s
			victim = e
		}
	}
	return victim, false
}

// replaceScore is the effective depth of an entry: raw depth minus how many
// search generations ago it was written.
func (tt *TransTable) replaceScore(e *TTEntry) int {
	staleness := int(ageCycle+tt.curAge-e.age()) % ageCycle
	return int(e.depth) - staleness
}

// Save writes into the slot returned by Probe, enforcing the policy: keep an
// existing move when the incoming one is null for the same position, and do
// not let a shallower non-exact result clobber a same-key exact entry.
func (tt *TransTable) Save(e *TTEntry, hash uint64, move mg.Move, score, eval int16, depth, bound int, pv bool) {
	key16 := uint16(hash)

	if move == mg.NoMove && e.key16 == key16 {
		move = e.move
	}
	if e.key16 == key16 && e.Bound() == BoundExact && bound != BoundExact &&
		int(e.depth) > depth && e.age() == tt.curAge {
		return
	}

	e.key16 = key16
	e.move = move
	e.score = score
	e.eval = eval
	e.depth = uint8(depth)
	e.agePvBound = packAPB(tt.curAge, pv, bound)
}

// Hashfull estimates the permille of the table written this search, sampled
// from the first thousand clusters.
func (tt *TransTable) Hashfull() int {
	taken, probed := 0, 0
	for i := 0; i < 1000 && i < len(tt.clusters); i++ {
		for j := 0; j < clusterEntries; j++ {
			e := &tt.clusters[i].entries[j]
			probed++
			if !e.empty() && e.age() == tt.curAge {
				taken++
			}
		}
	}
	if probed == 0 {
		return 0
	}
	return taken * 1000 / probed
}

// scoreToTT converts a mate score to distance-from-this-node before storing,
// so the entry stays valid when probed at other plies.
func scoreToTT(score int32, ply int) int16 {
	if score >= MateInMax {
		return int16(score + int32(ply))
	}
	if score <= -MateInMax {
		return int16(score - int32(ply))
	}
	return int16(score)
}

// scoreFromTT undoes scoreToTT at probe time.
func scoreFromTT(score int16, ply int) int32 {
	s := int32(score)
	if s >= int32(MateInMax) {
		return s - int32(ply)
	}
	if s <= -int32(MateInMax) {
		return s + int32(ply)
	}
	return s
}
