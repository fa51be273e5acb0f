package engine

import (
	"math/rand"
	"testing"

	mg "heron/heronmg"
)

func TestClusterIndexInRange(t *testing.T) {
	tt := NewTransTable(MinTTSizeMB)
	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 100000; i++ {
		if idx := tt.clusterIndex(rnd.Uint64()); idx >= tt.count {
			t.Fatalf("cluster index %d out of range (count %d)", idx, tt.count)
		}
	}
	// Extremes hit the first and last cluster.
	if tt.clusterIndex(0) != 0 {
		t.Error("hash 0 should map to cluster 0")
	}
	if tt.clusterIndex(^uint64(0)) != tt.count-1 {
		t.Error("max hash should map to the last cluster")
	}
}

func TestProbeStoreRoundTrip(t *testing.T) {
	tt := NewTransTable(MinTTSizeMB)
	tt.NewSearch()

	hash := uint64(0xDEADBEEFCAFEF00D)
	move := mg.NewMove(mg.SqE1, mg.SqG1)

	entry, hit := tt.Probe(hash)
	if hit {
		t.Fatal("fresh table should miss")
	}
	tt.Save(entry, hash, move, 123, 45, 9, BoundExact, true)

	entry2, hit := tt.Probe(hash)
	if !hit {
		t.Fatal("stored entry should hit")
	}
	if entry2.Move() != move || entry2.Score() != 123 || entry2.Eval() != 45 ||
		entry2.Depth() != 9 || entry2.Bound() != BoundExact || !entry2.IsPV() {
		t.Errorf("entry fields corrupted: %+v", entry2)
	}
}

func TestSaveKeepsMoveOnNullOverwrite(t *testing.T) {
	tt := NewTransTable(MinTTSizeMB)
	tt.NewSearch()
	hash := uint64(0x12345678)
	move := mg.NewMove(mg.SqE1, mg.SqE8)

	e, _ := tt.Probe(hash)
	tt.Save(e, hash, move, 50, 10, 5, BoundBeta, false)
	e, _ = tt.Probe(hash)
	tt.Save(e, hash, mg.NoMove, 60, 10, 6, BoundBeta, false)

	e, hit := tt.Probe(hash)
	if !hit || e.Move() != move {
		t.Error("a null incoming move must not erase the stored best move")
	}
}

func TestSaveProtectsExactEntries(t *testing.T) {
	tt := NewTransTable(MinTTSizeMB)
	tt.NewSearch()
	hash := uint64(0x87654321)
	move := mg.NewMove(mg.SqE1, mg.SqE8)

	e, _ := tt.Probe(hash)
	tt.Save(e, hash, move, 200, 10, 12, BoundExact, true)
	e, _ = tt.Probe(hash)
	tt.Save(e, hash, mg.NoMove, -300, 10, 4, BoundAlpha, false)

	e, hit := tt.Probe(hash)
	if !hit {
		t.Fatal("entry lost")
	}
	if e.Bound() != BoundExact || e.Score() != 200 || e.Depth() != 12 {
		t.Error("shallower non-exact result overwrote an exact entry")
	}
}

func TestReplacementPrefersStaleShallow(t *testing.T) {
	tt := NewTransTable(MinTTSizeMB)
	tt.NewSearch()

	// Four same-cluster hashes: same high product bits, distinct low 16.
	base := uint64(0x4000000000000000)
	h1, h2, h3, h4 := base|1, base|2, base|3, base|4
	if tt.clusterIndex(h1) != tt.clusterIndex(h4) {
		t.Skip("hash construction did not land in one cluster")
	}

	e, _ := tt.Probe(h1)
	tt.Save(e, h1, mg.NoMove, 1, 0, 20, BoundBeta, false) // deep
	e, _ = tt.Probe(h2)
	tt.Save(e, h2, mg.NoMove, 2, 0, 3, BoundBeta, false) // shallow
	e, _ = tt.Probe(h3)
	tt.Save(e, h3, mg.NoMove, 3, 0, 15, BoundBeta, false)

	// The shallow entry is the replacement victim.
	victim, hit := tt.Probe(h4)
	if hit {
		t.Fatal("h4 was never stored")
	}
	if victim.Score() != 2 {
		t.Errorf("victim should be the shallowest entry, got score %d", victim.Score())
	}
}

func TestAgingMakesOldEntriesVictims(t *testing.T) {
	tt := NewTransTable(MinTTSizeMB)
	tt.NewSearch()

	base := uint64(0x8000000000000000)
	h1, h2, h3, h4 := base|1, base|2, base|3, base|4
	if tt.clusterIndex(h1) != tt.clusterIndex(h4) {
		t.Skip("hash construction did not land in one cluster")
	}

	// A deep entry from an old search...
	e, _ := tt.Probe(h1)
	tt.Save(e, h1, mg.NoMove, 1, 0, 18, BoundBeta, false)

	// ...then many new searches pass.
	for i := 0; i < 20; i++ {
		tt.NewSearch()
	}
	e, _ = tt.Probe(h2)
	tt.Save(e, h2, mg.NoMove, 2, 0, 10, BoundBeta, false)
	e, _ = tt.Probe(h3)
	tt.Save(e, h3, mg.NoMove, 3, 0, 10, BoundBeta, false)

	victim, hit := tt.Probe(h4)
	if hit {
		t.Fatal("h4 was never stored")
	}
	if victim.Score() != 1 {
		t.Errorf("stale deep entry should lose to fresh shallower ones, victim score %d", victim.Score())
	}
}

func TestMateScoreConversion(t *testing.T) {
	mate := MateScore - 7 // mate in 7 plies from here
	for _, ply := range []int{0, 3, 12} {
		stored := scoreToTT(mate, ply)
		back := scoreFromTT(stored, ply)
		if back != mate {
			t.Errorf("ply %d: mate score %d round-tripped to %d", ply, mate, back)
		}
	}
	if got := scoreFromTT(scoreToTT(150, 9), 9); got != 150 {
		t.Errorf("plain score round trip broke: %d", got)
	}
}
