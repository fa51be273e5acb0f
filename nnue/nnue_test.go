package nnue

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"heron/heronmg"
)

// freshEval evaluates a position through a brand-new evaluator, forcing the
// full-refresh path for both perspectives.
func freshEval(net *Network, pos *heronmg.Position) int32 {
	return NewEvaluator(net).Evaluate(pos)
}

// TestIncrementalMatchesRefresh plays random games and demands that the
// incrementally maintained accumulators produce exactly the same score as a
// from-scratch refresh after every make and unmake.
func TestIncrementalMatchesRefresh(t *testing.T) {
	net := NewRandomNetwork(99)
	rnd := rand.New(rand.NewSource(5))

	for game := 0; game < 8; game++ {
		pos, err := heronmg.ParseFEN(heronmg.StartPos)
		if err != nil {
			t.Fatal(err)
		}
		ev := NewEvaluator(net)
		var made []heronmg.Move

		for ply := 0; ply < 80; ply++ {
			var buf [heronmg.MaxMoves]heronmg.Move
			legal := pos.GenerateLegal(buf[:0])
			if len(legal) == 0 {
				break
			}
			m := legal[rnd.Intn(len(legal))]
			pos.MakeMove(m)
			made = append(made, m)

			inc := ev.Evaluate(pos)
			ref := freshEval(net, pos)
			if inc != ref {
				t.Fatalf("game %d ply %d after %s: incremental %d != refresh %d",
					game, ply, m, inc, ref)
			}
		}
		// Unwind and re-check on the way back down.
		for i := len(made) - 1; i >= 0; i-- {
			pos.UnmakeMove(made[i])
			inc := ev.Evaluate(pos)
			ref := freshEval(net, pos)
			if inc != ref {
				t.Fatalf("game %d unwind %d: incremental %d != refresh %d", game, i, inc, ref)
			}
		}
		made = made[:0]
	}
}

// TestKingBucketCrossingRefreshes drives a king across a bucket boundary and
// across the mirror axis; the incremental path must refresh and stay exact.
func TestKingBucketCrossingRefreshes(t *testing.T) {
	net := NewRandomNetwork(3)
	pos, err := heronmg.ParseFEN("4k3/8/8/8/8/8/8/R3K2R w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	ev := NewEvaluator(net)
	ev.Evaluate(pos)

	// e1 mirrors (file e), d1 does not: every step across d/e flips the
	// white frame; b1->c1 also crosses the version-1 bucket split.
	for _, s := range []string{"e1d1", "e8d8", "d1c1", "d8c8", "c1b1", "c8b8", "b1c1", "b8c8"} {
		m, ok := pos.ParseMove(s)
		if !ok {
			t.Fatalf("%s should be legal", s)
		}
		pos.MakeMove(m)
		inc := ev.Evaluate(pos)
		ref := freshEval(net, pos)
		if inc != ref {
			t.Fatalf("after %s: incremental %d != refresh %d", s, inc, ref)
		}
	}
}

func TestOrientationMirror(t *testing.T) {
	net := NewRandomNetwork(1)
	// King on h1: mirrored for White; a1 stays.
	oH := net.orientationFor(heronmg.White, heronmg.SqH1)
	oA := net.orientationFor(heronmg.White, heronmg.SqA1)
	if !oH.mirror || oA.mirror {
		t.Error("mirror flag should track the king's half of the board")
	}
	if oH.bucket != oA.bucket {
		t.Error("a1 and h1 collapse to the same bucket under mirroring")
	}
	// Black's h8 corresponds to White's h1 frame.
	oB := net.orientationFor(heronmg.Black, heronmg.SqH8)
	if oB != oH {
		t.Error("black h8 must share white h1's orientation")
	}
}

func TestOutputBucketPartition(t *testing.T) {
	if got := outputBucket(2); got != 0 {
		t.Errorf("2 pieces -> bucket %d, want 0", got)
	}
	if got := outputBucket(32); got != OutputBuckets-1 {
		t.Errorf("32 pieces -> bucket %d, want %d", got, OutputBuckets-1)
	}
	last := -1
	for n := 2; n <= 32; n++ {
		b := outputBucket(n)
		if b < last {
			t.Fatalf("bucket must be monotone in piece count, %d -> %d", n, b)
		}
		if b >= OutputBuckets {
			t.Fatalf("bucket %d out of range", b)
		}
		last = b
	}
}

// buildNetFile assembles a syntactically valid weight file.
func buildNetFile(version uint32, payloadLen int) []byte {
	data := make([]byte, 12+payloadLen)
	copy(data, netMagic[:])
	binary.LittleEndian.PutUint32(data[4:], version)
	binary.LittleEndian.PutUint32(data[8:], uint32(expectedPayload()))
	return data
}

func TestParseNetworkValidation(t *testing.T) {
	good := buildNetFile(1, expectedPayload())
	if _, err := parseNetwork(good, "mem"); err != nil {
		t.Errorf("well-formed file rejected: %v", err)
	}

	short := buildNetFile(1, expectedPayload()-10)
	if _, err := parseNetwork(short, "mem"); err == nil {
		t.Error("short payload must fail")
	}

	badMagic := buildNetFile(1, expectedPayload())
	badMagic[0] = 'X'
	if _, err := parseNetwork(badMagic, "mem"); err == nil {
		t.Error("bad magic must fail")
	}

	badVersion := buildNetFile(7, expectedPayload())
	if _, err := parseNetwork(badVersion, "mem"); err == nil {
		t.Error("unknown version must fail")
	}

	if _, err := parseNetwork([]byte{1, 2, 3}, "mem"); err == nil {
		t.Error("truncated header must fail")
	}

	wrongDecl := buildNetFile(1, expectedPayload())
	binary.LittleEndian.PutUint32(wrongDecl[8:], 12)
	if _, err := parseNetwork(wrongDecl, "mem"); err == nil {
		t.Error("mismatched declared size must fail")
	}
}

// TestOutputWeightTranspose checks that the on-disk column-major output
// weights land row-major in memory.
func TestOutputWeightTranspose(t *testing.T) {
	data := buildNetFile(1, expectedPayload())
	payload := data[12:]

	// Output weights start after feature weights and biases.
	outOff := (InputBuckets*FeaturesPerBucket*HiddenSize + HiddenSize) * 2
	// Lane 5, bucket 2 sits at (5*OutputBuckets + 2) in file order.
	idx := outOff + (5*OutputBuckets+2)*2
	wantVal := int16(-321)
	binary.LittleEndian.PutUint16(payload[idx:], uint16(wantVal))

	net, err := parseNetwork(data, "mem")
	if err != nil {
		t.Fatal(err)
	}
	if net.OutputWeights[2][5] != -321 {
		t.Errorf("transpose wrong: OutputWeights[2][5] = %d, want -321", net.OutputWeights[2][5])
	}
}
