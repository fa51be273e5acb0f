package nnue

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
)

// DefaultNetFile is the weight file looked up when no EvalFile is set.
const DefaultNetFile = "heron.nnue"

// netMagic opens every weight file; the version word after it selects the
// king-bucket table.
var netMagic = [4]byte{'H', 'N', 'E', 'T'}

// outputBiasPad pads the output biases to a 32-byte SIMD boundary in the
// file, bias count included.
const outputBiasPad = 16

// Network holds the quantized weights. Output weights are stored in the file
// column-major (per lane across buckets) and transposed to row-major here.
type Network struct {
	FeatureWeights []int16 // [InputBuckets * FeaturesPerBucket * HiddenSize]
	FeatureBias    []int16 // [HiddenSize]
	OutputWeights  [OutputBuckets][]int16
	OutputBias     [OutputBuckets]int32

	kingBuckets *[64]int
}

func newNetwork() *Network {
	n := &Network{
		FeatureWeights: make([]int16, InputBuckets*FeaturesPerBucket*HiddenSize),
		FeatureBias:    make([]int16, HiddenSize),
		kingBuckets:    &kingBucketsV1,
	}
	for b := range n.OutputWeights {
		n.OutputWeights[b] = make([]int16, 2*HiddenSize)
	}
	return n
}

// expectedPayload is the byte size of the weight payload after the header.
func expectedPayload() int {
	feature := InputBuckets * FeaturesPerBucket * HiddenSize * 2
	bias := HiddenSize * 2
	output := OutputBuckets * 2 * HiddenSize * 2
	outBias := outputBiasPad * 2
	return feature + bias + output + outBias
}

// LoadFile reads and validates a weight file. The header is the magic, a
// version word, and the expected payload size; short files fail cleanly.
func LoadFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: reading %s: %w", path, err)
	}
	return parseNetwork(data, path)
}

func parseNetwork(data []byte, path string) (*Network, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("nnue: %s: truncated header", path)
	}
	if [4]byte(data[:4]) != netMagic {
		return nil, fmt.Errorf("nnue: %s: bad magic", path)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	buckets, ok := kingBucketTables[version]
	if !ok {
		return nil, fmt.Errorf("nnue: %s: unsupported version %d", path, version)
	}
	declared := int(binary.LittleEndian.Uint32(data[8:12]))
	payload := data[12:]
	want := expectedPayload()
	if declared != want {
		return nil, fmt.Errorf("nnue: %s: declares %d payload bytes, this build needs %d", path, declared, want)
	}
	if len(payload) < want {
		return nil, fmt.Errorf("nnue: %s: payload is %d bytes, need %d", path, len(payload), want)
	}

	n := newNetwork()
	n.kingBuckets = buckets
	off := 0
	read16 := func() int16 {
		v := int16(binary.LittleEndian.Uint16(payload[off:]))
		off += 2
		return v
	}
	for i := range n.FeatureWeights {
		n.FeatureWeights[i] = read16()
	}
	for i := range n.FeatureBias {
		n.FeatureBias[i] = read16()
	}
	// Column-major on disk: consecutive values run across buckets for one
	// lane. Transpose into per-bucket rows.
	for lane := 0; lane < 2*HiddenSize; lane++ {
		for b := 0; b < OutputBuckets; b++ {
			n.OutputWeights[b][lane] = read16()
		}
	}
	for b := 0; b < outputBiasPad; b++ {
		v := read16()
		if b < OutputBuckets {
			n.OutputBias[b] = int32(v)
		}
	}
	return n, nil
}

// NewRandomNetwork builds a deterministic small-weight network. Tests use it
// so incremental-vs-refresh equality can be exercised without a net on disk.
func NewRandomNetwork(seed int64) *Network {
	rnd := rand.New(rand.NewSource(seed))
	n := newNetwork()
	for i := range n.FeatureWeights {
		n.FeatureWeights[i] = int16(rnd.Intn(65) - 32)
	}
	for i := range n.FeatureBias {
		n.FeatureBias[i] = int16(rnd.Intn(65) - 32)
	}
	for b := range n.OutputWeights {
		for i := range n.OutputWeights[b] {
			n.OutputWeights[b][i] = int16(rnd.Intn(33) - 16)
		}
		n.OutputBias[b] = int32(rnd.Intn(129) - 64)
	}
	return n
}
