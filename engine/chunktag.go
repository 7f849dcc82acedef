package engine

import "hash/fnv"

// DataChunkKind distinguishes the two data chunk families moved by the
// Data Manager.
type DataChunkKind int

const (
	ChunkEdgeList DataChunkKind = iota
	ChunkNodeFeatureGroup
	ChunkNodeFeature
)

func (k DataChunkKind) String() string {
	switch k {
	case ChunkEdgeList:
		return "edge_list"
	case ChunkNodeFeatureGroup:
		return "node_feature_group"
	case ChunkNodeFeature:
		return "node_feature"
	default:
		return "unknown"
	}
}

// NodeFeatureDescriptor identifies a node-feature chunk: which layer's
// activation, whether it is a gradient, whether it is a partial
// (not-yet-fully-aggregated) tensor, which vertex, and how many
// sub-tensor components it carries.
//
// Descriptors used for ChunkEdgeList/ChunkNodeFeatureGroup tags (where a
// node-feature descriptor is not applicable) carry the sentinel value
// produced by SentinelNodeFeature.
type NodeFeatureDescriptor struct {
	Layer      uint32
	Grad       bool
	Partial    bool
	VID        uint64
	Components uint32
}

// IsInputNodeFeature reports whether the descriptor names the raw,
// layer-0, non-gradient, non-partial input feature of a vertex.
func (d NodeFeatureDescriptor) IsInputNodeFeature() bool {
	return !d.Grad && d.Layer == 0 && !d.Partial
}

// SentinelNodeFeature returns the descriptor used in chunk tags whose
// kind is not ChunkNodeFeature. nverts marks "not applicable" the same
// way the original models "no such vertex" with a past-the-end vertex id.
func SentinelNodeFeature(nverts uint64) NodeFeatureDescriptor {
	return NodeFeatureDescriptor{VID: nverts}
}

// ChunkTag is the identity key for an in-flight or pending coalescing
// table entry. All fields are comparable, so ChunkTag is usable directly
// as a Go map key; Hash is provided for logging/debugging, matching the
// stable-hash contract in the data model, not because MultifuncList needs
// it for table lookups.
type ChunkTag struct {
	Kind        DataChunkKind
	BlockID     uint32
	NodeFeature NodeFeatureDescriptor
	VGroupID    uint64
}

// Hash combines every field independently, then XORs them, so that a
// change in any single field changes the result regardless of the
// others' values.
func (t ChunkTag) Hash() uint64 {
	// field hashes one field on its own; the field index is hashed along
	// with the value so equal values in different fields do not cancel.
	field := func(idx byte, v uint64) uint64 {
		h := fnv.New64a()
		var buf [9]byte
		buf[0] = idx
		for i := 0; i < 8; i++ {
			buf[i+1] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
		return h.Sum64()
	}
	flags := uint64(0)
	if t.NodeFeature.Grad {
		flags |= 1
	}
	if t.NodeFeature.Partial {
		flags |= 2
	}
	return t.Kind.hashSeed() ^
		field(0, uint64(t.Kind)) ^
		field(1, uint64(t.BlockID)) ^
		field(2, t.VGroupID) ^
		field(3, uint64(t.NodeFeature.Layer)) ^
		field(4, t.NodeFeature.VID) ^
		field(5, uint64(t.NodeFeature.Components)) ^
		field(6, flags)
}

func (k DataChunkKind) hashSeed() uint64 {
	fh := fnv.New64a()
	fh.Write([]byte(k.String()))
	return fh.Sum64()
}
