package engine

import "testing"

func TestChunkTag_Equality_SameFieldsAreEqual(t *testing.T) {
	a := ChunkTag{Kind: ChunkEdgeList, BlockID: 3, NodeFeature: SentinelNodeFeature(100), VGroupID: 50}
	b := ChunkTag{Kind: ChunkEdgeList, BlockID: 3, NodeFeature: SentinelNodeFeature(100), VGroupID: 50}
	if a != b {
		t.Fatal("tags with identical fields should compare equal")
	}
}

func TestChunkTag_Hash_DiffersWhenAnyFieldDiffers(t *testing.T) {
	base := ChunkTag{Kind: ChunkEdgeList, BlockID: 3, NodeFeature: SentinelNodeFeature(100), VGroupID: 50}
	variants := []ChunkTag{
		{Kind: ChunkNodeFeatureGroup, BlockID: 3, NodeFeature: SentinelNodeFeature(100), VGroupID: 50},
		{Kind: ChunkEdgeList, BlockID: 4, NodeFeature: SentinelNodeFeature(100), VGroupID: 50},
		{Kind: ChunkEdgeList, BlockID: 3, NodeFeature: SentinelNodeFeature(100), VGroupID: 51},
		{Kind: ChunkEdgeList, BlockID: 3, NodeFeature: NodeFeatureDescriptor{VID: 7}, VGroupID: 50},
	}
	baseHash := base.Hash()
	for i, v := range variants {
		if v.Hash() == baseHash {
			t.Fatalf("variant %d unexpectedly hashes the same as base", i)
		}
	}
}

func TestNodeFeatureDescriptor_IsInputNodeFeature(t *testing.T) {
	in := NodeFeatureDescriptor{VID: 9}
	if !in.IsInputNodeFeature() {
		t.Fatal("layer 0, non-grad, non-partial descriptor should be the input feature")
	}
	grad := NodeFeatureDescriptor{VID: 9, Grad: true}
	if grad.IsInputNodeFeature() {
		t.Fatal("gradient descriptor must not be the input feature")
	}
	layer1 := NodeFeatureDescriptor{VID: 9, Layer: 1}
	if layer1.IsInputNodeFeature() {
		t.Fatal("layer-1 descriptor must not be the input feature")
	}
}
