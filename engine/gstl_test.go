package engine

import "testing"

func testGeometry() DeviceGeometry {
	return DeviceGeometry{
		Channels:               2,
		ChipsPerChannel:        2,
		DiesPerChip:            2,
		PlanesPerDie:           4,
		BlocksPerPlane:         8,
		PagesPerBlock:          16,
		PageCapacity:           4096,
		BytesPerCycle:          64,
		PageReadLatencyCycles:  10,
		PageWriteLatencyCycles: 12,
	}
}

func TestGSTL_ChipID_RoundRobinsAcrossChips(t *testing.T) {
	geo := testGeometry()
	g := NewGSTL(geo)
	chipCount := geo.ChipCount()
	for bid := uint32(0); bid < chipCount*3; bid++ {
		want := bid % chipCount
		if got := g.ChipID(bid); got != want {
			t.Fatalf("ChipID(%d) = %d, want %d", bid, got, want)
		}
	}
}

func TestGSTL_BlockToFlashAddrs_OnePerPlaneAllValid(t *testing.T) {
	geo := testGeometry()
	g := NewGSTL(geo)

	addrs := g.BlockToFlashAddrs(5)
	if len(addrs) != int(geo.PlanesPerDie) {
		t.Fatalf("got %d addresses, want %d (one per plane)", len(addrs), geo.PlanesPerDie)
	}
	for _, a := range addrs {
		if !geo.CheckAddr(a) {
			t.Fatalf("address %s should be valid under geometry", a)
		}
	}
}

func TestGSTL_BlockToFlashAddrs_RolloverAcrossBlocks(t *testing.T) {
	geo := testGeometry()
	g := NewGSTL(geo)
	chipCount := geo.ChipCount()

	// bid that lands on the second page of its chip's block sequence
	bid := chipCount // nloops = 1
	addrs := g.BlockToFlashAddrs(bid)
	if addrs[0].Page != 1 {
		t.Fatalf("expected page 1 after one rollover step, got %d", addrs[0].Page)
	}

	// advancing PagesPerBlock loops should roll over into the next block
	bid2 := chipCount * geo.PagesPerBlock
	addrs2 := g.BlockToFlashAddrs(bid2)
	if addrs2[0].Block != 1 || addrs2[0].Page != 0 {
		t.Fatalf("expected block 1 page 0 after pages-per-block rollover, got block=%d page=%d",
			addrs2[0].Block, addrs2[0].Page)
	}
}
