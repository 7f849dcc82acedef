package engine

// GSTLStats holds the edge-list side's per-epoch counters.
// Kept as a named struct on GSTL rather than folded into one generic
// Metrics type, matching data_manager.hh's separate gstl.stats block.
type GSTLStats struct {
	BytesLoaded uint64
}

// Reset zeroes the counters at an epoch boundary.
func (s *GSTLStats) Reset() { *s = GSTLStats{} }

// GSTL is the graph-structure translation layer (C4): block-id -> flash
// address, plus the edge-list side's per-chip page registers.
type GSTL struct {
	Geo      DeviceGeometry
	PageRegs []PageRegister
	Stats    GSTLStats
}

func NewGSTL(geo DeviceGeometry) *GSTL {
	return &GSTL{
		Geo:      geo,
		PageRegs: make([]PageRegister, geo.ChipCount()),
	}
}

// ChipID returns which chip holds block bid, round-robining blocks across
// all chips in channel-major order.
func (g *GSTL) ChipID(bid uint32) uint32 {
	return bid % g.Geo.ChipCount()
}

// BlockToFlashAddrs returns one address per plane for block bid: a block
// is striped across every plane of its die at the same block/page offset.
func (g *GSTL) BlockToFlashAddrs(bid uint32) []FlashAddress {
	chipCount := g.Geo.ChipCount()
	chipid := bid % chipCount
	nloops := bid / chipCount

	addrs := make([]FlashAddress, g.Geo.PlanesPerDie)
	for p := uint32(0); p < g.Geo.PlanesPerDie; p++ {
		addrs[p] = FlashAddress{
			Channel: chipid % g.Geo.Channels,
			Chip:    chipid / g.Geo.Channels,
			Die:     0,
			Plane:   p,
			Block:   nloops / g.Geo.PagesPerBlock,
			Page:    nloops % g.Geo.PagesPerBlock,
		}
	}
	return addrs
}
