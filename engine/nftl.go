package engine

// NFTLStats holds the node-feature side's per-epoch counters, matching
// data_manager.hh's nftl.input_feature_stats block.
type NFTLStats struct {
	ReqEntryHits                  uint64
	PageRegHits                   uint64
	PageRegMisses                 uint64
	BytesLoadedFromFlash          uint64
	BytesTransmittedViaChannelBus uint64
}

func (s *NFTLStats) Reset() { *s = NFTLStats{} }

// NFTL is the node-feature translation layer (C4): vertex-id ->
// vertex-group-id -> flash address, plus the feature side's per-chip
// page registers. A "vertex group" packs NodesPerPage input-feature
// vectors into one flash page when they are small enough to fit more
// than one per page; otherwise a single vertex's feature spans
// PagesPerNode pages and each vertex is its own group.
type NFTL struct {
	Geo            DeviceGeometry
	NodeFeatureDim uint32
	NVerts         uint64

	PagesPerNode uint32
	NodesPerPage uint32
	NVGroups     uint64

	PageRegs []PageRegister
	Stats    NFTLStats
}

func NewNFTL(geo DeviceGeometry, nodeFeatureDim uint32, nverts uint64) *NFTL {
	capacityPerPage := geo.PageCapacity * geo.PlanesPerDie

	pagesPerNode := uint32(1)
	nodesPerPage := uint32(0)
	if nodeFeatureDim > capacityPerPage {
		pagesPerNode = (nodeFeatureDim + capacityPerPage - 1) / capacityPerPage
	} else if nodeFeatureDim > 0 {
		nodesPerPage = capacityPerPage / nodeFeatureDim
	}

	var nvgroups uint64
	if nodesPerPage > 1 {
		nvgroups = (nverts + uint64(nodesPerPage) - 1) / uint64(nodesPerPage)
	} else {
		nvgroups = nverts
	}

	return &NFTL{
		Geo:            geo,
		NodeFeatureDim: nodeFeatureDim,
		NVerts:         nverts,
		PagesPerNode:   pagesPerNode,
		NodesPerPage:   nodesPerPage,
		NVGroups:       nvgroups,
		PageRegs:       make([]PageRegister, geo.ChipCount()),
	}
}

// VidToVGroupID maps a vertex id to the group it is packed into.
func (n *NFTL) VidToVGroupID(vid uint64) uint64 {
	if n.NodesPerPage > 1 {
		return vid / uint64(n.NodesPerPage)
	}
	return vid
}

// VGroupIDToVIDs returns every vertex id packed into group vgid, in
// ascending order, clipped to NVerts.
func (n *NFTL) VGroupIDToVIDs(vgid uint64) []uint64 {
	if n.NodesPerPage <= 1 {
		return []uint64{vgid}
	}
	lo := vgid * uint64(n.NodesPerPage)
	hi := lo + uint64(n.NodesPerPage)
	if hi > n.NVerts {
		hi = n.NVerts
	}
	vids := make([]uint64, 0, hi-lo)
	for v := lo; v < hi; v++ {
		vids = append(vids, v)
	}
	return vids
}

// ChipID returns which chip holds vertex group vgid.
func (n *NFTL) ChipID(vgid uint64) uint32 {
	return uint32(vgid % uint64(n.Geo.ChipCount()))
}

// VGroupIDToFlashAddrs returns one address per plane for group vgid,
// mirroring GSTL.BlockToFlashAddrs exactly: the block/page offset is
// computed once (stepping by PagesPerNode pages per group, so multi-page
// groups don't overlap in the flat page-address space), then striped
// across every plane of the die at that same block/page.
func (n *NFTL) VGroupIDToFlashAddrs(vgid uint64) []FlashAddress {
	chipCount := uint64(n.Geo.ChipCount())
	chipid := vgid % chipCount
	nloops := vgid / chipCount
	globalPage := nloops * uint64(n.PagesPerNode)
	block := uint32(globalPage / uint64(n.Geo.PagesPerBlock))
	page := uint32(globalPage % uint64(n.Geo.PagesPerBlock))

	addrs := make([]FlashAddress, n.Geo.PlanesPerDie)
	for p := uint32(0); p < n.Geo.PlanesPerDie; p++ {
		addrs[p] = FlashAddress{
			Channel: uint32(chipid) % n.Geo.Channels,
			Chip:    uint32(chipid) / n.Geo.Channels,
			Die:     1,
			Plane:   p,
			Block:   block,
			Page:    page,
		}
	}
	return addrs
}

// VidToFlashAddrs is VGroupIDToFlashAddrs(VidToVGroupID(vid)).
func (n *NFTL) VidToFlashAddrs(vid uint64) []FlashAddress {
	return n.VGroupIDToFlashAddrs(n.VidToVGroupID(vid))
}

// FlashBytes is the number of bytes a Stage 1 flash read loads for one
// vertex group (one page on each of PlanesPerDie planes): the same amount
// GSTL counts per edge-list Stage 1 load, independent of PagesPerNode.
func (n *NFTL) FlashBytes() uint32 {
	return n.Geo.PageCapacity * n.Geo.PlanesPerDie
}

// PayloadBytes is the number of real feature bytes a Stage 2 channel
// pull transmits for one vertex group: either every packed node's
// feature vector, or a single (possibly multi-page) node's feature.
func (n *NFTL) PayloadBytes() uint32 {
	if n.NodesPerPage > 1 {
		return n.NodesPerPage * n.NodeFeatureDim
	}
	return n.NodeFeatureDim
}
