package engine

import "fmt"

// nodeFeatureFlashToPageReg is Stage 1 of the node-feature pipeline: load
// vertex group vgid's page(s) into its chip's page register. Mirrors
// edgeListFlashToPageReg exactly, substituting the NFTL's own page
// registers and a ChunkNodeFeatureGroup tag (the admission decision at
// this stage only depends on the group, not on which vertex or layer
// within it triggered the load).
func (dm *DataManager) nodeFeatureFlashToPageReg(vgid uint64, cb func(), reenter bool) bool {
	chipid := dm.NFTL.ChipID(vgid)
	pr := &dm.NFTL.PageRegs[chipid]

	if pr.Resident(int64(vgid)) {
		dm.NFTL.Stats.PageRegHits++
		cb()
		return true
	}

	tag := nodeFeatureGroupTag(vgid, dm.NFTL.NVerts)
	table := dm.activeFlashReads[chipid]
	if entry, ok := table.Get(tag); ok {
		entry.hooks = append(entry.hooks, cb)
		dm.Metrics.FeatureActiveFlashReadHits++
		dm.NFTL.Stats.ReqEntryHits++
		return true
	}

	if pr.Loading() || pr.Refs > 0 {
		dm.NFTL.Stats.PageRegMisses++
		if !reenter {
			dm.deferFlashRead(chipid, tag, func() bool { return dm.nodeFeatureFlashToPageReg(vgid, cb, true) })
		}
		return false
	}

	bytes := dm.NFTL.FlashBytes()
	table.PushBack(tag, &activeEntry{hooks: []func(){cb}})
	pr.BeginLoad(int64(vgid))
	addrs := dm.NFTL.VGroupIDToFlashAddrs(vgid)
	if err := dm.Flash.SendReq(SSDRequest{
		Type:  ReqReadLocal,
		Addrs: addrs,
		Bytes: dm.Geo.PageCapacity,
		Completion: func() {
			dm.onNodeFeatureFlashToPageRegComplete(chipid, tag, bytes)
		},
	}); err != nil {
		panic(err)
	}
	return true
}

func (dm *DataManager) onNodeFeatureFlashToPageRegComplete(chipid uint32, tag ChunkTag, bytes uint32) {
	dm.NFTL.Stats.BytesLoadedFromFlash += uint64(bytes)

	pr := &dm.NFTL.PageRegs[chipid]
	pr.CompleteLoad()

	table := dm.activeFlashReads[chipid]
	entry, ok := table.Get(tag)
	if !ok {
		panic("datamanager: active flash read entry missing on completion")
	}
	hooks := entry.hooks
	table.Erase(tag)
	for _, h := range hooks {
		h()
	}
	// Symmetric with the edge-list side: no flushPendingFlashReads here.
}

// nodeFeaturePageRegToDRAM is Stage 2: pull the feature named by desc
// out of its (already resident) page register into DRAM.
func (dm *DataManager) nodeFeaturePageRegToDRAM(desc NodeFeatureDescriptor, cb func(), reenter bool) bool {
	vgid := dm.NFTL.VidToVGroupID(desc.VID)
	chipid := dm.NFTL.ChipID(vgid)
	pr := &dm.NFTL.PageRegs[chipid]
	if !pr.Resident(int64(vgid)) {
		panic("datamanager: node feature page register not resident for requested group")
	}
	if !groupContains(dm.NFTL.VGroupIDToVIDs(vgid), desc.VID) {
		panic("datamanager: resident vertex group does not contain requested vertex")
	}

	if !reenter {
		pr.Refs++
	}

	tag := nodeFeatureTag(desc, vgid)
	if entry, ok := dm.activeChannelTransfers.Get(tag); ok {
		entry.hooks = append(entry.hooks, func() { pr.Refs-- }, cb)
		dm.Metrics.FeatureActiveChannelHits++
		return true
	}

	chunkBytes := dm.NFTL.PayloadBytes()
	if dm.bufferUsed+uint64(chunkBytes) > dm.dramCapacity {
		if !reenter {
			dm.deferChannelTransfer(tag, func() bool { return dm.nodeFeaturePageRegToDRAM(desc, cb, true) })
		}
		return false
	}

	dm.activeChannelTransfers.PushBack(tag, &activeEntry{hooks: []func(){cb}})
	dm.bufferUsed += uint64(chunkBytes)
	addrs := dm.NFTL.VGroupIDToFlashAddrs(vgid)
	if err := dm.Flash.SendReq(SSDRequest{
		Type:  ReqPull,
		Addrs: addrs,
		Bytes: chunkBytes,
		Completion: func() {
			dm.onNodeFeaturePageRegToDRAMComplete(vgid, chipid, tag, chunkBytes)
		},
	}); err != nil {
		panic(err)
	}
	return true
}

func (dm *DataManager) onNodeFeaturePageRegToDRAMComplete(vgid uint64, chipid uint32, tag ChunkTag, chunkBytes uint32) {
	dm.bufferUsed -= uint64(chunkBytes)
	dm.NFTL.Stats.BytesTransmittedViaChannelBus += uint64(chunkBytes)

	pr := &dm.NFTL.PageRegs[chipid]
	if !pr.Resident(int64(vgid)) || pr.Refs <= 0 {
		panic("datamanager: inconsistent page register state on DRAM transfer completion")
	}
	pr.Refs--

	entry, ok := dm.activeChannelTransfers.Get(tag)
	if !ok {
		panic("datamanager: active channel transfer entry missing on completion")
	}
	hooks := entry.hooks
	dm.activeChannelTransfers.Erase(tag)
	for _, h := range hooks {
		h()
	}

	dm.flushPendingFlashReads(chipid)
	dm.flushPendingChannelTransfers()
}

func (dm *DataManager) nodeFeatureFlashToDRAM(desc NodeFeatureDescriptor, cb func()) bool {
	vgid := dm.NFTL.VidToVGroupID(desc.VID)
	return dm.nodeFeatureFlashToPageReg(vgid, func() {
		dm.nodeFeaturePageRegToDRAM(desc, cb, false)
	}, false)
}

// LoadNodeFeatureToDRAM loads vid's raw input feature (layer 0,
// non-gradient, non-partial) into DRAM, invoking cb once resident.
// See LoadEdgeListToDRAM for the accepted/err contract.
func (dm *DataManager) LoadNodeFeatureToDRAM(vid uint64, cb func()) (bool, error) {
	if vid >= dm.NFTL.NVerts {
		return false, fmt.Errorf("datamanager: vertex %d out of range: %w", vid, errOutOfRange)
	}
	desc := NodeFeatureDescriptor{VID: vid}
	return dm.nodeFeatureFlashToDRAM(desc, cb), nil
}

func groupContains(vids []uint64, vid uint64) bool {
	for _, v := range vids {
		if v == vid {
			return true
		}
	}
	return false
}
