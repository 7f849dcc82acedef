package engine

import "fmt"

// edgeListFlashToPageReg is Stage 1 of the edge-list pipeline: load block
// bid's page into its chip's page register, invoking cb once it is
// resident. Returns true if cb fired synchronously, was queued against an
// already in-flight load, or a new load was issued for it; false if the
// request was deferred
// to the chip's pending-flash-reads table because the page register was
// busy with something else. reenter is true only when called from a
// pending-table retry thunk, where the bookkeeping already done on first
// admission (none, for Stage 1) must not repeat.
func (dm *DataManager) edgeListFlashToPageReg(bid uint32, cb func(), reenter bool) bool {
	chipid := dm.GSTL.ChipID(bid)
	pr := &dm.GSTL.PageRegs[chipid]

	if pr.Resident(int64(bid)) {
		cb()
		return true
	}

	tag := edgeListTag(bid, dm.NFTL)
	table := dm.activeFlashReads[chipid]
	if entry, ok := table.Get(tag); ok {
		entry.hooks = append(entry.hooks, cb)
		dm.Metrics.EdgeActiveFlashReadHits++
		return true
	}

	if pr.Loading() || pr.Refs > 0 {
		if !reenter {
			dm.deferFlashRead(chipid, tag, func() bool { return dm.edgeListFlashToPageReg(bid, cb, true) })
		}
		return false
	}

	table.PushBack(tag, &activeEntry{hooks: []func(){cb}})
	pr.BeginLoad(int64(bid))
	addrs := dm.GSTL.BlockToFlashAddrs(bid)
	if err := dm.Flash.SendReq(SSDRequest{
		Type:  ReqReadLocal,
		Addrs: addrs,
		Bytes: dm.Geo.PageCapacity,
		Completion: func() {
			dm.onEdgeListFlashToPageRegComplete(chipid, tag)
		},
	}); err != nil {
		// addrs are computed from valid geometry; this can only fire on a
		// programming error in GSTL.
		panic(err)
	}
	return true
}

func (dm *DataManager) onEdgeListFlashToPageRegComplete(chipid uint32, tag ChunkTag) {
	dm.GSTL.Stats.BytesLoaded += uint64(dm.Geo.PageCapacity) * uint64(dm.Geo.PlanesPerDie)

	pr := &dm.GSTL.PageRegs[chipid]
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
	// Deliberately does not call flushPendingFlashReads here: a pending
	// flash read is gated on the page register's refs/loading state.
	// Loading clears above, but every hook is a Stage 2 continuation that
	// takes a ref on this register, so refs > 0 once the hooks have run;
	// refs only returns to zero when a Stage 2 DRAM transfer completes.
	// See flushPendingFlashReads's call site in
	// onEdgeListPageRegToDRAMComplete.
}

// edgeListPageRegToDRAM is Stage 2: pull block bid's resident page into
// DRAM, invoking cb once the transfer completes. bid's page register
// must already be resident and not loading; callers reach this only
// through edgeListFlashToDRAM's continuation.
func (dm *DataManager) edgeListPageRegToDRAM(bid uint32, cb func(), reenter bool) bool {
	chipid := dm.GSTL.ChipID(bid)
	pr := &dm.GSTL.PageRegs[chipid]
	if !pr.Resident(int64(bid)) {
		panic("datamanager: edge list page register not resident for requested block")
	}
	if !reenter {
		pr.Refs++
	}

	tag := edgeListTag(bid, dm.NFTL)
	if entry, ok := dm.activeChannelTransfers.Get(tag); ok {
		entry.hooks = append(entry.hooks, func() { pr.Refs-- }, cb)
		dm.Metrics.EdgeActiveChannelHits++
		return true
	}

	chunkBytes := dm.Graph.BlockSize
	if dm.bufferUsed+uint64(chunkBytes) > dm.dramCapacity {
		if !reenter {
			dm.deferChannelTransfer(tag, func() bool { return dm.edgeListPageRegToDRAM(bid, cb, true) })
		}
		return false
	}

	dm.activeChannelTransfers.PushBack(tag, &activeEntry{hooks: []func(){cb}})
	dm.bufferUsed += uint64(chunkBytes)
	addrs := dm.GSTL.BlockToFlashAddrs(bid)
	if err := dm.Flash.SendReq(SSDRequest{
		Type:  ReqPull,
		Addrs: addrs,
		Bytes: chunkBytes,
		Completion: func() {
			dm.onEdgeListPageRegToDRAMComplete(bid, chipid, tag, chunkBytes)
		},
	}); err != nil {
		panic(err)
	}
	return true
}

func (dm *DataManager) onEdgeListPageRegToDRAMComplete(bid uint32, chipid uint32, tag ChunkTag, chunkBytes uint32) {
	dm.bufferUsed -= uint64(chunkBytes)

	pr := &dm.GSTL.PageRegs[chipid]
	if !pr.Resident(int64(bid)) || pr.Refs <= 0 {
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

func (dm *DataManager) edgeListFlashToDRAM(bid uint32, cb func()) bool {
	return dm.edgeListFlashToPageReg(bid, func() {
		dm.edgeListPageRegToDRAM(bid, cb, false)
	}, false)
}

// LoadEdgeListToDRAM loads the edge list of the block(s) holding vid's
// adjacency into DRAM, invoking cb once the last block is resident. A
// dense vertex spans multiple consecutive blocks; every block but the
// last is kicked off with a no-op callback so they proceed in parallel,
// and cb is attached only to the last block's load. Consecutive blocks
// round-robin onto different chips (GSTL.ChipID), so cb firing does not
// by itself mean the earlier blocks have arrived.
//
// Returns (accepted, err): err is non-nil only when vid does not resolve
// to any block — cb never fires in that case. accepted is false when the
// request was deferred (cb will still fire later); true when it either
// completed synchronously or was admitted in flight.
func (dm *DataManager) LoadEdgeListToDRAM(vid uint64, cb func()) (bool, error) {
	if dv, ok := dm.Graph.DenseVertex(vid); ok {
		if dv.NBlocks == 0 {
			return false, fmt.Errorf("datamanager: dense vertex %d has zero blocks: %w", vid, errOutOfRange)
		}
		for i := uint32(0); i < dv.NBlocks-1; i++ {
			dm.edgeListFlashToDRAM(dv.BLo+i, func() {})
		}
		return dm.edgeListFlashToDRAM(dv.BLo+dv.NBlocks-1, cb), nil
	}

	bid, ok := dm.Graph.BinarySearchBlock(vid)
	if !ok {
		return false, fmt.Errorf("datamanager: vertex %d not found in any block: %w", vid, errOutOfRange)
	}
	return dm.edgeListFlashToDRAM(bid, cb), nil
}
