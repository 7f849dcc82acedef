package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// activeEntry is the value stored in an active-* coalescing table: a
// single in-flight operation plus every completion hook that has joined
// it since it was issued. All hooks fire, in registration order, exactly
// once — when the underlying flash/channel transaction completes.
type activeEntry struct {
	hooks []func()
}

// pendingEntry is the value stored in a pending-* coalescing table: a
// deferred operation represented as a retry thunk per distinct caller.
// A thunk returns true if its retry was admitted (ran to completion or
// joined another in-flight operation), false if it is still blocked.
// flushPending* stops at the first thunk that returns false, preserving
// FIFO order and all-or-nothing firing within one entry.
type pendingEntry struct {
	hooks []func() bool
}

// DataManager is the coordinating component (C5): it owns the
// translation layers, the flash/channel simulator, the compute-delay
// queues, and the active/pending coalescing tables that implement the
// two-stage (flash -> page register -> DRAM) pipelines for both the
// edge-list and node-feature sides.
type DataManager struct {
	Geo   DeviceGeometry
	GSTL  *GSTL
	NFTL  *NFTL
	Graph *GraphMetadata
	Flash *FlashSim

	Aggregator *Aggregator
	Combiner   *Combiner
	Metrics    Metrics

	dramCapacity uint64
	bufferUsed   uint64

	// activeFlashReads/pendingFlashReads are per-chip: Stage 1 of both
	// sides shares one flash-read coalescing table per chip. Each side
	// still has its own page register per chip (GSTL.PageRegs and
	// NFTL.PageRegs); entries of the two sides never collide because
	// their tags differ in Kind.
	activeFlashReads  []*MultifuncList[ChunkTag, *activeEntry]
	pendingFlashReads []*MultifuncList[ChunkTag, *pendingEntry]

	// activeChannelTransfers/pendingChannelTransfers are global: both
	// sides' Stage 2 share one DRAM-buffer budget (bufferUsed/dramCapacity),
	// so their admission/backpressure must be decided against one table.
	activeChannelTransfers  *MultifuncList[ChunkTag, *activeEntry]
	pendingChannelTransfers *MultifuncList[ChunkTag, *pendingEntry]

	log *logrus.Logger
}

// NewDataManager wires together the translation layers, flash simulator,
// and compute-delay queues described by cfg and graph.
func NewDataManager(geo DeviceGeometry, graph *GraphMetadata, cfg WorkloadConfig, log *logrus.Logger) *DataManager {
	rng := NewPartitionedRNG(SimulationKey(cfg.Seed))
	chipCount := int(geo.ChipCount())

	activeFlashReads := make([]*MultifuncList[ChunkTag, *activeEntry], chipCount)
	pendingFlashReads := make([]*MultifuncList[ChunkTag, *pendingEntry], chipCount)
	for i := 0; i < chipCount; i++ {
		activeFlashReads[i] = NewMultifuncList[ChunkTag, *activeEntry](cfg.CoalescingCap, rng.ForSubsystem(SubsystemMultifuncEdge).Int63())
		pendingFlashReads[i] = NewMultifuncList[ChunkTag, *pendingEntry](cfg.CoalescingCap, rng.ForSubsystem(SubsystemMultifuncEdge).Int63())
	}

	combineLatency := CombineLatencyCycles(cfg.PELatencyCycles, cfg.NodeFeatureDim)

	return &DataManager{
		Geo:          geo,
		GSTL:         NewGSTL(geo),
		NFTL:         NewNFTL(geo, cfg.NodeFeatureDim, graph.NVerts),
		Graph:        graph,
		Flash:        NewFlashSim(geo),
		Aggregator:   NewAggregator(cfg.AggregatorLatencyCycles),
		Combiner:     NewCombiner(cfg.CombinerLanes, combineLatency, cfg.PELatencyCycles),
		dramCapacity: cfg.DRAMCapacity,

		activeFlashReads:  activeFlashReads,
		pendingFlashReads: pendingFlashReads,

		activeChannelTransfers:  NewMultifuncList[ChunkTag, *activeEntry](cfg.CoalescingCap, rng.ForSubsystem(SubsystemMultifuncGeneric).Int63()),
		pendingChannelTransfers: NewMultifuncList[ChunkTag, *pendingEntry](cfg.CoalescingCap, rng.ForSubsystem(SubsystemMultifuncGeneric).Int63()),

		log: log,
	}
}

// Tick advances the flash simulator by one cycle and drains both
// compute-delay queues against the new cycle, matching the Data
// Manager's own tick() contract in §4.4.
func (dm *DataManager) Tick() {
	dm.Flash.Tick()
	now := dm.Flash.Cycle()
	dm.Aggregator.Drain(now)
	dm.Combiner.Drain(now)
}

// GetNextEventFiretime returns the earliest cycle at which the flash
// simulator or either compute-delay queue next has work to do.
func (dm *DataManager) GetNextEventFiretime() int64 {
	best := dm.Flash.NextEventFiretime()
	if ft, ok := dm.Aggregator.NextFiretime(); ok && ft < best {
		best = ft
	}
	if ft, ok := dm.Combiner.NextFiretime(); ok && ft < best {
		best = ft
	}
	return best
}

// SkipToNextEvent jumps the clock to just before the next scheduled
// firing, then ticks once to land exactly on it — avoiding Tick-by-Tick
// stepping through cycles with nothing happening.
func (dm *DataManager) SkipToNextEvent() {
	ft := dm.GetNextEventFiretime()
	cur := dm.Flash.Cycle()
	if ft > cur+1 {
		dm.Flash.SetCycle(ft - 1)
	}
	dm.Tick()
}

// Busy reports whether any pipeline has outstanding work: an in-flight
// flash/channel transaction, a pending (deferred) request, or a
// compute-delay queue entry not yet drained.
func (dm *DataManager) Busy() bool {
	if dm.Flash.Busy() {
		return true
	}
	if _, ok := dm.Aggregator.NextFiretime(); ok {
		return true
	}
	if _, ok := dm.Combiner.NextFiretime(); ok {
		return true
	}
	for _, t := range dm.activeFlashReads {
		if !t.Empty() {
			return true
		}
	}
	for _, t := range dm.pendingFlashReads {
		if !t.Empty() {
			return true
		}
	}
	return !dm.activeChannelTransfers.Empty() || !dm.pendingChannelTransfers.Empty()
}

// NodeFeatureInPageReg reports whether vid's raw input feature currently
// sits, fully resident, in its chip's page register.
func (dm *DataManager) NodeFeatureInPageReg(vid uint64) bool {
	vgid := dm.NFTL.VidToVGroupID(vid)
	chipid := dm.NFTL.ChipID(vgid)
	return dm.NFTL.PageRegs[chipid].Resident(int64(vgid))
}

func edgeListTag(bid uint32, nftl *NFTL) ChunkTag {
	return ChunkTag{Kind: ChunkEdgeList, BlockID: bid, NodeFeature: SentinelNodeFeature(nftl.NVerts), VGroupID: nftl.NVGroups}
}

func nodeFeatureGroupTag(vgid uint64, nverts uint64) ChunkTag {
	return ChunkTag{Kind: ChunkNodeFeatureGroup, BlockID: noBlockSentinel, NodeFeature: SentinelNodeFeature(nverts), VGroupID: vgid}
}

func nodeFeatureTag(desc NodeFeatureDescriptor, vgid uint64) ChunkTag {
	return ChunkTag{Kind: ChunkNodeFeature, BlockID: noBlockSentinel, NodeFeature: desc, VGroupID: vgid}
}

// noBlockSentinel marks "not applicable" for ChunkTag.BlockID on
// node-feature-side tags, matching the original's use of nblocks as a
// sentinel for the equivalent field.
const noBlockSentinel = ^uint32(0)

var errOutOfRange = fmt.Errorf("datamanager: requested vertex is out of range")
