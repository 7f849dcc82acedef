package engine

import "github.com/sirupsen/logrus"

// Metrics holds the Data Manager's coalescing-hit counters, with separate
// fields per side (edge-list / node-feature), plus counts of deferred
// flash reads and channel transfers.
type Metrics struct {
	EdgeActiveFlashReadHits  uint64
	EdgeActiveChannelHits    uint64
	FeatureActiveFlashReadHits uint64
	FeatureActiveChannelHits   uint64

	PendingFlashReadsDeferred   uint64
	PendingChannelTransfersDeferred uint64
}

// DumpGSTLStats logs and resets the edge-list translation layer's
// per-epoch counters, matching show_epoch_gstl_stats.
func DumpGSTLStats(log *logrus.Logger, g *GSTL) {
	log.Infof("gstl epoch stats: bytes_loaded=%d", g.Stats.BytesLoaded)
	g.Stats.Reset()
}

// DumpNFTLStats logs and resets the node-feature translation layer's
// per-epoch counters, matching show_epoch_nftl_stats.
func DumpNFTLStats(log *logrus.Logger, n *NFTL) {
	log.Infof("nftl epoch stats: req_entry_hits=%d page_reg_hits=%d page_reg_misses=%d bytes_from_flash=%d bytes_via_channel=%d",
		n.Stats.ReqEntryHits, n.Stats.PageRegHits, n.Stats.PageRegMisses,
		n.Stats.BytesLoadedFromFlash, n.Stats.BytesTransmittedViaChannelBus)
	n.Stats.Reset()
}

// DumpIOStats logs and resets the Data Manager's own coalescing-hit
// counters, matching show_epoch_io_stats.
func (m *Metrics) DumpIOStats(log *logrus.Logger) {
	log.Infof("io epoch stats: edge_flash_hits=%d edge_channel_hits=%d feature_flash_hits=%d feature_channel_hits=%d pending_flash_deferred=%d pending_channel_deferred=%d",
		m.EdgeActiveFlashReadHits, m.EdgeActiveChannelHits,
		m.FeatureActiveFlashReadHits, m.FeatureActiveChannelHits,
		m.PendingFlashReadsDeferred, m.PendingChannelTransfersDeferred)
	*m = Metrics{}
}
