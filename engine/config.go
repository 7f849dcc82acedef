package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DeviceConfig is the device-topology TOML file (§6): the fixed flash
// array shape and its per-page/per-channel timing constants, grounded on
// dsmmcken-dh-cli's config.Load (toml.Unmarshal into a strict struct,
// wrapped error).
type DeviceConfig struct {
	Channels        uint32 `toml:"channels"`
	ChipsPerChannel uint32 `toml:"chips_per_channel"`
	DiesPerChip     uint32 `toml:"dies_per_chip"`
	PlanesPerDie    uint32 `toml:"planes_per_die"`
	BlocksPerPlane  uint32 `toml:"blocks_per_plane"`
	PagesPerBlock   uint32 `toml:"pages_per_block"`
	PageCapacity    uint32 `toml:"page_capacity_bytes"`

	ChannelBytesPerCycle   float64 `toml:"channel_bytes_per_cycle"`
	PageReadLatencyCycles  int64   `toml:"page_read_latency_cycles"`
	PageWriteLatencyCycles int64   `toml:"page_write_latency_cycles"`
}

// LoadDeviceConfig reads and validates a device-topology TOML file.
func LoadDeviceConfig(path string) (DeviceConfig, error) {
	var cfg DeviceConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading device config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing device config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first structurally invalid field, if any.
func (c DeviceConfig) Validate() error {
	for name, v := range map[string]uint32{
		"channels":          c.Channels,
		"chips_per_channel": c.ChipsPerChannel,
		"dies_per_chip":     c.DiesPerChip,
		"planes_per_die":    c.PlanesPerDie,
		"blocks_per_plane":  c.BlocksPerPlane,
		"pages_per_block":   c.PagesPerBlock,
		"page_capacity_bytes": c.PageCapacity,
	} {
		if v == 0 {
			return fmt.Errorf("device config: %s must be > 0", name)
		}
	}
	if c.ChannelBytesPerCycle <= 0 {
		return fmt.Errorf("device config: channel_bytes_per_cycle must be > 0")
	}
	if c.PageReadLatencyCycles <= 0 || c.PageWriteLatencyCycles <= 0 {
		return fmt.Errorf("device config: page_{read,write}_latency_cycles must be > 0")
	}
	return nil
}

// ToGeometry converts the validated config into the DeviceGeometry used
// throughout engine.
func (c DeviceConfig) ToGeometry() DeviceGeometry {
	return DeviceGeometry{
		Channels:               c.Channels,
		ChipsPerChannel:        c.ChipsPerChannel,
		DiesPerChip:            c.DiesPerChip,
		PlanesPerDie:           c.PlanesPerDie,
		BlocksPerPlane:         c.BlocksPerPlane,
		PagesPerBlock:          c.PagesPerBlock,
		PageCapacity:           c.PageCapacity,
		BytesPerCycle:          c.ChannelBytesPerCycle,
		PageReadLatencyCycles:  c.PageReadLatencyCycles,
		PageWriteLatencyCycles: c.PageWriteLatencyCycles,
	}
}

// WorkloadConfig is the workload-definition TOML file (§6): graph
// location, coalescing/DRAM sizing, and compute-delay-queue latencies.
type WorkloadConfig struct {
	GraphHeaderPath string `toml:"graph_header_path"`
	NodeFeatureDim  uint32 `toml:"node_feature_dim"`
	DRAMCapacity    uint64 `toml:"dram_capacity_bytes"`
	CoalescingCap   int    `toml:"coalescing_table_capacity"`
	AggregatorLatencyCycles int64 `toml:"aggregator_latency_cycles"`
	CombinerLanes           int   `toml:"combiner_lanes"`
	PELatencyCycles         int64 `toml:"pe_latency_cycles"`
	BatchSize               int   `toml:"batch_size"`
	Seed                    int64 `toml:"seed"`
}

// LoadWorkloadConfig reads and validates a workload TOML file.
func LoadWorkloadConfig(path string) (WorkloadConfig, error) {
	var cfg WorkloadConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading workload config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing workload config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c WorkloadConfig) Validate() error {
	if c.GraphHeaderPath == "" {
		return fmt.Errorf("workload config: graph_header_path is required")
	}
	if c.NodeFeatureDim == 0 {
		return fmt.Errorf("workload config: node_feature_dim must be > 0")
	}
	if c.DRAMCapacity == 0 {
		return fmt.Errorf("workload config: dram_capacity_bytes must be > 0")
	}
	if c.CombinerLanes <= 0 {
		return fmt.Errorf("workload config: combiner_lanes must be > 0")
	}
	if c.AggregatorLatencyCycles <= 0 || c.PELatencyCycles <= 0 {
		return fmt.Errorf("workload config: aggregator_latency_cycles and pe_latency_cycles must be > 0")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("workload config: batch_size must be > 0")
	}
	return nil
}
