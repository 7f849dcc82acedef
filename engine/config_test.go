package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDeviceTOML = `
channels = 2
chips_per_channel = 2
dies_per_chip = 2
planes_per_die = 4
blocks_per_plane = 8
pages_per_block = 16
page_capacity_bytes = 4096
channel_bytes_per_cycle = 64.0
page_read_latency_cycles = 10
page_write_latency_cycles = 12
`

func TestLoadDeviceConfig_ValidFile(t *testing.T) {
	path := writeTemp(t, "device.toml", sampleDeviceTOML)
	cfg, err := LoadDeviceConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint32(2), cfg.Channels)
	require.Equal(t, uint32(4096), cfg.PageCapacity)

	geo := cfg.ToGeometry()
	require.Equal(t, uint32(4), geo.ChipCount())
}

func TestLoadDeviceConfig_MissingField_FailsValidation(t *testing.T) {
	path := writeTemp(t, "device.toml", "channels = 2\n")
	_, err := LoadDeviceConfig(path)
	require.Error(t, err)
}

func TestLoadWorkloadConfig_ValidFile(t *testing.T) {
	body := `
graph_header_path = "graph_header.txt"
node_feature_dim = 64
dram_capacity_bytes = 1048576
coalescing_table_capacity = 0
aggregator_latency_cycles = 5
combiner_lanes = 4
pe_latency_cycles = 2
batch_size = 16
seed = 1234
`
	path := writeTemp(t, "workload.toml", body)
	cfg, err := LoadWorkloadConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint32(64), cfg.NodeFeatureDim)
	require.Equal(t, 4, cfg.CombinerLanes)
}

func TestLoadWorkloadConfig_ZeroCombinerLanes_FailsValidation(t *testing.T) {
	body := `
graph_header_path = "graph_header.txt"
node_feature_dim = 64
dram_capacity_bytes = 1048576
aggregator_latency_cycles = 5
combiner_lanes = 0
pe_latency_cycles = 2
batch_size = 16
`
	path := writeTemp(t, "workload.toml", body)
	_, err := LoadWorkloadConfig(path)
	require.Error(t, err)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
