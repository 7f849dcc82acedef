package cmd

import (
	"os"
	"path/filepath"
	"testing"
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

const workloadTOMLBody = `
node_feature_dim = 32
dram_capacity_bytes = 1048576
coalescing_table_capacity = 0
aggregator_latency_cycles = 5
combiner_lanes = 4
pe_latency_cycles = 2
batch_size = 8
seed = 7
`

const sampleGraphHeader = `
nverts = 4
ndverts = 0
nedges = 8
nblocks = 1
ndblocks = 0
block_size = 4096

[block 0]
vlo = 0
vup = 4
elo = 0
odg = 2
idg = 2
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadRunConfig_ValidFiles(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.txt")
	if err := os.WriteFile(graphPath, []byte(sampleGraphHeader), 0o644); err != nil {
		t.Fatalf("writing graph header: %v", err)
	}

	devicePath := writeTemp(t, "device.toml", sampleDeviceTOML)
	workloadPath := writeTemp(t, "workload.toml", "graph_header_path = \""+graphPath+"\"\n"+workloadTOMLBody)

	geo, graph, wCfg, err := loadRunConfig(devicePath, workloadPath)
	if err != nil {
		t.Fatalf("loadRunConfig: %v", err)
	}
	if geo.ChipCount() != 4 {
		t.Fatalf("expected chip count 4, got %d", geo.ChipCount())
	}
	if graph.NVerts != 4 {
		t.Fatalf("expected nverts 4, got %d", graph.NVerts)
	}
	if wCfg.NodeFeatureDim != 32 {
		t.Fatalf("expected node_feature_dim 32, got %d", wCfg.NodeFeatureDim)
	}
}

func TestLoadRunConfig_MissingDeviceFile(t *testing.T) {
	_, _, _, err := loadRunConfig("/nonexistent/device.toml", "/nonexistent/workload.toml")
	if err == nil {
		t.Fatal("expected error for missing device config")
	}
}
