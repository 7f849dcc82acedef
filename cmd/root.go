// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flashgnn/datamgr-sim/engine"
)

var (
	devicePath    string
	workloadPath  string
	logLevel      string
	seedOverride  int64
	batchOverride int
	maxTicks      int
	presetsPath   string
	presetName    string
)

var rootCmd = &cobra.Command{
	Use:   "datamgr-sim",
	Short: "Discrete-event simulator for an SSD-backed GNN accelerator's data manager",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batched-load workload against the data manager",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		log := logrus.New()
		log.SetLevel(level)

		geo, graph, wCfg, err := loadRunConfig(devicePath, workloadPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		if presetName != "" {
			pf, err := loadPresetsFile(presetsPath)
			if err != nil {
				log.Fatalf("loading presets: %v", err)
			}
			preset, ok := lookupPreset(pf, presetName)
			if !ok {
				log.Fatalf("preset %q not found in %s", presetName, presetsPath)
			}
			if preset.BatchSize != 0 {
				wCfg.BatchSize = preset.BatchSize
			}
			if preset.Seed != 0 {
				wCfg.Seed = preset.Seed
			}
			if preset.NodeFeatureDim != 0 {
				wCfg.NodeFeatureDim = uint32(preset.NodeFeatureDim)
			}
		}
		if seedOverride != 0 {
			wCfg.Seed = seedOverride
		}
		if batchOverride != 0 {
			wCfg.BatchSize = batchOverride
		}

		log.Infof("starting run: channels=%d chips_per_channel=%d nverts=%d node_feature_dim=%d batch_size=%d seed=%d",
			geo.Channels, geo.ChipsPerChannel, graph.NVerts, wCfg.NodeFeatureDim, wCfg.BatchSize, wCfg.Seed)

		dm := engine.NewDataManager(geo, graph, wCfg, log)
		runBatchedLoadWorkload(dm, graph.NVerts, wCfg.BatchSize, maxTicks, log)

		dm.Metrics.DumpIOStats(log)
		engine.DumpGSTLStats(log, dm.GSTL)
		engine.DumpNFTLStats(log, dm.NFTL)
		log.Info("run complete")
	},
}

// runBatchedLoadWorkload issues a LoadEdgeListToDRAM and LoadNodeFeatureToDRAM
// for every vertex, batchSize at a time, draining the pipeline to idle
// between batches before advancing to the next.
func runBatchedLoadWorkload(dm *engine.DataManager, nverts uint64, batchSize, maxTicks int, log *logrus.Logger) {
	for lo := uint64(0); lo < nverts; lo += uint64(batchSize) {
		hi := lo + uint64(batchSize)
		if hi > nverts {
			hi = nverts
		}
		for vid := lo; vid < hi; vid++ {
			v := vid
			if _, err := dm.LoadEdgeListToDRAM(v, func() {}); err != nil {
				log.Warnf("vertex %d: edge list load refused: %v", v, err)
			}
			if _, err := dm.LoadNodeFeatureToDRAM(v, func() {}); err != nil {
				log.Warnf("vertex %d: node feature load refused: %v", v, err)
			}
		}
		drainToIdle(dm, maxTicks)
		log.Debugf("batch [%d,%d) drained", lo, hi)
	}
}

func drainToIdle(dm *engine.DataManager, maxTicks int) {
	for i := 0; i < maxTicks && dm.Busy(); i++ {
		dm.SkipToNextEvent()
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&devicePath, "device-config", "testdata/ssd_config.toml", "Path to the device topology TOML file")
	runCmd.Flags().StringVar(&workloadPath, "workload-config", "testdata/workload.toml", "Path to the workload TOML file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seedOverride, "seed", 0, "Override the workload config's random seed (0 = use config value)")
	runCmd.Flags().IntVar(&batchOverride, "batch-size", 0, "Override the workload config's batch size (0 = use config value)")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks-per-batch", 100000, "Safety bound on event-skip iterations per batch")
	runCmd.Flags().StringVar(&presetsPath, "presets-file", "testdata/presets.yaml", "Path to a YAML file of named workload presets")
	runCmd.Flags().StringVar(&presetName, "preset", "", "Name of a preset in --presets-file to apply on top of the workload config")

	rootCmd.AddCommand(runCmd)
}
