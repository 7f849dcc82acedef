// cmd/config_load.go
package cmd

import (
	"fmt"

	"github.com/flashgnn/datamgr-sim/engine"
)

// loadRunConfig loads the device geometry, graph metadata, and workload
// config the engine needs from the device and workload TOML files (the
// graph header path comes from the workload file). It applies no
// overrides; the run command applies preset and flag overrides (seed,
// batch size, node feature dim) to the returned workload config.
func loadRunConfig(devicePath, workloadPath string) (engine.DeviceGeometry, *engine.GraphMetadata, engine.WorkloadConfig, error) {
	devCfg, err := engine.LoadDeviceConfig(devicePath)
	if err != nil {
		return engine.DeviceGeometry{}, nil, engine.WorkloadConfig{}, fmt.Errorf("loading device config: %w", err)
	}

	wCfg, err := engine.LoadWorkloadConfig(workloadPath)
	if err != nil {
		return engine.DeviceGeometry{}, nil, engine.WorkloadConfig{}, fmt.Errorf("loading workload config: %w", err)
	}

	graph, err := engine.LoadGraphHeaderFile(wCfg.GraphHeaderPath)
	if err != nil {
		return engine.DeviceGeometry{}, nil, engine.WorkloadConfig{}, fmt.Errorf("loading graph header: %w", err)
	}

	return devCfg.ToGeometry(), graph, wCfg, nil
}
