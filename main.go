// Cobra entrypoint; all flag handling lives in cmd/root.go.

package main

import (
	"github.com/flashgnn/datamgr-sim/cmd"
)

func main() {
	cmd.Execute()
}
