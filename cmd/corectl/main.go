// Command corectl is a development harness for the orchestrator package,
// the way the teacher's cmd/root.go wires a Cobra tree over
// internal/executor — a thin CLI front end, not the production
// transport (the real integration surface is out of scope, §1).
package main

import (
	"os"

	"github.com/lockplane/schemacore/cmd/corectl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
