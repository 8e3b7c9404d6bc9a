// Command jtagctl is a thin CLI client of the jtag core: a minimal
// Cobra-based driver used to exercise the core end to end, not a full
// interactive menu system.
package main

import "github.com/gremwell/jtagctl/cmd/jtagctl/cmd"

func main() {
	cmd.Execute()
}
