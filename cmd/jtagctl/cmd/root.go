// Package cmd implements jtagctl's Cobra command tree: a root command with
// persistent driver/pin/delay flags, and one subcommand group per
// operation (reset, chain, discover, shift).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	driverName string
	pinsJSON   string
	delayUS    uint
)

var rootCmd = &cobra.Command{
	Use:   "jtagctl",
	Short: "Bit-banged JTAG host controller",
	Long: `jtagctl drives a target's JTAG Test Access Port over bit-banged
GPIO (or a serial/USB bridge) and exposes TAP reset, IR/DR shifting,
boundary-scan discovery and chain management.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jtagctl:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&driverName, "driver", "loopback",
		"pin driver: loopback|rpio|gpiod|periph|serial|usb")
	rootCmd.PersistentFlags().StringVar(&pinsJSON, "pins", "",
		`pin assignment as JSON, e.g. '{"tck":7,"tms":8,"tdi":9,"tdo":10,"trst":11}'`)
	rootCmd.PersistentFlags().UintVar(&delayUS, "delay-us", 100,
		"half-clock-cycle delay in microseconds")

	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(shiftCmd)
}
