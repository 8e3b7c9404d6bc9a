package cmd

import (
	"fmt"

	"github.com/gremwell/jtagctl/jtag"
	"github.com/spf13/cobra"
)

var (
	discoverFirst uint32
	discoverLast  uint32
	discoverIRLen int
	discoverTicks int
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Read IDCODE/IR length, or sweep instructions for DR lengths",
}

var discoverChainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Read IDCODE and measure IR length",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildController()
		if err != nil {
			return err
		}
		defer c.Close()

		irLen, idcode, err := c.DetectChain()
		if err != nil {
			return err
		}
		fields := jtag.DecodeIDCode(idcode)
		fmt.Printf("idcode: 0x%08x (mfg: %s, part: 0x%04x, ver: 0x%x)\n",
			idcode, fields.ManufacturerName, fields.PartNumber, fields.Version)
		fmt.Println("ir length:", irLen)
		return nil
	},
}

var discoverSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep instructions [first,last] and report DR lengths",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildController()
		if err != nil {
			return err
		}
		defer c.Close()

		results, err := c.Discovery(discoverFirst, discoverLast, jtag.MaxDRLen, discoverIRLen, discoverTicks)
		for _, r := range results {
			fmt.Printf("instruction 0x%x -> dr_len %d\n", r.Instruction, r.DRLen)
		}
		return err
	},
}

func init() {
	discoverCmd.AddCommand(discoverChainCmd)
	discoverCmd.AddCommand(discoverSweepCmd)

	discoverSweepCmd.Flags().Uint32Var(&discoverFirst, "first", 0, "first instruction value")
	discoverSweepCmd.Flags().Uint32Var(&discoverLast, "last", 0, "last instruction value (inclusive)")
	discoverSweepCmd.Flags().IntVar(&discoverIRLen, "ir-len", 4, "instruction register length in bits")
	discoverSweepCmd.Flags().IntVar(&discoverTicks, "process-ticks", jtag.DefaultProcTick, "idle TCK cycles between IR load and DR probe")
}
