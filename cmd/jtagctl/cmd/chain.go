package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/gremwell/jtagctl/jtag"
	"github.com/gremwell/jtagctl/jtag/persist"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Manage the chain descriptor table",
}

var (
	chainIndex  int
	chainName   string
	chainIDCode uint32
	chainIRLen  int
	chainFile   string
)

// buildChainController builds a Controller the normal way, then, if
// --chain-file names an existing snapshot, restores the chain table from
// it. Each CLI invocation otherwise starts from an empty chain table
// (buildController's Controller is freshly constructed), so chain
// subcommands run as separate processes would never see each other's
// add/activate calls without this.
func buildChainController() (*jtag.Controller, error) {
	c, err := buildController()
	if err != nil {
		return nil, err
	}
	if chainFile == "" {
		return c, nil
	}
	snap, err := persist.Load(chainFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		c.Close()
		return nil, err
	}
	if err := persist.Restore(c, snap); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// saveChainFile persists c's chain table to --chain-file, if set, so the
// next invocation of buildChainController picks up the mutation.
func saveChainFile(c *jtag.Controller) error {
	if chainFile == "" {
		return nil
	}
	return persist.Save(chainFile, persist.FromController(c))
}

var chainAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a TAP descriptor to the chain table",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildChainController()
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.AddTAP(chainIndex, chainName, chainIDCode, chainIRLen); err != nil {
			return err
		}
		return saveChainFile(c)
	},
}

var chainActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Activate a chain slot, assigning its IR bit window",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildChainController()
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.ActivateTAP(chainIndex); err != nil {
			return err
		}
		return saveChainFile(c)
	},
}

var chainDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Deactivate a chain slot",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildChainController()
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.DeactivateTAP(chainIndex); err != nil {
			return err
		}
		return saveChainFile(c)
	},
}

var chainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active chain descriptors",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildChainController()
		if err != nil {
			return err
		}
		defer c.Close()
		fmt.Printf("active devices: %d, total ir len: %d\n", c.ActiveDevices(), c.TotalIRLen())
		fmt.Print(c.DescribeChain())
		return nil
	},
}

var chainSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select one device's descriptor, shift BYPASS into the whole chain IR, land in RUN_TEST_IDLE",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildChainController()
		if err != nil {
			return err
		}
		defer c.Close()

		d, irIn, irOut, err := c.Selector(chainIndex)
		if err != nil {
			return err
		}
		fmt.Printf("selected: %s (idcode 0x%08x, ir_len %d)\n", d.Name, d.IDCode, d.IRLen)
		fmt.Printf("ir_in:  %v\n", irIn)
		fmt.Printf("ir_out: %v\n", irOut)
		return nil
	},
}

func init() {
	chainCmd.AddCommand(chainAddCmd, chainActivateCmd, chainDeactivateCmd, chainListCmd, chainSelectCmd)

	chainCmd.PersistentFlags().StringVar(&chainFile, "chain-file", "",
		"path to persist the chain descriptor table across invocations (CBOR)")

	for _, c := range []*cobra.Command{chainAddCmd, chainActivateCmd, chainDeactivateCmd, chainSelectCmd} {
		c.Flags().IntVar(&chainIndex, "index", 0, "chain slot index")
	}
	chainAddCmd.Flags().StringVar(&chainName, "name", "", "device name")
	chainAddCmd.Flags().Uint32Var(&chainIDCode, "idcode", 0, "device idcode")
	chainAddCmd.Flags().IntVar(&chainIRLen, "ir-len", 0, "device IR length in bits")
}
