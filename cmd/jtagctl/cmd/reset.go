package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Force the TAP to TEST_LOGIC_RESET",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildController()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.ResetTAP(); err != nil {
			return err
		}
		fmt.Println("tap state:", c.State())
		return nil
	},
}
