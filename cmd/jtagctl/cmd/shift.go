package cmd

import (
	"fmt"

	"github.com/gremwell/jtagctl/jtag"
	"github.com/spf13/cobra"
)

var (
	shiftBits string
	shiftEnd  string
)

var shiftCmd = &cobra.Command{
	Use:   "shift",
	Short: "Shift a bit pattern into IR or DR",
}

// parseBits turns a string of '0'/'1' characters (LSB first, i.e. bits[0]
// is the leftmost character) into the core's one-byte-per-bit buffers.
// This kind of text-to-bits conversion is a client concern, so it lives
// in the CLI rather than in package jtag.
func parseBits(s string) ([]byte, error) {
	out := make([]byte, len(s))
	for i, r := range s {
		switch r {
		case '0':
			out[i] = 0
		case '1':
			out[i] = 1
		default:
			return nil, fmt.Errorf("shift: bit pattern must be 0/1 characters, got %q", r)
		}
	}
	return out, nil
}

func endState(s string) (jtag.TAPState, error) {
	switch s {
	case "idle":
		return jtag.RunTestIdle, nil
	case "select-dr":
		return jtag.SelectDR, nil
	case "select-ir":
		return jtag.SelectIR, nil
	case "reset":
		return jtag.TestLogicReset, nil
	default:
		return 0, fmt.Errorf("shift: unknown --end %q", s)
	}
}

var shiftIRCmd = &cobra.Command{
	Use:   "ir",
	Short: "Shift a bit pattern into the Instruction Register",
	RunE: func(_ *cobra.Command, _ []string) error {
		bits, err := parseBits(shiftBits)
		if err != nil {
			return err
		}
		end, err := endState(shiftEnd)
		if err != nil {
			return err
		}
		c, err := buildController()
		if err != nil {
			return err
		}
		defer c.Close()

		out, err := c.InsertIR(bits, len(bits), end)
		if err != nil {
			return err
		}
		fmt.Printf("tdo: %v\n", out)
		return nil
	},
}

var shiftDRCmd = &cobra.Command{
	Use:   "dr",
	Short: "Shift a bit pattern into the Data Register",
	RunE: func(_ *cobra.Command, _ []string) error {
		bits, err := parseBits(shiftBits)
		if err != nil {
			return err
		}
		end, err := endState(shiftEnd)
		if err != nil {
			return err
		}
		c, err := buildController()
		if err != nil {
			return err
		}
		defer c.Close()

		out, err := c.InsertDR(bits, len(bits), end)
		if err != nil {
			return err
		}
		fmt.Printf("tdo: %v\n", out)
		return nil
	},
}

func init() {
	shiftCmd.AddCommand(shiftIRCmd, shiftDRCmd)
	for _, c := range []*cobra.Command{shiftIRCmd, shiftDRCmd} {
		c.Flags().StringVar(&shiftBits, "bits", "", "bit pattern, e.g. 1011 (LSB first)")
		c.Flags().StringVar(&shiftEnd, "end", "idle", "end state: idle|select-dr|select-ir|reset")
	}
}
