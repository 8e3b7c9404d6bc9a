package jtag

import "fmt"

// navigateToShift drives the TAP from TestLogicReset or RunTestIdle into
// ShiftIR or ShiftDR via the standard path:
// RUN_TEST_IDLE -> SELECT_DR [-> SELECT_IR] -> CAPTURE_x -> SHIFT_x.
func (c *Controller) navigateToShift(ir bool) error {
	switch c.currentState {
	case TestLogicReset:
		if err := c.Advance(RunTestIdle); err != nil {
			return err
		}
	case RunTestIdle:
		// already positioned
	default:
		return fmt.Errorf("%w: shift must start from TEST_LOGIC_RESET or RUN_TEST_IDLE, got %s", ErrBadTapState, c.currentState)
	}

	if err := c.Advance(SelectDR); err != nil {
		return err
	}
	if ir {
		if err := c.Advance(SelectIR); err != nil {
			return err
		}
		if err := c.Advance(CaptureIR); err != nil {
			return err
		}
		return c.Advance(ShiftIR)
	}
	if err := c.Advance(CaptureDR); err != nil {
		return err
	}
	return c.Advance(ShiftDR)
}

// navigateFromUpdate drives the TAP from UpdateIR/UpdateDR to one of the
// four accepted shift-engine end states: RunTestIdle, SelectDR, SelectIR
// or TestLogicReset.
func (c *Controller) navigateFromUpdate(end TAPState) error {
	switch end {
	case RunTestIdle:
		return c.Advance(RunTestIdle)
	case SelectDR:
		return c.Advance(SelectDR)
	case SelectIR:
		if err := c.Advance(SelectDR); err != nil {
			return err
		}
		return c.Advance(SelectIR)
	case TestLogicReset:
		return c.ResetTAP()
	default:
		return fmt.Errorf("%w: illegal shift end state %s", ErrBadParameter, end)
	}
}

// shift implements the IR/DR shift protocol common to InsertIR/InsertDR.
// ir selects the IR or DR column of the state diagram.
func (c *Controller) shift(ir bool, in []byte, n int, end TAPState, maxLen int) ([]byte, error) {
	if n < 1 || n > maxLen {
		return nil, fmt.Errorf("%w: length %d out of range [1,%d]", ErrInvalidIRorDRLen, n, maxLen)
	}
	if len(in) < n {
		return nil, fmt.Errorf("%w: input shorter than requested length", ErrBadParameter)
	}
	if !validBits(in[:n]) {
		return nil, fmt.Errorf("%w: input bits must be 0 or 1", ErrBadParameter)
	}

	shiftState, exit1State, updateState := ShiftDR, Exit1DR, UpdateDR
	if ir {
		shiftState, exit1State, updateState = ShiftIR, Exit1IR, UpdateIR
	}

	if err := c.navigateToShift(ir); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	for i := 0; i < n-1; i++ {
		if err := c.drv.Set(c.roles.TDI, PinLevel(in[i])); err != nil {
			return nil, err
		}
		if err := c.Advance(shiftState); err != nil {
			return nil, err
		}
		lvl, err := c.drv.Read(c.roles.TDO)
		if err != nil {
			return nil, err
		}
		out[i] = byte(lvl)
	}

	// Last bit: the TCK edge that shifts it in is the same edge that
	// leaves SHIFT_x for EXIT1_x (IEEE 1149.1 convention).
	if err := c.drv.Set(c.roles.TDI, PinLevel(in[n-1])); err != nil {
		return nil, err
	}
	if err := c.Advance(exit1State); err != nil {
		return nil, err
	}
	lvl, err := c.drv.Read(c.roles.TDO)
	if err != nil {
		return nil, err
	}
	out[n-1] = byte(lvl)

	if err := c.Advance(updateState); err != nil {
		return nil, err
	}

	if err := c.navigateFromUpdate(end); err != nil {
		return nil, err
	}

	return out, nil
}

// InsertIR loads irIn[0:irLen] into the Instruction Register while
// simultaneously capturing the bits shifted out of TDO, then navigates to
// end. Bits are LSB-first in both buffers.
func (c *Controller) InsertIR(irIn []byte, irLen int, end TAPState) ([]byte, error) {
	return c.shift(true, irIn, irLen, end, MaxIRLen)
}

// InsertDR loads drIn[0:drLen] into the Data Register while simultaneously
// capturing the bits shifted out of TDO, then navigates to end. Bits are
// LSB-first in both buffers.
func (c *Controller) InsertDR(drIn []byte, drLen int, end TAPState) ([]byte, error) {
	return c.shift(false, drIn, drLen, end, MaxDRLen)
}
