package jtag

import "fmt"

// shiftBitRaw drives TDI to tdi, self-loops one TCK pulse in shiftState
// (the controller must already be in shiftState) and samples TDO. It is
// the bit-at-a-time primitive the discovery algorithms use to probe an
// IR/DR of unknown length, as opposed to InsertIR/InsertDR which require
// the length up front.
func (c *Controller) shiftBitRaw(shiftState TAPState, tdi PinLevel) (PinLevel, error) {
	if err := c.drv.Set(c.roles.TDI, tdi); err != nil {
		return 0, err
	}
	if err := c.Advance(shiftState); err != nil {
		return 0, err
	}
	return c.drv.Read(c.roles.TDO)
}

// searchSentinel assumes the controller is already sitting in shiftState
// (a self-loop state), flushes it with ceiling 1-bits, injects a single
// 0-bit, then counts self-loop cycles until that 0 reappears on TDO. This
// is the length-discovery primitive shared by DetectChain's IR search and
// DetectDRLen: flood a register of unknown length with known bits, then
// time how long it takes the sentinel to walk out the far end. Returns
// the cycle count, or 0 if the sentinel never reappeared within ceiling
// further cycles.
func (c *Controller) searchSentinel(shiftState TAPState, ceiling int) (int, error) {
	for i := 0; i < ceiling; i++ {
		if _, err := c.shiftBitRaw(shiftState, High); err != nil {
			return 0, err
		}
	}
	if _, err := c.shiftBitRaw(shiftState, Low); err != nil {
		return 0, err
	}
	for i := 1; i <= ceiling; i++ {
		lvl, err := c.shiftBitRaw(shiftState, High)
		if err != nil {
			return 0, err
		}
		if lvl == Low {
			return i, nil
		}
	}
	return 0, nil
}

// DetectChain reads the 32-bit IDCODE of the device currently addressed
// (the first device on the chain, assuming IDCODE is the implicit
// post-reset instruction) and measures the IR length of the currently
// addressed TAP by flushing the IR with ones and timing how long an
// injected zero takes to reappear on TDO.
//
// This assumes IDCODE (not BYPASS) is the reset-default instruction; a
// conforming target that defaults to BYPASS will fail the LSB check
// below.
func (c *Controller) DetectChain() (irLen int, idcode uint32, err error) {
	if err = c.ResetTAP(); err != nil {
		return
	}
	if err = c.navigateToShift(false); err != nil {
		return
	}

	bits := make([]byte, 32)
	for i := 0; i < 32; i++ {
		var lvl PinLevel
		lvl, err = c.shiftBitRaw(ShiftDR, Low)
		if err != nil {
			return
		}
		bits[i] = byte(lvl)
	}
	idcode = BitsToUint32(bits)
	if idcode&1 != 1 {
		err = fmt.Errorf("%w: captured 0x%08x", ErrBadIDCode, idcode)
		return
	}

	if err = c.ResetTAP(); err != nil {
		return
	}
	if err = c.navigateToShift(true); err != nil {
		return
	}

	irLen, err = c.searchSentinel(ShiftIR, ManyOnes)
	if err != nil {
		return
	}
	if irLen == 0 {
		err = fmt.Errorf("%w: ir length search exceeded %d cycles", ErrInvalidIRorDRLen, ManyOnes)
		return
	}

	if err = c.Advance(Exit1IR); err != nil {
		return
	}
	if err = c.Advance(UpdateIR); err != nil {
		return
	}
	err = c.Advance(RunTestIdle)
	return
}

// DetectDRLen measures the length of the DR selected by instruction (the
// DR selected depends on which instruction is loaded into the IR). The
// caller must have the TAP in TestLogicReset before calling. processTicks
// TCK cycles are idled in RUN_TEST_IDLE between loading the instruction
// and probing the DR, to give the target time to latch it. Returns the
// measured length, or 0 if the injected zero never reappeared within
// MaxDRLen further cycles.
func (c *Controller) DetectDRLen(instruction []byte, irLen int, processTicks int) (int, error) {
	if c.currentState != TestLogicReset {
		return 0, fmt.Errorf("%w: DetectDRLen requires TEST_LOGIC_RESET, got %s", ErrBadTapState, c.currentState)
	}

	if _, err := c.InsertIR(instruction, irLen, RunTestIdle); err != nil {
		return 0, err
	}
	for i := 0; i < processTicks; i++ {
		if err := c.Advance(RunTestIdle); err != nil {
			return 0, err
		}
	}

	if err := c.navigateToShift(false); err != nil {
		return 0, err
	}

	length, err := c.searchSentinel(ShiftDR, MaxDRLen)
	if err != nil {
		return 0, err
	}

	if err := c.Advance(Exit1DR); err != nil {
		return 0, err
	}
	if err := c.Advance(UpdateDR); err != nil {
		return 0, err
	}
	if err := c.Advance(RunTestIdle); err != nil {
		return 0, err
	}

	return length, nil
}

// InstructionSurvey is one (instruction, DR length) observation produced
// by Discovery.
type InstructionSurvey struct {
	Instruction uint32
	DRLen       int
}

// Discovery sweeps every instruction value in [first, last], resetting the
// TAP between iterations and recording (instruction, DR length) pairs. If
// any iteration's DR length equals maxDRLen exactly, that is treated as
// TDO stuck at 1 and the sweep aborts, returning the results gathered so
// far alongside the error.
func (c *Controller) Discovery(first, last uint32, maxDRLen, irLen, processTicks int) ([]InstructionSurvey, error) {
	var results []InstructionSurvey
	for instr := first; instr <= last; instr++ {
		if err := c.ResetTAP(); err != nil {
			return results, err
		}
		bits := make([]byte, irLen)
		Uint32ToBits(instr, irLen, bits)

		drLen, err := c.DetectDRLen(bits, irLen, processTicks)
		if err != nil {
			return results, err
		}
		results = append(results, InstructionSurvey{Instruction: instr, DRLen: drLen})
		if drLen == maxDRLen {
			return results, fmt.Errorf("%w: instruction 0x%x reported dr_len == max_dr_len", ErrTDOStuckAt1, instr)
		}
		if instr == last {
			break
		}
	}
	return results, nil
}

// IDCodeFields is the JEP106-decoded breakdown of a captured IDCODE. It is
// a pure function over already-captured data, not a hardware operation.
type IDCodeFields struct {
	Version          uint8
	PartNumber       uint16
	MfgBank          uint8
	MfgID            uint8
	ManufacturerName string
}

// DecodeIDCode splits a captured 32-bit IDCODE into its IEEE 1149.1
// fields: version (bits 31:28), part number (bits 27:12), manufacturer
// bank/id (bits 11:1). Bit 0 (always 1 for a valid IDCODE) is not
// returned.
func DecodeIDCode(idcode uint32) IDCodeFields {
	bank := uint8((idcode & 0xf00) >> 8)
	id := uint8((idcode & 0xfe) >> 1)
	return IDCodeFields{
		Version:          uint8((idcode & 0xf0000000) >> 28),
		PartNumber:       uint16((idcode & 0x0ffff000) >> 12),
		MfgBank:          bank,
		MfgID:            id,
		ManufacturerName: jep106Manufacturer(bank, id),
	}
}

// jep106Table is a small excerpt of the JEP106 manufacturer ID table,
// enough to identify common silicon vendors seen on JTAG chains.
var jep106Table = map[[2]uint8]string{
	{0x04, 0x3b}: "ARM",
	{0x00, 0x0e}: "ST Microelectronics",
	{0x00, 0x1f}: "Atmel",
	{0x00, 0x49}: "Xilinx",
	{0x00, 0x15}: "Intel",
	{0x00, 0x1c}: "Altera",
}

func jep106Manufacturer(bank, id uint8) string {
	if name, ok := jep106Table[[2]uint8{bank, id}]; ok {
		return name
	}
	return "unknown"
}
