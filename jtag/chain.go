package jtag

import (
	"fmt"
	"strings"
)

// TAPDescriptor is one entry of the chain manager's fixed-capacity table.
// IRInIdx/IROutIdx are only meaningful while Active is true.
type TAPDescriptor struct {
	Name     string
	IDCode   uint32
	IRLen    int
	IRInIdx  int
	IROutIdx int
	Active   bool
}

// Chain is the ordered, fixed-capacity table of TAP descriptors plus its
// derived counters. The active descriptors always form a contiguous
// prefix of the table: index i is active iff i < ActiveDevices(). Slots
// are append-only and contiguous by construction, since BYPASS slot
// arithmetic (IRInIdx/IROutIdx) depends on physical chain order from TDI
// to TDO.
type Chain struct {
	taps          [MaxAllowedTaps]TAPDescriptor
	activeDevices int
	totalIRLen    int
}

// init zeroes every descriptor and resets the derived counters
// (chain manager's "init(taps)" operation).
func (ch *Chain) init() {
	for i := range ch.taps {
		ch.taps[i] = TAPDescriptor{}
	}
	ch.activeDevices = 0
	ch.totalIRLen = 0
}

// ActiveDevices returns the number of active descriptors.
func (ch *Chain) ActiveDevices() int { return ch.activeDevices }

// TotalIRLen returns the combined IR length of all active descriptors.
func (ch *Chain) TotalIRLen() int { return ch.totalIRLen }

// Descriptor returns a copy of the descriptor at index.
func (ch *Chain) Descriptor(index int) (TAPDescriptor, error) {
	if index < 0 || index >= MaxAllowedTaps {
		return TAPDescriptor{}, fmt.Errorf("%w: chain index %d", ErrOutOfBounds, index)
	}
	return ch.taps[index], nil
}

// Add populates descriptor index with name/idcode/irLen and leaves it
// inactive. Per the append-only model, a non-zero index may only be used
// once every lower index is active: activation order equals physical
// chain order from TDI to TDO.
func (ch *Chain) Add(index int, name string, idcode uint32, irLen int) error {
	if index < 0 || index >= MaxAllowedTaps {
		return fmt.Errorf("%w: chain index %d", ErrOutOfBounds, index)
	}
	if ch.taps[index].Active {
		return fmt.Errorf("%w: slot %d", ErrTapDeviceAlreadyActive, index)
	}
	if irLen < 1 || irLen > MaxIRLen {
		return fmt.Errorf("%w: ir_len %d", ErrInvalidIRorDRLen, irLen)
	}
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrBadParameter)
	}
	if index > 0 {
		if index != ch.activeDevices {
			return fmt.Errorf("%w: append-only, expected index %d", ErrBadParameter, ch.activeDevices)
		}
		if !ch.taps[index-1].Active {
			return fmt.Errorf("%w: slot %d has no active predecessor", ErrTapDeviceUnavailable, index)
		}
	}

	ch.taps[index] = TAPDescriptor{
		Name:   name,
		IDCode: idcode,
		IRLen:  irLen,
	}
	return nil
}

// Remove zeroes descriptor index. index must already be inactive.
func (ch *Chain) Remove(index int) error {
	if index < 0 || index >= MaxAllowedTaps {
		return fmt.Errorf("%w: chain index %d", ErrOutOfBounds, index)
	}
	if ch.taps[index].Active {
		return fmt.Errorf("%w: slot %d", ErrTapDeviceAlreadyActive, index)
	}
	ch.taps[index] = TAPDescriptor{}
	return nil
}

// Activate marks descriptor index active, assigning its IRInIdx/IROutIdx
// from the previous active descriptor's tail (or 0 for index 0), and bumps
// ActiveDevices/TotalIRLen.
func (ch *Chain) Activate(index int) error {
	if index < 0 || index >= MaxAllowedTaps {
		return fmt.Errorf("%w: chain index %d", ErrOutOfBounds, index)
	}
	d := ch.taps[index]
	if d.Active {
		return fmt.Errorf("%w: slot %d", ErrTapDeviceAlreadyActive, index)
	}
	if d.IRLen == 0 {
		return fmt.Errorf("%w: slot %d has no descriptor", ErrTapDeviceUnavailable, index)
	}
	if d.IRLen > MaxIRLen-ch.totalIRLen {
		return fmt.Errorf("%w: activating slot %d would exceed MAX_IR_LEN", ErrResourceExhausted, index)
	}
	if index > 0 && !ch.taps[index-1].Active {
		return fmt.Errorf("%w: slot %d has no active predecessor", ErrTapDeviceUnavailable, index)
	}

	inIdx := 0
	if index > 0 {
		inIdx = ch.taps[index-1].IROutIdx + 1
	}

	ch.taps[index].IRInIdx = inIdx
	ch.taps[index].IROutIdx = inIdx + d.IRLen - 1
	ch.taps[index].Active = true
	ch.totalIRLen += d.IRLen
	ch.activeDevices++
	return nil
}

// Deactivate clears descriptor index's Active flag and decrements the
// derived counters by its IR length. Only the last active descriptor can
// be deactivated: a slot whose successor is still active is rejected with
// ErrBadParameter, keeping the active descriptors a contiguous prefix.
// Deactivating an inactive slot is a no-op.
func (ch *Chain) Deactivate(index int) error {
	if index < 0 || index >= MaxAllowedTaps {
		return fmt.Errorf("%w: chain index %d", ErrOutOfBounds, index)
	}
	if !ch.taps[index].Active {
		return nil
	}
	if index+1 < MaxAllowedTaps && ch.taps[index+1].Active {
		return fmt.Errorf("%w: slot %d is followed by active slot %d", ErrBadParameter, index, index+1)
	}
	ch.totalIRLen -= ch.taps[index].IRLen
	ch.activeDevices--
	ch.taps[index].Active = false
	return nil
}

// Describe renders the active descriptors, one line each.
func (ch *Chain) Describe() string {
	var b strings.Builder
	for i := range ch.taps {
		d := ch.taps[i]
		if !d.Active {
			continue
		}
		fmt.Fprintf(&b, "tap %d: name=%s idcode=0x%08x ir_len=%d ir=[%d,%d]\n",
			i, d.Name, d.IDCode, d.IRLen, d.IRInIdx, d.IROutIdx)
	}
	return b.String()
}

// --- Controller pass-throughs -------------------------------------------

// InitChain resets the chain descriptor table.
func (c *Controller) InitChain() { c.chain.init() }

// AddTAP populates chain slot index (see Chain.Add).
func (c *Controller) AddTAP(index int, name string, idcode uint32, irLen int) error {
	return c.chain.Add(index, name, idcode, irLen)
}

// RemoveTAP zeroes chain slot index (see Chain.Remove).
func (c *Controller) RemoveTAP(index int) error { return c.chain.Remove(index) }

// ActivateTAP activates chain slot index (see Chain.Activate).
func (c *Controller) ActivateTAP(index int) error { return c.chain.Activate(index) }

// DeactivateTAP deactivates chain slot index (see Chain.Deactivate).
func (c *Controller) DeactivateTAP(index int) error { return c.chain.Deactivate(index) }

// ActiveDevices returns the number of active chain descriptors.
func (c *Controller) ActiveDevices() int { return c.chain.ActiveDevices() }

// TotalIRLen returns the combined IR length of the active chain.
func (c *Controller) TotalIRLen() int { return c.chain.TotalIRLen() }

// Descriptor returns a copy of chain slot index.
func (c *Controller) Descriptor(index int) (TAPDescriptor, error) {
	return c.chain.Descriptor(index)
}

// DescribeChain renders the active chain descriptors (see Chain.Describe).
func (c *Controller) DescribeChain() string { return c.chain.Describe() }

// Selector fills the whole concatenated chain IR with ones (the universal
// BYPASS instruction, for every device including index), shifts it in,
// lands the TAP in RUN_TEST_IDLE, and returns the selected descriptor
// together with the payload that was shifted in and what was read back.
// For a 2-device, 9-bit chain this yields ir_in = [1,1,1,1,1,1,1,1,1].
//
// The selected descriptor is returned by value rather than written
// through an output parameter, so there's no way for a caller's copy of
// the result to silently diverge from what was actually selected.
func (c *Controller) Selector(index int) (selected TAPDescriptor, irIn []byte, irOut []byte, err error) {
	d, err := c.chain.Descriptor(index)
	if err != nil {
		return TAPDescriptor{}, nil, nil, err
	}
	if !d.Active {
		return TAPDescriptor{}, nil, nil, fmt.Errorf("%w: slot %d", ErrTapDeviceUnavailable, index)
	}

	n := c.chain.TotalIRLen()
	payload := make([]byte, n)
	Ones(payload)

	out, err := c.InsertIR(payload, n, RunTestIdle)
	if err != nil {
		return TAPDescriptor{}, nil, nil, err
	}
	return d, payload, out, nil
}
