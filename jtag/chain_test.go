package jtag

import (
	"errors"
	"testing"
)

func TestChainAddActivateContiguity(t *testing.T) {
	c := newLoopbackController()
	c.InitChain()

	if err := c.AddTAP(0, "core0", 0x4BA00477, 4); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	// Out-of-order slot before its predecessor is active: rejected.
	if err := c.AddTAP(2, "core2", 0x06418427, 5); !errors.Is(err, ErrBadParameter) {
		t.Fatalf("AddTAP(2) before slot 1 exists: got %v, want ErrBadParameter", err)
	}
	if err := c.ActivateTAP(0); err != nil {
		t.Fatalf("ActivateTAP(0): %v", err)
	}
	if err := c.AddTAP(1, "core1", 0x06418427, 5); err != nil {
		t.Fatalf("AddTAP(1): %v", err)
	}
	if err := c.ActivateTAP(1); err != nil {
		t.Fatalf("ActivateTAP(1): %v", err)
	}

	if got := c.ActiveDevices(); got != 2 {
		t.Errorf("ActiveDevices() = %d, want 2", got)
	}
	if got := c.TotalIRLen(); got != 9 {
		t.Errorf("TotalIRLen() = %d, want 9", got)
	}

	d0, err := c.Descriptor(0)
	if err != nil {
		t.Fatalf("Descriptor(0): %v", err)
	}
	if d0.IRInIdx != 0 || d0.IROutIdx != 3 {
		t.Errorf("slot 0: ir=[%d,%d], want [0,3]", d0.IRInIdx, d0.IROutIdx)
	}

	d1, err := c.Descriptor(1)
	if err != nil {
		t.Fatalf("Descriptor(1): %v", err)
	}
	if d1.IRInIdx != 4 || d1.IROutIdx != 8 {
		t.Errorf("slot 1: ir=[%d,%d], want [4,8]", d1.IRInIdx, d1.IROutIdx)
	}
}

func TestChainAddRejectsDuplicateActiveSlot(t *testing.T) {
	c := newLoopbackController()
	c.InitChain()
	if err := c.AddTAP(0, "core0", 1, 4); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	if err := c.ActivateTAP(0); err != nil {
		t.Fatalf("ActivateTAP(0): %v", err)
	}
	if err := c.AddTAP(0, "core0-again", 1, 4); !errors.Is(err, ErrTapDeviceAlreadyActive) {
		t.Errorf("AddTAP over active slot: got %v, want ErrTapDeviceAlreadyActive", err)
	}
}

func TestChainActivateExceedingMaxIRLen(t *testing.T) {
	c := newLoopbackController()
	c.InitChain()
	if err := c.AddTAP(0, "huge", 1, MaxIRLen); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	if err := c.ActivateTAP(0); err != nil {
		t.Fatalf("ActivateTAP(0): %v", err)
	}
	if err := c.AddTAP(1, "overflow", 1, 1); err != nil {
		t.Fatalf("AddTAP(1): %v", err)
	}
	if err := c.ActivateTAP(1); !errors.Is(err, ErrResourceExhausted) {
		t.Errorf("ActivateTAP(1) over capacity: got %v, want ErrResourceExhausted", err)
	}
}

func TestChainOutOfBounds(t *testing.T) {
	c := newLoopbackController()
	c.InitChain()
	if err := c.AddTAP(-1, "x", 1, 4); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("AddTAP(-1): got %v, want ErrOutOfBounds", err)
	}
	if err := c.AddTAP(MaxAllowedTaps, "x", 1, 4); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("AddTAP(MaxAllowedTaps): got %v, want ErrOutOfBounds", err)
	}
}

// TestSelectorBypassesEveryone matches a 2-device, 9-bit chain: selecting
// either device should shift out an IR pattern that is all ones, since
// Selector's job is to drive BYPASS into every device on the chain while
// only the *descriptor* returned differs by index.
func TestSelectorBypassesEveryone(t *testing.T) {
	c := newLoopbackController()
	if err := c.ResetTAP(); err != nil {
		t.Fatalf("ResetTAP: %v", err)
	}
	c.InitChain()
	if err := c.AddTAP(0, "core0", 0x4BA00477, 4); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	if err := c.ActivateTAP(0); err != nil {
		t.Fatalf("ActivateTAP(0): %v", err)
	}
	if err := c.AddTAP(1, "core1", 0x06418427, 5); err != nil {
		t.Fatalf("AddTAP(1): %v", err)
	}
	if err := c.ActivateTAP(1); err != nil {
		t.Fatalf("ActivateTAP(1): %v", err)
	}

	d, irIn, _, err := c.Selector(1)
	if err != nil {
		t.Fatalf("Selector(1): %v", err)
	}
	if d.Name != "core1" {
		t.Errorf("Selector(1) descriptor name = %q, want core1", d.Name)
	}
	if len(irIn) != 9 {
		t.Fatalf("Selector(1) ir_in length = %d, want 9", len(irIn))
	}
	for i, b := range irIn {
		if b != 1 {
			t.Errorf("Selector(1) ir_in[%d] = %d, want 1 (all-ones BYPASS)", i, b)
		}
	}
	if c.State() != RunTestIdle {
		t.Errorf("Selector: final state = %s, want RUN_TEST_IDLE", c.State())
	}
}

func TestSelectorRejectsInactiveSlot(t *testing.T) {
	c := newLoopbackController()
	c.InitChain()
	if err := c.AddTAP(0, "core0", 1, 4); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	if _, _, _, err := c.Selector(0); !errors.Is(err, ErrTapDeviceUnavailable) {
		t.Errorf("Selector(0) on inactive slot: got %v, want ErrTapDeviceUnavailable", err)
	}
}

// TestChainActivateRejectsInactivePredecessor exercises the sequence
// Add(0)->Activate(0)->Add(1)->Deactivate(0)->Activate(1): deactivating a
// device does not forbid a later slot from still being added while it was
// active, but re-activating slot 1 once slot 0 is inactive must fail —
// otherwise activeDevices would end up 1 while taps[0] is inactive and
// taps[1] is active, breaking the contiguous-prefix invariant.
func TestChainActivateRejectsInactivePredecessor(t *testing.T) {
	c := newLoopbackController()
	c.InitChain()
	if err := c.AddTAP(0, "core0", 1, 4); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	if err := c.ActivateTAP(0); err != nil {
		t.Fatalf("ActivateTAP(0): %v", err)
	}
	if err := c.AddTAP(1, "core1", 2, 5); err != nil {
		t.Fatalf("AddTAP(1): %v", err)
	}
	if err := c.DeactivateTAP(0); err != nil {
		t.Fatalf("DeactivateTAP(0): %v", err)
	}
	if err := c.ActivateTAP(1); !errors.Is(err, ErrTapDeviceUnavailable) {
		t.Fatalf("ActivateTAP(1) with inactive predecessor: got %v, want ErrTapDeviceUnavailable", err)
	}
	if got := c.ActiveDevices(); got != 0 {
		t.Errorf("ActiveDevices() after rejected activation = %d, want 0", got)
	}
	if got := c.TotalIRLen(); got != 0 {
		t.Errorf("TotalIRLen() after rejected activation = %d, want 0", got)
	}
}

func TestChainDeactivateRemove(t *testing.T) {
	c := newLoopbackController()
	c.InitChain()
	if err := c.AddTAP(0, "core0", 1, 4); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	if err := c.ActivateTAP(0); err != nil {
		t.Fatalf("ActivateTAP(0): %v", err)
	}
	if err := c.DeactivateTAP(0); err != nil {
		t.Fatalf("DeactivateTAP(0): %v", err)
	}
	if got := c.ActiveDevices(); got != 0 {
		t.Errorf("ActiveDevices() after deactivate = %d, want 0", got)
	}
	if err := c.RemoveTAP(0); err != nil {
		t.Fatalf("RemoveTAP(0): %v", err)
	}
	d, err := c.Descriptor(0)
	if err != nil {
		t.Fatalf("Descriptor(0): %v", err)
	}
	if d.Name != "" || d.IRLen != 0 {
		t.Errorf("removed descriptor not zeroed: %+v", d)
	}
}
