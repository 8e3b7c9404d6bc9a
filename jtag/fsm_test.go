package jtag

import (
	"errors"
	"testing"
)

func newTestController(drv PinDriver) *Controller {
	return NewController(drv, testRoles)
}

func TestAdvanceSelfLoopEmitsOneCycle(t *testing.T) {
	for state := range selfLoopStates {
		drv := newRecordingDriver()
		c := newTestController(drv)
		c.currentState = state

		if err := c.Advance(state); err != nil {
			t.Fatalf("Advance(%s) from %s: %v", state, state, err)
		}
		if drv.rises != 1 {
			t.Fatalf("%s self-loop: got %d TCK rises, want 1", state, drv.rises)
		}
		wantTMS, ok := tmsFor(state, state)
		if !ok {
			t.Fatalf("%s has no self-loop edge in tmsFor", state)
		}
		if drv.tmsOnRise[0] != wantTMS {
			t.Errorf("%s self-loop: TMS on rise = %v, want %v", state, drv.tmsOnRise[0], wantTMS)
		}
		if c.State() != state {
			t.Errorf("%s self-loop: ended in %s", state, c.State())
		}
	}
}

func TestAdvanceLegalNeighbour(t *testing.T) {
	drv := newRecordingDriver()
	c := newTestController(drv)
	c.currentState = TestLogicReset

	if err := c.Advance(RunTestIdle); err != nil {
		t.Fatalf("Advance(RunTestIdle): %v", err)
	}
	if drv.rises != 1 {
		t.Fatalf("got %d rises, want 1", drv.rises)
	}
	if drv.tmsOnRise[0] != Low {
		t.Errorf("TMS on rise = %v, want Low", drv.tmsOnRise[0])
	}
	if c.State() != RunTestIdle {
		t.Errorf("state = %s, want RUN_TEST_IDLE", c.State())
	}
}

func TestAdvanceIllegalEdgeRejected(t *testing.T) {
	drv := newRecordingDriver()
	c := newTestController(drv)
	c.currentState = ShiftDR

	err := c.Advance(ShiftIR)
	if !errors.Is(err, ErrBadTapState) {
		t.Fatalf("Advance(SHIFT_DR -> SHIFT_IR): got %v, want ErrBadTapState", err)
	}
	if drv.rises != 0 {
		t.Errorf("illegal edge emitted %d TCK rises, want 0", drv.rises)
	}
	if c.State() != ShiftDR {
		t.Errorf("state changed on rejected edge: now %s", c.State())
	}
}

func TestAdvanceNonSelfLoopSameStateRejected(t *testing.T) {
	drv := newRecordingDriver()
	c := newTestController(drv)
	c.currentState = CaptureDR

	err := c.Advance(CaptureDR)
	if !errors.Is(err, ErrBadTapState) {
		t.Fatalf("Advance(CAPTURE_DR -> CAPTURE_DR): got %v, want ErrBadTapState", err)
	}
	if drv.rises != 0 {
		t.Errorf("rejected self-advance emitted %d TCK rises, want 0", drv.rises)
	}
}

func TestResetTAPConvergesFromEveryState(t *testing.T) {
	allStates := []TAPState{
		TestLogicReset, RunTestIdle, SelectDR, CaptureDR, ShiftDR, Exit1DR,
		PauseDR, Exit2DR, UpdateDR, SelectIR, CaptureIR, ShiftIR, Exit1IR,
		PauseIR, Exit2IR, UpdateIR,
	}
	for _, state := range allStates {
		drv := newRecordingDriver()
		c := newTestController(drv)
		c.currentState = state

		if err := c.ResetTAP(); err != nil {
			t.Fatalf("ResetTAP from %s: %v", state, err)
		}
		if c.State() != TestLogicReset {
			t.Fatalf("ResetTAP from %s ended in %s", state, c.State())
		}
		if drv.rises != 5 {
			t.Fatalf("ResetTAP from %s: got %d TCK rises, want 5", state, drv.rises)
		}
		for i, tms := range drv.tmsOnRise {
			if tms != High {
				t.Errorf("ResetTAP from %s: rise %d had TMS=%v, want High", state, i, tms)
			}
		}
	}
}

func TestStateString(t *testing.T) {
	if got := ShiftDR.String(); got != "SHIFT_DR" {
		t.Errorf("ShiftDR.String() = %q, want SHIFT_DR", got)
	}
	if got := TAPState(999).String(); got == "" {
		t.Error("unknown state should still stringify to something non-empty")
	}
}
