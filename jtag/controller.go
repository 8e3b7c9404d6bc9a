package jtag

import "fmt"

// Configuration surface: capacity limits shared by the shift engine,
// chain manager and discovery algorithms.
const (
	MaxIRLen        = 128
	MaxDRLen        = 1024
	MaxAllowedTaps  = 16
	ManyOnes        = 100
	DefaultProcTick = 1
)

// Controller bundles the pin driver, the live TAP state and the chain
// descriptor table into a single value instead of process-wide globals.
// Every public operation is a method on *Controller so that multiple
// controllers, each owning its own pin set, can coexist.
type Controller struct {
	drv   PinDriver
	roles Roles

	currentState TAPState

	chain Chain

	delayUS uint
}

// NewController constructs a Controller bound to drv/roles. The TAP state
// is left at TestLogicReset until ResetTAP is called (callers should call
// ResetTAP once after construction to guarantee the physical TAP matches).
func NewController(drv PinDriver, roles Roles) *Controller {
	c := &Controller{drv: drv, roles: roles, currentState: TestLogicReset}
	c.chain.init()
	return c
}

// State returns the controller's believed current TAP state. This always
// names the real physical state: every transition goes through Advance or
// ResetTAP, which only update currentState after the pin driver has
// accepted every pulse.
func (c *Controller) State() TAPState { return c.currentState }

// selfLoopStates are the only states for which Advance(same) is legal.
var selfLoopStates = map[TAPState]bool{
	TestLogicReset: true,
	RunTestIdle:    true,
	ShiftDR:        true,
	ShiftIR:        true,
	PauseDR:        true,
	PauseIR:        true,
}

// Advance drives TMS to the level mandated by the IEEE 1149.1 state
// diagram to move from the current state to next, then pulses TCK once
// (low -> HalfClock -> high -> HalfClock). next must be the current state
// itself (only legal for the six self-loop states) or one of the two
// TMS-selectable successors; any other target returns ErrBadTapState and
// leaves the pins untouched.
func (c *Controller) Advance(next TAPState) error {
	if next == c.currentState && !selfLoopStates[next] {
		return fmt.Errorf("%w: %s has no self-loop", ErrBadTapState, c.currentState)
	}

	level, ok := tmsFor(c.currentState, next)
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrBadTapState, c.currentState, next)
	}

	if err := c.pulseTCK(level); err != nil {
		return err
	}

	if next != c.currentState {
		c.currentState = next
	}
	return nil
}

// pulseTCK drives TMS to level then issues one TCK edge:
// low -> HalfClock -> high -> HalfClock.
func (c *Controller) pulseTCK(tms PinLevel) error {
	if err := c.drv.Set(c.roles.TMS, tms); err != nil {
		return err
	}
	if err := c.drv.Set(c.roles.TCK, Low); err != nil {
		return err
	}
	c.drv.HalfClock()
	if err := c.drv.Set(c.roles.TCK, High); err != nil {
		return err
	}
	c.drv.HalfClock()
	return nil
}

// ResetTAP unconditionally forces the TAP back to TestLogicReset: drive
// TMS=1 for 5 TCK cycles, then record TestLogicReset. Safe to call from
// any prior state, including an unknown/drifted one. A wired TRST line is
// pulsed low across the sequence too.
func (c *Controller) ResetTAP() error {
	hasTRST := c.drv.HasTRST()
	if hasTRST {
		if err := c.drv.Set(c.roles.TRST, Low); err != nil {
			return err
		}
	}

	if err := c.drv.Set(c.roles.TMS, High); err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		if err := c.drv.Set(c.roles.TCK, Low); err != nil {
			return err
		}
		c.drv.HalfClock()
		if err := c.drv.Set(c.roles.TCK, High); err != nil {
			return err
		}
		c.drv.HalfClock()
	}

	if hasTRST {
		if err := c.drv.Set(c.roles.TRST, High); err != nil {
			return err
		}
	}

	c.currentState = TestLogicReset
	return nil
}

// Close releases the underlying pin driver's resources.
func (c *Controller) Close() error { return c.drv.Close() }
