package jtag

import "errors"

// Error taxonomy. Core operations report their own failures with one of
// these (wrapped with fmt.Errorf("...: %w", ...) for context) instead of
// panicking; errors from the PinDriver are returned as the driver gave them.
var (
	// ErrBadTapState is returned by Advance when asked for an unreachable
	// neighbour of the current TAP state.
	ErrBadTapState = errors.New("jtag: bad tap state transition")

	// ErrBadIDCode is returned by DetectChain when the captured IDCODE's
	// LSB is 0 (IEEE 1149.1 §8 mandates LSB=1 for a valid IDCODE).
	ErrBadIDCode = errors.New("jtag: bad idcode (lsb != 1)")

	// ErrInvalidIRorDRLen is returned when DetectChain's IR length search
	// fails to locate the injected sentinel bit within ManyOnes cycles, or a
	// requested length exceeds its capacity. DetectDRLen reports a missed
	// sentinel as a length of 0 rather than with this error.
	ErrInvalidIRorDRLen = errors.New("jtag: invalid ir or dr length")

	// ErrOutOfBounds is returned for chain indices outside
	// [0, MaxAllowedTaps).
	ErrOutOfBounds = errors.New("jtag: index out of bounds")

	// ErrTapDeviceAlreadyActive is returned by Add/Activate/Remove against
	// an already-active descriptor slot.
	ErrTapDeviceAlreadyActive = errors.New("jtag: tap device already active")

	// ErrTapDeviceUnavailable is returned by Selector against an inactive
	// slot, by Activate against an empty slot or one whose predecessor is
	// inactive, or by Add when appending past a hole.
	ErrTapDeviceUnavailable = errors.New("jtag: tap device unavailable")

	// ErrResourceExhausted is returned by Activate when activation would
	// push total IR length past MaxIRLen.
	ErrResourceExhausted = errors.New("jtag: resource exhausted")

	// ErrBadParameter is returned for malformed input, a non-append
	// chain insertion attempt, or deactivation of a slot whose successor is
	// still active.
	ErrBadParameter = errors.New("jtag: bad parameter")

	// ErrTDOStuckAt1 is returned by Discovery when an instruction's
	// measured DR length equals maxDRLen. ErrTDOStuckAt0 is never returned
	// by the core; the sentinel is reserved alongside it.
	ErrTDOStuckAt0 = errors.New("jtag: tdo stuck at 0")
	ErrTDOStuckAt1 = errors.New("jtag: tdo stuck at 1")

	// ErrBadConversion is surfaced by client bit-array helpers; the core
	// never raises it itself but reserves the sentinel for collaborators.
	ErrBadConversion = errors.New("jtag: bad conversion")
)
