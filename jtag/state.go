package jtag

import "fmt"

// TAPState is one of the 16 IEEE 1149.1 TAP controller states.
type TAPState int

const (
	TestLogicReset TAPState = iota
	RunTestIdle
	SelectDR
	CaptureDR
	ShiftDR
	Exit1DR
	PauseDR
	Exit2DR
	UpdateDR
	SelectIR
	CaptureIR
	ShiftIR
	Exit1IR
	PauseIR
	Exit2IR
	UpdateIR
)

func (s TAPState) String() string {
	switch s {
	case TestLogicReset:
		return "TEST_LOGIC_RESET"
	case RunTestIdle:
		return "RUN_TEST_IDLE"
	case SelectDR:
		return "SELECT_DR"
	case CaptureDR:
		return "CAPTURE_DR"
	case ShiftDR:
		return "SHIFT_DR"
	case Exit1DR:
		return "EXIT1_DR"
	case PauseDR:
		return "PAUSE_DR"
	case Exit2DR:
		return "EXIT2_DR"
	case UpdateDR:
		return "UPDATE_DR"
	case SelectIR:
		return "SELECT_IR"
	case CaptureIR:
		return "CAPTURE_IR"
	case ShiftIR:
		return "SHIFT_IR"
	case Exit1IR:
		return "EXIT1_IR"
	case PauseIR:
		return "PAUSE_IR"
	case Exit2IR:
		return "EXIT2_IR"
	case UpdateIR:
		return "UPDATE_IR"
	default:
		return fmt.Sprintf("TAPState(%d)", int(s))
	}
}

// tapEdge names the TMS=0 and TMS=1 successors of a state, per the IEEE
// 1149.1 state diagram.
type tapEdge struct {
	tms0 TAPState
	tms1 TAPState
}

var transitions = map[TAPState]tapEdge{
	TestLogicReset: {tms0: RunTestIdle, tms1: TestLogicReset},
	RunTestIdle:    {tms0: RunTestIdle, tms1: SelectDR},
	SelectDR:       {tms0: CaptureDR, tms1: SelectIR},
	CaptureDR:      {tms0: ShiftDR, tms1: Exit1DR},
	ShiftDR:        {tms0: ShiftDR, tms1: Exit1DR},
	Exit1DR:        {tms0: PauseDR, tms1: UpdateDR},
	PauseDR:        {tms0: PauseDR, tms1: Exit2DR},
	Exit2DR:        {tms0: ShiftDR, tms1: UpdateDR},
	UpdateDR:       {tms0: RunTestIdle, tms1: SelectDR},
	SelectIR:       {tms0: CaptureIR, tms1: TestLogicReset},
	CaptureIR:      {tms0: ShiftIR, tms1: Exit1IR},
	ShiftIR:        {tms0: ShiftIR, tms1: Exit1IR},
	Exit1IR:        {tms0: PauseIR, tms1: UpdateIR},
	PauseIR:        {tms0: PauseIR, tms1: Exit2IR},
	Exit2IR:        {tms0: ShiftIR, tms1: UpdateIR},
	UpdateIR:       {tms0: RunTestIdle, tms1: SelectDR},
}

// tmsFor returns the TMS level that drives from-state to to-state on the
// next TCK edge, and whether to-state is a legal neighbour of from.
func tmsFor(from, to TAPState) (level PinLevel, ok bool) {
	edge, known := transitions[from]
	if !known {
		return 0, false
	}
	switch to {
	case edge.tms0:
		return Low, true
	case edge.tms1:
		return High, true
	default:
		return 0, false
	}
}
