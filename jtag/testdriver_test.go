package jtag

// Fake PinDrivers used only by this package's tests. Fixed pin
// convention: TCK=0, TMS=1, TDI=2, TDO=3, TRST=4 (matches cmd/jtagctl's
// loopback wiring).

const (
	tckPin  Pin = 0
	tmsPin  Pin = 1
	tdiPin  Pin = 2
	tdoPin  Pin = 3
	trstPin Pin = 4
)

var testRoles = Roles{TCK: tckPin, TMS: tmsPin, TDI: tdiPin, TDO: tdoPin, TRST: trstPin, NoTRST: true}

// recordingDriver counts TCK rising edges and records the TMS level seen
// on each one, for asserting FSM properties like "advance emits exactly
// one TCK cycle" and "reset_tap emits exactly 5 TMS=1 cycles".
type recordingDriver struct {
	levels    map[Pin]PinLevel
	rises     int
	tmsOnRise []PinLevel
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{levels: make(map[Pin]PinLevel)}
}

func (d *recordingDriver) Set(p Pin, level PinLevel) error {
	if p == tckPin && level == High && d.levels[tckPin] == Low {
		d.rises++
		d.tmsOnRise = append(d.tmsOnRise, d.levels[tmsPin])
	}
	d.levels[p] = level
	return nil
}

func (d *recordingDriver) Read(p Pin) (PinLevel, error) { return d.levels[p], nil }
func (d *recordingDriver) HalfClock()                   {}
func (d *recordingDriver) HasTRST() bool                { return false }
func (d *recordingDriver) Close() error                 { return nil }

// tapSim is a minimal single-device TAP simulator: it tracks its own copy
// of the 16-state FSM (reusing the package's transitions table, so it
// stays in lockstep with whatever state a correctly-behaving Controller
// believes it is in) and shifts a preloaded IR or DR register only while
// that shared state is actually ShiftIR/ShiftDR. This lets discovery
// tests preload a register with e.g. an IDCODE pattern or an all-ones IR
// and exercise the real Controller/discovery code against it, including
// the reset and navigation cycles that precede the interesting shift.
type tapSim struct {
	state  TAPState
	ir, dr []PinLevel
	levels map[Pin]PinLevel
}

func newTapSim(ir, dr []PinLevel) *tapSim {
	return &tapSim{
		state:  TestLogicReset,
		ir:     append([]PinLevel(nil), ir...),
		dr:     append([]PinLevel(nil), dr...),
		levels: make(map[Pin]PinLevel),
	}
}

func (t *tapSim) Set(p Pin, level PinLevel) error {
	if p == tckPin && level == High && t.levels[tckPin] == Low {
		tms := t.levels[tmsPin]
		tdi := t.levels[tdiPin]

		switch t.state {
		case ShiftDR:
			out := t.dr[0]
			t.dr = append(t.dr[1:], tdi)
			t.levels[tdoPin] = out
		case ShiftIR:
			out := t.ir[0]
			t.ir = append(t.ir[1:], tdi)
			t.levels[tdoPin] = out
		}

		edge := transitions[t.state]
		if tms == High {
			t.state = edge.tms1
		} else {
			t.state = edge.tms0
		}
	}
	t.levels[p] = level
	return nil
}

func (t *tapSim) Read(p Pin) (PinLevel, error) { return t.levels[p], nil }
func (t *tapSim) HalfClock()                   {}
func (t *tapSim) HasTRST() bool                { return false }
func (t *tapSim) Close() error                 { return nil }

// bitsOf decomposes v's low n bits into a []PinLevel, LSB first.
func bitsOf(v uint32, n int) []PinLevel {
	out := make([]PinLevel, n)
	for i := 0; i < n; i++ {
		out[i] = PinLevel((v >> uint(i)) & 1)
	}
	return out
}

func onesLevels(n int) []PinLevel {
	out := make([]PinLevel, n)
	for i := range out {
		out[i] = High
	}
	return out
}
