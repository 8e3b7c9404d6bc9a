package drivers

import (
	"fmt"
	"time"

	"github.com/gremwell/jtagctl/jtag"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Periph drives JTAG pins through periph.io's board-agnostic GPIO
// registry, so the same binary runs on any board periph.io supports
// rather than only the Raspberry Pi (see jtag/drivers's RPIO).
type Periph struct {
	tck, tms, tdi gpio.PinOut
	tdo           gpio.PinIn
	trst          gpio.PinOut
	hasTRST       bool
	delay         time.Duration

	pins map[jtag.Pin]gpio.PinIO
}

// NewPeriph resolves tckName/tmsName/tdiName/tdoName (and optionally
// trstName) through periph.io's gpioreg (e.g. "GPIO4", "P1_7") and
// configures directions. trstName may be empty if no TRST line is wired.
func NewPeriph(tckName, tmsName, tdiName, tdoName, trstName string, delayUS uint) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: host.Init: %w", err)
	}

	resolve := func(name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("periph: unknown pin %q", name)
		}
		return p, nil
	}

	tck, err := resolve(tckName)
	if err != nil {
		return nil, err
	}
	tms, err := resolve(tmsName)
	if err != nil {
		return nil, err
	}
	tdi, err := resolve(tdiName)
	if err != nil {
		return nil, err
	}
	tdo, err := resolve(tdoName)
	if err != nil {
		return nil, err
	}

	if err := tck.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := tms.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := tdi.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := tdo.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, err
	}

	d := &Periph{
		tck:   tck,
		tms:   tms,
		tdi:   tdi,
		tdo:   tdo,
		delay: time.Duration(delayUS) * time.Microsecond,
		pins:  map[jtag.Pin]gpio.PinIO{0: tck, 1: tms, 2: tdi, 3: tdo},
	}

	if trstName != "" {
		trst, err := resolve(trstName)
		if err != nil {
			return nil, err
		}
		if err := trst.Out(gpio.High); err != nil {
			return nil, err
		}
		d.trst = trst
		d.hasTRST = true
		d.pins[4] = trst
	}

	return d, nil
}

// Roles for a Periph driver: pin indices 0..4 map to TCK/TMS/TDI/TDO/TRST
// in the order assigned by NewPeriph.
var PeriphRoles = jtag.Roles{TCK: 0, TMS: 1, TDI: 2, TDO: 3, TRST: 4}

func (d *Periph) outFor(p jtag.Pin) (gpio.PinOut, error) {
	switch p {
	case 0:
		return d.tck, nil
	case 1:
		return d.tms, nil
	case 2:
		return d.tdi, nil
	case 4:
		if !d.hasTRST {
			return nil, fmt.Errorf("periph: trst not wired")
		}
		return d.trst, nil
	default:
		return nil, fmt.Errorf("periph: pin %d is not an output", int(p))
	}
}

func (d *Periph) Set(p jtag.Pin, level jtag.PinLevel) error {
	out, err := d.outFor(p)
	if err != nil {
		return err
	}
	return out.Out(gpio.Level(level == jtag.High))
}

func (d *Periph) Read(p jtag.Pin) (jtag.PinLevel, error) {
	if p != 3 {
		return 0, fmt.Errorf("periph: pin %d is not an input", int(p))
	}
	if d.tdo.Read() == gpio.High {
		return jtag.High, nil
	}
	return jtag.Low, nil
}

func (d *Periph) HalfClock() {
	time.Sleep(d.delay)
}

func (d *Periph) HasTRST() bool { return d.hasTRST }

func (d *Periph) Close() error { return nil }
