//go:build linux

// Package drivers holds the PinDriver backends: direct Raspberry Pi GPIO
// (this file), cgo libgpiod, periph.io, a serial bit-bang bridge and a USB
// bit-bang probe.
package drivers

import (
	"fmt"
	"time"

	"github.com/gremwell/jtagctl/jtag"
	"github.com/stianeikeland/go-rpio/v4"
)

// RPIO drives JTAG pins directly via /dev/gpiomem on a Raspberry Pi,
// ported from drv_rpio.go.
type RPIO struct {
	delay   time.Duration
	hasTRST bool
	trst    rpio.Pin
	opened  bool
}

// NewRPIO opens /dev/gpiomem and configures tck/tms/tdi as outputs and tdo
// as an input. trstPin may be -1 if no TRST line is wired.
func NewRPIO(tck, tms, tdi, tdo, trstPin int, delayUS uint) (*RPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio: open: %w", err)
	}

	d := &RPIO{delay: time.Duration(delayUS) * time.Microsecond, opened: true}

	rpio.Pin(tck).Output()
	rpio.Pin(tms).Output()
	rpio.Pin(tdi).Output()
	rpio.Pin(tdo).Input()

	if trstPin >= 0 {
		d.hasTRST = true
		d.trst = rpio.Pin(trstPin)
		d.trst.Output()
		d.trst.High()
	}

	return d, nil
}

// pin maps a jtag.Pin (which callers set to the BCM GPIO number) to an
// rpio.Pin.
func pin(p jtag.Pin) rpio.Pin { return rpio.Pin(int(p)) }

func (d *RPIO) Set(p jtag.Pin, level jtag.PinLevel) error {
	if level == jtag.High {
		pin(p).High()
	} else {
		pin(p).Low()
	}
	return nil
}

func (d *RPIO) Read(p jtag.Pin) (jtag.PinLevel, error) {
	if pin(p).Read() == rpio.High {
		return jtag.High, nil
	}
	return jtag.Low, nil
}

func (d *RPIO) HalfClock() {
	time.Sleep(d.delay)
}

func (d *RPIO) HasTRST() bool { return d.hasTRST }

func (d *RPIO) Close() error {
	if !d.opened {
		return nil
	}
	d.opened = false
	return rpio.Close()
}
