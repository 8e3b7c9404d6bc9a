//go:build linux && cgo

package drivers

// #cgo pkg-config: libgpiod
// #include <gpiod.h>
// #include <stdlib.h>
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gremwell/jtagctl/jtag"
)

// Gpiod drives JTAG pins through the Linux GPIO character device via
// libgpiod, ported from drv_gpiod.go.
type Gpiod struct {
	ctx     *C.struct_gpiod_chip
	lines   map[jtag.Pin]*C.struct_gpiod_line
	delay   time.Duration
	hasTRST bool
	trst    jtag.Pin
}

// NewGpiod opens /dev/gpiochipN and requests tck/tms/tdi as outputs and
// tdo as an input. trstPin may be -1 if no TRST line is wired.
func NewGpiod(chipNum uint, tck, tms, tdi, tdo, trstPin int, delayUS uint) (*Gpiod, error) {
	ctx := C.gpiod_chip_open_by_number(C.uint(chipNum))
	if ctx == nil {
		return nil, fmt.Errorf("gpiod: can't open gpio chip #%d", chipNum)
	}

	d := &Gpiod{
		ctx:   ctx,
		lines: make(map[jtag.Pin]*C.struct_gpiod_line),
		delay: time.Duration(delayUS) * time.Microsecond,
	}

	if err := d.requestOutput(jtag.Pin(tck)); err != nil {
		return nil, err
	}
	if err := d.requestOutput(jtag.Pin(tms)); err != nil {
		return nil, err
	}
	if err := d.requestOutput(jtag.Pin(tdi)); err != nil {
		return nil, err
	}
	if err := d.requestInput(jtag.Pin(tdo)); err != nil {
		return nil, err
	}
	if trstPin >= 0 {
		d.hasTRST = true
		d.trst = jtag.Pin(trstPin)
		if err := d.requestOutput(d.trst); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *Gpiod) getAllocLine(p jtag.Pin) (*C.struct_gpiod_line, error) {
	if l, ok := d.lines[p]; ok {
		return l, nil
	}
	l := C.gpiod_chip_get_line(d.ctx, C.uint(p))
	if l == nil {
		return nil, fmt.Errorf("gpiod: can't reserve pin #%d", int(p))
	}
	d.lines[p] = l
	return l, nil
}

func (d *Gpiod) requestOutput(p jtag.Pin) error {
	l, err := d.getAllocLine(p)
	if err != nil {
		return err
	}
	consumer := C.CString("jtagctl")
	defer C.free(unsafe.Pointer(consumer))
	if C.gpiod_line_request_output(l, consumer, 1) != 0 {
		return fmt.Errorf("gpiod: can't request pin #%d as output", int(p))
	}
	return nil
}

func (d *Gpiod) requestInput(p jtag.Pin) error {
	l, err := d.getAllocLine(p)
	if err != nil {
		return err
	}
	consumer := C.CString("jtagctl")
	defer C.free(unsafe.Pointer(consumer))
	if C.gpiod_line_request_input(l, consumer) != 0 {
		return fmt.Errorf("gpiod: can't request pin #%d as input", int(p))
	}
	return nil
}

func (d *Gpiod) Set(p jtag.Pin, level jtag.PinLevel) error {
	l, err := d.getAllocLine(p)
	if err != nil {
		return err
	}
	if C.gpiod_line_set_value(l, C.int(level)) != 0 {
		return fmt.Errorf("gpiod: can't set pin #%d", int(p))
	}
	return nil
}

func (d *Gpiod) Read(p jtag.Pin) (jtag.PinLevel, error) {
	l, err := d.getAllocLine(p)
	if err != nil {
		return 0, err
	}
	v := C.gpiod_line_get_value(l)
	if v == -1 {
		return 0, fmt.Errorf("gpiod: can't read pin #%d", int(p))
	}
	return jtag.PinLevel(v), nil
}

func (d *Gpiod) HalfClock() {
	time.Sleep(d.delay)
}

func (d *Gpiod) HasTRST() bool { return d.hasTRST }

func (d *Gpiod) Close() error {
	for _, l := range d.lines {
		C.gpiod_line_release(l)
	}
	C.gpiod_chip_close(d.ctx)
	return nil
}
