package drivers

import (
	"fmt"
	"time"

	"github.com/gremwell/jtagctl/jtag"
	"github.com/tarm/serial"
)

// SerialBridge drives JTAG pins through a microcontroller relay attached
// over a serial port: a small fixed-size command protocol asks the relay
// to set or read a pin, instead of the host owning GPIO registers
// directly. This is the classic way to bit-bang JTAG from a machine with
// no GPIO header.
//
// Wire protocol (one byte command, one byte pin id, and for 'S' one byte
// level; every command gets a one byte reply):
//
//	'S' pin level -> 'k'            set pin to level (0/1)
//	'R' pin       -> level (0/1)    read pin
type SerialBridge struct {
	port  *serial.Port
	delay time.Duration
	trst  jtag.Pin
	has   bool
}

// NewSerialBridge opens devPath at baud and configures it for the relay
// protocol. trstPin may be -1 if no TRST line is wired.
func NewSerialBridge(devPath string, baud int, trstPin int, delayUS uint) (*SerialBridge, error) {
	cfg := &serial.Config{Name: devPath, Baud: baud, ReadTimeout: time.Second}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("serialbridge: open %s: %w", devPath, err)
	}

	d := &SerialBridge{
		port:  port,
		delay: time.Duration(delayUS) * time.Microsecond,
	}
	if trstPin >= 0 {
		d.has = true
		d.trst = jtag.Pin(trstPin)
	}
	return d, nil
}

func (d *SerialBridge) Set(p jtag.Pin, level jtag.PinLevel) error {
	cmd := []byte{'S', byte(p), byte(level)}
	if _, err := d.port.Write(cmd); err != nil {
		return fmt.Errorf("serialbridge: write set: %w", err)
	}
	reply := make([]byte, 1)
	if _, err := d.port.Read(reply); err != nil {
		return fmt.Errorf("serialbridge: read set ack: %w", err)
	}
	if reply[0] != 'k' {
		return fmt.Errorf("serialbridge: relay rejected set (pin %d)", int(p))
	}
	return nil
}

func (d *SerialBridge) Read(p jtag.Pin) (jtag.PinLevel, error) {
	cmd := []byte{'R', byte(p)}
	if _, err := d.port.Write(cmd); err != nil {
		return 0, fmt.Errorf("serialbridge: write read: %w", err)
	}
	reply := make([]byte, 1)
	if _, err := d.port.Read(reply); err != nil {
		return 0, fmt.Errorf("serialbridge: read reply: %w", err)
	}
	if reply[0] == 0 {
		return jtag.Low, nil
	}
	return jtag.High, nil
}

func (d *SerialBridge) HalfClock() {
	time.Sleep(d.delay)
}

func (d *SerialBridge) HasTRST() bool { return d.has }

func (d *SerialBridge) Close() error { return d.port.Close() }
