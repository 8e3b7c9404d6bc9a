package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/gremwell/jtagctl/jtag"
	"github.com/gremwell/jtagctl/jtag/drivers"
)

// pinMap is the JSON shape accepted by --pins. Numeric fields (GPIO
// offsets / serial-bridge / USB pin ids) decode as float64; string fields
// (periph.io pin names) decode as string. Which is expected depends on
// --driver.
type pinMap map[string]interface{}

func (m pinMap) int(key string, required bool) (int, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return 0, fmt.Errorf("--pins missing required key %q", key)
		}
		return -1, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("--pins key %q must be a number", key)
	}
	return int(f), nil
}

func (m pinMap) str(key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("--pins missing required key %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("--pins key %q must be a string", key)
	}
	return s, nil
}

// buildController constructs a jtag.Controller wired to the driver named
// by --driver, using --pins to address it.
func buildController() (*jtag.Controller, error) {
	var pins pinMap
	if pinsJSON != "" {
		if err := json.Unmarshal([]byte(pinsJSON), &pins); err != nil {
			return nil, fmt.Errorf("--pins: %w", err)
		}
	}

	switch driverName {
	case "loopback":
		drv := jtag.NewLoopback(jtag.Pin(2), jtag.Pin(3), 0)
		return jtag.NewController(drv, jtag.Roles{TCK: 0, TMS: 1, TDI: 2, TDO: 3, NoTRST: true}), nil

	case "rpio":
		tck, err := pins.int("tck", true)
		if err != nil {
			return nil, err
		}
		tms, err := pins.int("tms", true)
		if err != nil {
			return nil, err
		}
		tdi, err := pins.int("tdi", true)
		if err != nil {
			return nil, err
		}
		tdo, err := pins.int("tdo", true)
		if err != nil {
			return nil, err
		}
		trst, err := pins.int("trst", false)
		if err != nil {
			return nil, err
		}
		drv, err := drivers.NewRPIO(tck, tms, tdi, tdo, trst, delayUS)
		if err != nil {
			return nil, err
		}
		roles := jtag.Roles{TCK: jtag.Pin(tck), TMS: jtag.Pin(tms), TDI: jtag.Pin(tdi), TDO: jtag.Pin(tdo), NoTRST: trst < 0}
		if trst >= 0 {
			roles.TRST = jtag.Pin(trst)
		}
		return jtag.NewController(drv, roles), nil

	case "gpiod":
		chip, err := pins.int("gpiochip", false)
		if err != nil {
			return nil, err
		}
		if chip < 0 {
			chip = 0
		}
		tck, err := pins.int("tck", true)
		if err != nil {
			return nil, err
		}
		tms, err := pins.int("tms", true)
		if err != nil {
			return nil, err
		}
		tdi, err := pins.int("tdi", true)
		if err != nil {
			return nil, err
		}
		tdo, err := pins.int("tdo", true)
		if err != nil {
			return nil, err
		}
		trst, err := pins.int("trst", false)
		if err != nil {
			return nil, err
		}
		drv, err := drivers.NewGpiod(uint(chip), tck, tms, tdi, tdo, trst, delayUS)
		if err != nil {
			return nil, err
		}
		roles := jtag.Roles{TCK: jtag.Pin(tck), TMS: jtag.Pin(tms), TDI: jtag.Pin(tdi), TDO: jtag.Pin(tdo), NoTRST: trst < 0}
		if trst >= 0 {
			roles.TRST = jtag.Pin(trst)
		}
		return jtag.NewController(drv, roles), nil

	case "periph":
		tck, err := pins.str("tck", true)
		if err != nil {
			return nil, err
		}
		tms, err := pins.str("tms", true)
		if err != nil {
			return nil, err
		}
		tdi, err := pins.str("tdi", true)
		if err != nil {
			return nil, err
		}
		tdo, err := pins.str("tdo", true)
		if err != nil {
			return nil, err
		}
		trst, err := pins.str("trst", false)
		if err != nil {
			return nil, err
		}
		drv, err := drivers.NewPeriph(tck, tms, tdi, tdo, trst, delayUS)
		if err != nil {
			return nil, err
		}
		return jtag.NewController(drv, drivers.PeriphRoles), nil

	case "serial":
		dev, err := pins.str("device", true)
		if err != nil {
			return nil, err
		}
		baud, err := pins.int("baud", false)
		if err != nil {
			return nil, err
		}
		if baud <= 0 {
			baud = 115200
		}
		trst, err := pins.int("trst", false)
		if err != nil {
			return nil, err
		}
		drv, err := drivers.NewSerialBridge(dev, baud, trst, delayUS)
		if err != nil {
			return nil, err
		}
		roles := jtag.Roles{TCK: 0, TMS: 1, TDI: 2, TDO: 3, NoTRST: trst < 0}
		if trst >= 0 {
			roles.TRST = jtag.Pin(trst)
		}
		return jtag.NewController(drv, roles), nil

	case "usb":
		vid, err := pins.int("vid", true)
		if err != nil {
			return nil, err
		}
		pid, err := pins.int("pid", true)
		if err != nil {
			return nil, err
		}
		trst, err := pins.int("trst", false)
		if err != nil {
			return nil, err
		}
		drv, err := drivers.NewUSBProbe(uint16(vid), uint16(pid), trst >= 0, delayUS)
		if err != nil {
			return nil, err
		}
		roles := jtag.Roles{TCK: 0, TMS: 1, TDI: 2, TDO: 3, NoTRST: trst < 0}
		if trst >= 0 {
			roles.TRST = jtag.Pin(trst)
		}
		return jtag.NewController(drv, roles), nil

	default:
		return nil, fmt.Errorf("unknown --driver %q", driverName)
	}
}
