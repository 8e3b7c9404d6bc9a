package drivers

import (
	"fmt"
	"time"

	"github.com/google/gousb"
	"github.com/gremwell/jtagctl/jtag"
)

// Vendor control request codes understood by the USB bit-bang probe this
// driver targets. Request values and the pin-index encoding are the
// adapter's own convention, not a standard.
const (
	usbReqSetPin  = 0x01
	usbReqReadPin = 0x02
)

// USBProbe drives JTAG pins through a USB GPIO adapter's vendor control
// transfers.
type USBProbe struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	delay   time.Duration
	hasTRST bool
}

// NewUSBProbe opens the first USB device matching vid/pid and configures
// it as a JTAG bit-bang probe. trstWired indicates whether the adapter has
// a TRST line broken out.
func NewUSBProbe(vid, pid uint16, trstWired bool, delayUS uint) (*USBProbe, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("usbprobe: open %04x:%04x: %w", vid, pid, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usbprobe: no device matching %04x:%04x", vid, pid)
	}

	return &USBProbe{
		ctx:     ctx,
		dev:     dev,
		delay:   time.Duration(delayUS) * time.Microsecond,
		hasTRST: trstWired,
	}, nil
}

func (d *USBProbe) Set(p jtag.Pin, level jtag.PinLevel) error {
	_, err := d.dev.Control(
		gousb.ControlOut|gousb.ControlVendor|gousb.ControlDevice,
		usbReqSetPin,
		uint16(level),
		uint16(p),
		nil,
	)
	if err != nil {
		return fmt.Errorf("usbprobe: set pin %d: %w", int(p), err)
	}
	return nil
}

func (d *USBProbe) Read(p jtag.Pin) (jtag.PinLevel, error) {
	buf := make([]byte, 1)
	_, err := d.dev.Control(
		gousb.ControlIn|gousb.ControlVendor|gousb.ControlDevice,
		usbReqReadPin,
		0,
		uint16(p),
		buf,
	)
	if err != nil {
		return 0, fmt.Errorf("usbprobe: read pin %d: %w", int(p), err)
	}
	if buf[0] == 0 {
		return jtag.Low, nil
	}
	return jtag.High, nil
}

func (d *USBProbe) HalfClock() {
	time.Sleep(d.delay)
}

func (d *USBProbe) HasTRST() bool { return d.hasTRST }

func (d *USBProbe) Close() error {
	err := d.dev.Close()
	d.ctx.Close()
	return err
}
