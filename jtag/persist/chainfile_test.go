package persist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gremwell/jtagctl/jtag"
)

func newLoopbackController() *jtag.Controller {
	drv := jtag.NewLoopback(2, 3, 0)
	roles := jtag.Roles{TCK: 0, TMS: 1, TDI: 2, TDO: 3, NoTRST: true}
	return jtag.NewController(drv, roles)
}

// TestSaveLoadRoundTrip builds a two-device chain, saves it, restores it
// into a fresh Controller and checks the slot arithmetic and derived
// counters survive the round trip.
func TestSaveLoadRoundTrip(t *testing.T) {
	c := newLoopbackController()
	if err := c.AddTAP(0, "core0", 0x4BA00477, 4); err != nil {
		t.Fatalf("AddTAP(0): %v", err)
	}
	if err := c.ActivateTAP(0); err != nil {
		t.Fatalf("ActivateTAP(0): %v", err)
	}
	if err := c.AddTAP(1, "core1", 0x06418427, 5); err != nil {
		t.Fatalf("AddTAP(1): %v", err)
	}
	if err := c.ActivateTAP(1); err != nil {
		t.Fatalf("ActivateTAP(1): %v", err)
	}

	path := filepath.Join(t.TempDir(), "chain.cbor")
	if err := Save(path, FromController(c)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	restored := newLoopbackController()
	if err := Restore(restored, snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if got, want := restored.ActiveDevices(), 2; got != want {
		t.Errorf("ActiveDevices() = %d, want %d", got, want)
	}
	if got, want := restored.TotalIRLen(), 9; got != want {
		t.Errorf("TotalIRLen() = %d, want %d", got, want)
	}

	d0, err := restored.Descriptor(0)
	if err != nil {
		t.Fatalf("Descriptor(0): %v", err)
	}
	if d0.Name != "core0" || d0.IDCode != 0x4BA00477 || d0.IRInIdx != 0 || d0.IROutIdx != 3 {
		t.Errorf("slot 0 = %+v, want name=core0 idcode=0x4BA00477 ir=[0,3]", d0)
	}

	d1, err := restored.Descriptor(1)
	if err != nil {
		t.Fatalf("Descriptor(1): %v", err)
	}
	if d1.Name != "core1" || d1.IDCode != 0x06418427 || d1.IRInIdx != 4 || d1.IROutIdx != 8 {
		t.Errorf("slot 1 = %+v, want name=core1 idcode=0x06418427 ir=[4,8]", d1)
	}
}

// TestLoadMissingFile confirms a missing chain file surfaces the
// underlying os.ErrNotExist through Load's wrapped error, the condition
// buildChainController's caller in cmd/jtagctl relies on to treat a
// first-ever invocation as an empty chain rather than a hard failure.
func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.cbor")
	if _, err := Load(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load(missing file): got %v, want an error wrapping os.ErrNotExist", err)
	}
}
