// Package persist saves and restores a jtag chain descriptor table to
// disk, so separate CLI invocations (each a fresh process) can share one
// chain table built up with the chain subcommands.
package persist

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/gremwell/jtagctl/jtag"
)

// Descriptor is the on-disk shape of a jtag.TAPDescriptor. It mirrors the
// core type field-for-field rather than importing it directly into the
// wire format, so changes to jtag.TAPDescriptor's internal layout don't
// silently change the file format.
type Descriptor struct {
	Name     string
	IDCode   uint32
	IRLen    int
	IRInIdx  int
	IROutIdx int
	Active   bool
}

// Snapshot is the full persisted chain state: one Descriptor per slot plus
// the derived counters, matching jtag.Chain's bookkeeping.
type Snapshot struct {
	Descriptors   []Descriptor
	ActiveDevices int
	TotalIRLen    int
}

// FromController captures a Snapshot of c's current chain table.
func FromController(c *jtag.Controller) Snapshot {
	snap := Snapshot{
		ActiveDevices: c.ActiveDevices(),
		TotalIRLen:    c.TotalIRLen(),
	}
	for i := 0; i < jtag.MaxAllowedTaps; i++ {
		d, err := c.Descriptor(i)
		if err != nil {
			break
		}
		snap.Descriptors = append(snap.Descriptors, Descriptor{
			Name:     d.Name,
			IDCode:   d.IDCode,
			IRLen:    d.IRLen,
			IRInIdx:  d.IRInIdx,
			IROutIdx: d.IROutIdx,
			Active:   d.Active,
		})
	}
	return snap
}

// Save CBOR-encodes snap to path.
func Save(path string, snap Snapshot) error {
	data, err := cbor.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	return nil
}

// Load reads and CBOR-decodes a Snapshot from path.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("persist: read %s: %w", path, err)
	}
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("persist: unmarshal: %w", err)
	}
	return snap, nil
}

// Restore replays snap into a fresh Controller's chain table via its
// public Add/Activate operations, preserving the contiguous-append
// invariant. Active descriptors are added and activated; a populated but
// inactive descriptor is added back without being activated. An inactive
// descriptor that Add rejects at its slot (one that does not directly
// follow the active prefix) is not restored.
func Restore(c *jtag.Controller, snap Snapshot) error {
	c.InitChain()
	for i, d := range snap.Descriptors {
		if !d.Active {
			if d.IRLen > 0 {
				_ = c.AddTAP(i, d.Name, d.IDCode, d.IRLen)
			}
			continue
		}
		if err := c.AddTAP(i, d.Name, d.IDCode, d.IRLen); err != nil {
			return fmt.Errorf("persist: restore slot %d: %w", i, err)
		}
		if err := c.ActivateTAP(i); err != nil {
			return fmt.Errorf("persist: activate slot %d: %w", i, err)
		}
	}
	return nil
}
