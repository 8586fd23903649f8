// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blockdev

// RAMDevice is an in-memory BlockDevice standing in for the SD-over-SPI
// backend spec.md treats as an external collaborator out of scope for this
// repository (real SPI register plumbing is hardware-specific and not
// expressible portably, see DESIGN.md). It is used by the property tests
// and by anything that wants a disposable device without touching disk.
type RAMDevice struct {
	sectors [][SectorSize]byte
	synced  bool
}

// NewRAMDevice returns a RAMDevice with totalSectors zeroed sectors. Init
// is a no-op for this backend; it is provided to satisfy BlockDevice.
func NewRAMDevice(totalSectors uint32) *RAMDevice {
	return &RAMDevice{sectors: make([][SectorSize]byte, totalSectors)}
}

func (d *RAMDevice) Init() error { return nil }

func (d *RAMDevice) ReadBlock(lba uint32, out *[SectorSize]byte) error {
	if lba >= uint32(len(d.sectors)) {
		return ErrParam
	}
	*out = d.sectors[lba]
	return nil
}

func (d *RAMDevice) WriteBlock(lba uint32, in [SectorSize]byte) error {
	if lba >= uint32(len(d.sectors)) {
		return ErrParam
	}
	d.sectors[lba] = in
	return nil
}

func (d *RAMDevice) Sync() error {
	d.synced = true
	return nil
}

func (d *RAMDevice) Deinit() error { return nil }

func (d *RAMDevice) TotalSectors() uint32 { return uint32(len(d.sectors)) }
func (d *RAMDevice) Name() string         { return "ram" }

// Corrupt flips a byte in the sector at lba, for tests that exercise the
// CRC-voting recovery paths (spec.md P5/P6).
func (d *RAMDevice) Corrupt(lba uint32, offset int) {
	d.sectors[lba][offset] ^= 0xFF
}

var _ BlockDevice = (*RAMDevice)(nil)
