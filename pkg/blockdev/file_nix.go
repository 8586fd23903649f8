// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blockdev

import (
	"fmt"
	"os"
)

// FdIntf exposes the raw file descriptor a backend wraps, the way
// pkg/drive's FdIntf did for the SCSI/NVMe backends. *os.File satisfies
// it; capacity_linux.go calls Fd on the *os.File directly to issue its
// BLKGETSIZE64 ioctl.
type FdIntf interface {
	Fd() uintptr
}

// FileDevice is the POSIX loopback/raw-partition backend from spec.md §1:
// it wraps an *os.File opened on a loopback image or a raw partition node
// and does sector I/O with ReadAt/WriteAt at lba*SectorSize.
type FileDevice struct {
	path  string
	f     *os.File
	total uint32
}

// NewFileDevice returns an unopened FileDevice for path. Call Init before
// use.
func NewFileDevice(path string) *FileDevice {
	return &FileDevice{path: path}
}

func (d *FileDevice) Init() error {
	f, err := os.OpenFile(d.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInit, err)
	}
	d.f = f
	total, err := probeCapacity(f, d.path)
	if err != nil {
		f.Close()
		d.f = nil
		return fmt.Errorf("%w: %v", ErrInit, err)
	}
	d.total = total
	return nil
}

func (d *FileDevice) ReadBlock(lba uint32, out *[SectorSize]byte) error {
	if lba >= d.total {
		return ErrParam
	}
	n, err := d.f.ReadAt(out[:], int64(lba)*SectorSize)
	if err != nil || n != SectorSize {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (d *FileDevice) WriteBlock(lba uint32, in [SectorSize]byte) error {
	if lba >= d.total {
		return ErrParam
	}
	n, err := d.f.WriteAt(in[:], int64(lba)*SectorSize)
	if err != nil || n != SectorSize {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (d *FileDevice) Sync() error {
	if err := d.f.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (d *FileDevice) Deinit() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (d *FileDevice) TotalSectors() uint32 { return d.total }
func (d *FileDevice) Name() string         { return d.path }

var _ BlockDevice = (*FileDevice)(nil)
var _ FdIntf = (*os.File)(nil)
