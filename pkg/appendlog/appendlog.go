// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package appendlog implements the append engine: given a caller buffer
// whose length is a multiple of sector.PayloadSize, it encodes each slice
// as a data sector and writes the batch at the next free logical sector in
// every mirror, then advances the head pointer through the supersector
// manager as the commit point. The write-then-commit discipline mirrors
// the teacher's StartTransaction/EndTransaction bracketing in
// pkg/core/stream — here the supersector write is the commit token.
package appendlog

import (
	"errors"
	"fmt"

	"github.com/raidlog/raidlog/pkg/blockdev"
	"github.com/raidlog/raidlog/pkg/geometry"
	"github.com/raidlog/raidlog/pkg/sector"
	"github.com/raidlog/raidlog/pkg/supersector"
)

var (
	// ErrParam is returned when the buffer is empty or its length is not
	// a multiple of sector.PayloadSize.
	ErrParam = errors.New("appendlog: buffer length must be a multiple of PayloadSize")
	// ErrFull is returned when a batch would cross a mirror slice boundary
	// or the device's reported capacity.
	ErrFull = errors.New("appendlog: mirror slice exhausted")
	// ErrDriver wraps a backend I/O failure encountered mid-batch.
	ErrDriver = errors.New("appendlog: backend driver error")
	// ErrLogFull is reserved for the legacy byte-granular message cursor
	// path (spec.md §9); this implementation omits that path entirely, so
	// ErrLogFull is never produced here. It is exported only so callers
	// type-switching on the full error-kind set per spec.md §7 compile
	// against a complete set.
	ErrLogFull = errors.New("appendlog: byte-granular message cursor saturated")
)

// Store is a single append-only log instance bound to one block device. It
// owns no global state: geometry and the supersector manager are fields,
// per spec.md §9's requirement to avoid a module-level driver pointer.
type Store struct {
	dev blockdev.BlockDevice
	geo geometry.Geometry
	sup *supersector.Manager
}

// Open initializes dev, derives its mirror geometry, and returns a Store
// ready for InitLog or Append. It does not itself format the device.
func Open(dev blockdev.BlockDevice) (*Store, error) {
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", blockdev.ErrInit, err)
	}
	geo, err := geometry.New(dev.TotalSectors())
	if err != nil {
		return nil, err
	}
	return &Store{dev: dev, geo: geo, sup: supersector.New(dev, geo)}, nil
}

// Geometry returns the store's derived mirror geometry.
func (s *Store) Geometry() geometry.Geometry { return s.geo }

// InitLog formats a fresh device: a supersector with head=1 written to all
// mirrors. Calling it on a device that already holds data discards the
// pointer to that data (the bytes remain on disk but become unreachable).
func (s *Store) InitLog() error {
	return s.sup.InitLog()
}

// Head returns the next-free logical sector, per the head = next-free
// convention spec.md §9 fixes explicitly.
func (s *Store) Head() (uint32, error) {
	return s.sup.GetHead()
}

// Append encodes buffer (a multiple of sector.PayloadSize bytes) as a
// batch of data sectors tagged with header, writes them to the next free
// logical sector in every mirror slice in turn, and advances the head
// pointer only after every mirror write succeeds.
func (s *Store) Append(header byte, buffer []byte) error {
	if len(buffer) == 0 || len(buffer)%sector.PayloadSize != 0 {
		return ErrParam
	}
	k := uint32(len(buffer) / sector.PayloadSize)

	base, err := s.sup.GetHead()
	if err != nil {
		return err
	}

	for i := 0; i < geometry.Mirrors; i++ {
		target := base
		for j := uint32(0); j < k; j++ {
			if !s.geo.InSlice(target) || s.geo.Physical(i, target) >= s.geo.TotalSectors {
				return ErrFull
			}
			enc, err := sector.EncodeData(header, buffer[j*sector.PayloadSize:(j+1)*sector.PayloadSize])
			if err != nil {
				return fmt.Errorf("appendlog: %w", err)
			}
			if err := s.dev.WriteBlock(s.geo.Physical(i, target), enc); err != nil {
				return fmt.Errorf("%w: mirror %d logical %d: %v", ErrDriver, i, target, err)
			}
			target++
		}
	}

	if err := s.sup.SetHead(base + k); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.dev.Deinit()
}
