// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package supersector implements the CRC-validated, N-way-redundant
// head-pointer metadata protocol. Its GetHead/SetHead open-read-decide
// shape mirrors the negotiate-then-fall-back control flow the teacher used
// for session property negotiation in pkg/core/session.go, here applied to
// mirror reconciliation instead of protocol properties.
package supersector

import (
	"errors"
	"fmt"

	"github.com/raidlog/raidlog/pkg/blockdev"
	"github.com/raidlog/raidlog/pkg/geometry"
	"github.com/raidlog/raidlog/pkg/sector"
)

// ErrMeta is returned when every mirror's supersector fails CRC
// simultaneously: the head pointer is unrecoverable and requires operator
// intervention.
var ErrMeta = errors.New("supersector: all mirror copies failed CRC, metadata unrecoverable")

// Manager owns the supersector triplet for one device+geometry pair. It
// holds no head-pointer cache: every call re-reads the device, per
// spec.md §5's single-writer, no-hidden-state model.
type Manager struct {
	dev blockdev.BlockDevice
	geo geometry.Geometry
}

// New returns a Manager for dev under geo.
func New(dev blockdev.BlockDevice, geo geometry.Geometry) *Manager {
	return &Manager{dev: dev, geo: geo}
}

type copy struct {
	valid     bool
	head      uint32
	msgIndex  uint16
	firstFull byte
}

func (m *Manager) readCopies() ([geometry.Mirrors]copy, error) {
	var copies [geometry.Mirrors]copy
	for i := 0; i < geometry.Mirrors; i++ {
		var raw [sector.Size]byte
		if err := m.dev.ReadBlock(m.geo.SupersectorLBA(i), &raw); err != nil {
			return copies, fmt.Errorf("%w: mirror %d: %v", blockdev.ErrIO, i, err)
		}
		head, msgIdx, firstFull, err := sector.DecodeSuper(raw)
		if err == nil {
			copies[i] = copy{valid: true, head: head, msgIndex: msgIdx, firstFull: firstFull}
		}
	}
	return copies, nil
}

// GetHead reads all N physical supersectors and resolves the head pointer
// by majority vote across valid copies, falling back to the
// lowest-indexed valid copy, and failing with ErrMeta if none validate.
func (m *Manager) GetHead() (uint32, error) {
	copies, err := m.readCopies()
	if err != nil {
		return 0, err
	}

	counts := map[uint32]int{}
	firstValid := -1
	for i, c := range copies {
		if !c.valid {
			continue
		}
		if firstValid == -1 {
			firstValid = i
		}
		counts[c.head]++
	}
	for head, n := range counts {
		if n >= 2 {
			return head, nil
		}
	}
	if firstValid >= 0 {
		return copies[firstValid].head, nil
	}
	return 0, ErrMeta
}

// SetHead overwrites the head pointer and writes the updated image to all
// N mirrors in order 0..N-1, syncing afterward. It first reads one valid
// current image to preserve the legacy msg_index/first_log_full bytes
// verbatim; if no mirror validates, the head cannot be safely advanced and
// SetHead fails with ErrMeta rather than guessing at those fields.
func (m *Manager) SetHead(h uint32) error {
	copies, err := m.readCopies()
	if err != nil {
		return err
	}
	src := -1
	for i, c := range copies {
		if c.valid {
			src = i
			break
		}
	}
	if src < 0 {
		return ErrMeta
	}

	img, err := sector.EncodeSuper(h, copies[src].msgIndex, copies[src].firstFull)
	if err != nil {
		return fmt.Errorf("supersector: %w", err)
	}
	for i := 0; i < geometry.Mirrors; i++ {
		if err := m.dev.WriteBlock(m.geo.SupersectorLBA(i), img); err != nil {
			return fmt.Errorf("%w: mirror %d: %v", blockdev.ErrIO, i, err)
		}
	}
	if err := m.dev.Sync(); err != nil {
		return fmt.Errorf("%w: %v", blockdev.ErrIO, err)
	}
	return nil
}

// InitLog formats a fresh supersector (head=1, the "no data sector has
// been written yet" sentinel per spec.md I4) and writes it to all N
// mirrors, followed by Sync.
func (m *Manager) InitLog() error {
	img, err := sector.EncodeSuper(1, 0, 0)
	if err != nil {
		return fmt.Errorf("supersector: %w", err)
	}
	for i := 0; i < geometry.Mirrors; i++ {
		if err := m.dev.WriteBlock(m.geo.SupersectorLBA(i), img); err != nil {
			return fmt.Errorf("%w: mirror %d: %v", blockdev.ErrIO, i, err)
		}
	}
	if err := m.dev.Sync(); err != nil {
		return fmt.Errorf("%w: %v", blockdev.ErrIO, err)
	}
	return nil
}
