// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reader implements the stateless recovery reader: given a device,
// it detects capacity, re-derives mirror geometry, reads the supersector
// with mirror voting, then for each logical data sector picks the first
// CRC-valid copy across mirrors (or reports corruption). It never writes.
// The enumerate-then-render split between this package and its callers
// mirrors cmd/tcgdiskstat/main.go's DeviceState collection kept separate
// from its output renderers.
package reader

import (
	"encoding/hex"
	"fmt"

	"github.com/raidlog/raidlog/pkg/blockdev"
	"github.com/raidlog/raidlog/pkg/geometry"
	"github.com/raidlog/raidlog/pkg/sector"
	"github.com/raidlog/raidlog/pkg/supersector"
)

// Status describes whether a Record's payload could be trusted.
type Status int

const (
	// CRCOK means at least one mirror copy verified.
	CRCOK Status = iota
	// CRCFail means no mirror copy verified; Payload is a best-effort
	// dump from mirror 0 and MUST NOT be trusted for anything beyond
	// reporting.
	CRCFail
)

func (s Status) String() string {
	if s == CRCOK {
		return "CRC_OK"
	}
	return "CRC_FAIL"
}

// Record is one decoded logical data sector.
type Record struct {
	LogicalSector uint32
	Mirror        int
	Status        Status
	Header        byte
	Payload       [sector.PayloadSize]byte
	CRCStored     uint32
	CRCCalc       uint32
}

// MirrorMeta is one physical supersector copy's raw/decoded state, for
// diagnostics that want to see each mirror rather than only the resolved
// vote — the per-copy dump spec.md §6 and original_source/src/reader.c's
// sector0/sector1/sector2 rows both call for.
type MirrorMeta struct {
	Mirror       int
	Valid        bool
	Head         uint32
	MsgIndex     uint16
	FirstLogFull byte
	RawHex       string
}

// MetaRecord holds the resolved head pointer (post majority vote) plus the
// raw per-mirror state it was resolved from. MsgIndex, FirstLogFull and
// RawHex are taken from mirror 0's copy, not from the voted one; MsgIndex
// and FirstLogFull are zero when that copy fails CRC.
type MetaRecord struct {
	Head         uint32
	MsgIndex     uint16
	FirstLogFull byte
	RawHex       string
	Mirrors      []MirrorMeta
}

// Read opens dev, derives its geometry, and returns every logical data
// sector in [1, head) plus the resolved supersector metadata. Read calls
// dev.Init itself, so dev should be freshly constructed or have an Init
// that may be called again; Read does not call Deinit.
func Read(dev blockdev.BlockDevice) ([]Record, MetaRecord, error) {
	if err := dev.Init(); err != nil {
		return nil, MetaRecord{}, fmt.Errorf("%w: %v", blockdev.ErrInit, err)
	}
	geo, err := geometry.New(dev.TotalSectors())
	if err != nil {
		return nil, MetaRecord{}, err
	}
	mgr := supersector.New(dev, geo)
	head, err := mgr.GetHead()
	if err != nil {
		return nil, MetaRecord{}, err
	}

	var meta MetaRecord
	meta.Head = head
	meta.Mirrors = make([]MirrorMeta, geometry.Mirrors)
	for i := 0; i < geometry.Mirrors; i++ {
		mm := MirrorMeta{Mirror: i}
		var raw [sector.Size]byte
		if rerr := dev.ReadBlock(geo.SupersectorLBA(i), &raw); rerr == nil {
			mm.RawHex = hex.EncodeToString(raw[:])
			if h, msgIdx, firstFull, derr := sector.DecodeSuper(raw); derr == nil {
				mm.Valid = true
				mm.Head = h
				mm.MsgIndex = msgIdx
				mm.FirstLogFull = firstFull
			}
		}
		meta.Mirrors[i] = mm
		if i == 0 {
			meta.RawHex = mm.RawHex
			meta.MsgIndex = mm.MsgIndex
			meta.FirstLogFull = mm.FirstLogFull
		}
	}

	var records []Record
	for l := uint32(1); l < head; l++ {
		rec, err := readOne(dev, geo, l)
		if err != nil {
			return nil, MetaRecord{}, err
		}
		records = append(records, rec)
	}
	return records, meta, nil
}

func readOne(dev blockdev.BlockDevice, geo geometry.Geometry, l uint32) (Record, error) {
	var firstRaw [sector.Size]byte
	for i := 0; i < geometry.Mirrors; i++ {
		var raw [sector.Size]byte
		if err := dev.ReadBlock(geo.Physical(i, l), &raw); err != nil {
			return Record{}, fmt.Errorf("%w: mirror %d logical %d: %v", blockdev.ErrIO, i, l, err)
		}
		if i == 0 {
			firstRaw = raw
		}
		header, payload, err := sector.DecodeData(raw)
		if err == nil {
			stored, calc := sector.DataCRCs(raw)
			return Record{
				LogicalSector: l,
				Mirror:        i,
				Status:        CRCOK,
				Header:        header,
				Payload:       payload,
				CRCStored:     stored,
				CRCCalc:       calc,
			}, nil
		}
	}
	// No mirror verified: best-effort dump from mirror 0, per spec.md §4.7.
	header, payload, _ := sector.DecodeData(firstRaw)
	stored, calc := sector.DataCRCs(firstRaw)
	return Record{
		LogicalSector: l,
		Mirror:        0,
		Status:        CRCFail,
		Header:        header,
		Payload:       payload,
		CRCStored:     stored,
		CRCCalc:       calc,
	}, nil
}
