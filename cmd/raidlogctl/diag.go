package main

import (
	"fmt"
	"log"

	"github.com/davecgh/go-spew/spew"

	"github.com/raidlog/raidlog/pkg/blockdev"
	"github.com/raidlog/raidlog/pkg/geometry"
	"github.com/raidlog/raidlog/pkg/sector"
)

type mirrorState struct {
	LBA          uint32
	Valid        bool
	Head         uint32
	MsgIndex     uint16
	FirstLogFull byte
	CRCStored    uint32
	CRCCalc      uint32
}

// diagDump prints raw per-mirror supersector state and the derived
// geometry, bypassing the majority-vote logic in pkg/supersector so a
// human can see exactly what each mirror disagrees about.
func diagDump(device string, dev blockdev.BlockDevice) error {
	if err := dev.Init(); err != nil {
		return fmt.Errorf("%w: %v", blockdev.ErrInit, err)
	}
	defer dev.Deinit()

	geo, err := geometry.New(dev.TotalSectors())
	if err != nil {
		return err
	}
	log.Printf("Device %q: %d total sectors, stride %d, %d mirrors", device, geo.TotalSectors, geo.Stride, geometry.Mirrors)

	states := make([]mirrorState, geometry.Mirrors)
	for i := 0; i < geometry.Mirrors; i++ {
		lba := geo.SupersectorLBA(i)
		st := mirrorState{LBA: lba}
		var raw [sector.Size]byte
		if err := dev.ReadBlock(lba, &raw); err != nil {
			log.Printf("mirror %d (LBA %d): read failed: %v", i, lba, err)
			states[i] = st
			continue
		}
		st.CRCStored, st.CRCCalc = sector.SuperCRCs(raw)
		head, msgIdx, firstFull, derr := sector.DecodeSuper(raw)
		if derr == nil {
			st.Valid = true
			st.Head = head
			st.MsgIndex = msgIdx
			st.FirstLogFull = firstFull
		}
		states[i] = st
	}

	fmt.Printf("===> SUPERSECTOR MIRRORS\n")
	spew.Dump(states)
	fmt.Printf("\n")
	fmt.Printf("===> GEOMETRY\n")
	spew.Dump(geo)
	return nil
}
