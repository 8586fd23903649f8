package reader

import (
	"bytes"
	"testing"

	"github.com/raidlog/raidlog/pkg/appendlog"
	"github.com/raidlog/raidlog/pkg/blockdev"
	"github.com/raidlog/raidlog/pkg/geometry"
	"github.com/raidlog/raidlog/pkg/sector"
)

func fill(b byte) []byte {
	p := make([]byte, sector.PayloadSize)
	for i := range p {
		p[i] = b
	}
	return p
}

func TestReadRoundTrip(t *testing.T) {
	dev := blockdev.NewRAMDevice(90)
	s, err := appendlog.Open(dev)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InitLog(); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(0xAB, fill(12)); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(0xBC, fill(6)); err != nil {
		t.Fatal(err)
	}

	records, meta, err := Read(dev)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Head != 3 {
		t.Errorf("meta.Head = %d, want 3", meta.Head)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Status != CRCOK || records[0].Header != 0xAB || !bytes.Equal(records[0].Payload[:], fill(12)) {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Status != CRCOK || records[1].Header != 0xBC || !bytes.Equal(records[1].Payload[:], fill(6)) {
		t.Errorf("records[1] = %+v", records[1])
	}
	if len(meta.Mirrors) != geometry.Mirrors {
		t.Fatalf("len(meta.Mirrors) = %d, want %d", len(meta.Mirrors), geometry.Mirrors)
	}
	for i, mm := range meta.Mirrors {
		if mm.Mirror != i || !mm.Valid || mm.Head != 3 || mm.RawHex == "" {
			t.Errorf("meta.Mirrors[%d] = %+v, want valid head=3 with raw hex", i, mm)
		}
	}
}

// Scenario 4 / P5: a single corrupted mirror copy still recovers.
func TestReadRecoversFromSingleMirrorCorruption(t *testing.T) {
	dev := blockdev.NewRAMDevice(90)
	s, err := appendlog.Open(dev)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InitLog(); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(0xAB, fill(12)); err != nil {
		t.Fatal(err)
	}

	geo, err := geometry.New(90)
	if err != nil {
		t.Fatal(err)
	}
	dev.Corrupt(geo.Physical(2, 1), 10)

	records, _, err := Read(dev)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Status != CRCOK {
		t.Errorf("Status = %v, want CRCOK", records[0].Status)
	}
	if !bytes.Equal(records[0].Payload[:], fill(12)) {
		t.Error("payload mismatch after single-mirror corruption")
	}
}

func TestReadReportsCorruptionWhenAllMirrorsFail(t *testing.T) {
	dev := blockdev.NewRAMDevice(90)
	s, err := appendlog.Open(dev)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InitLog(); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(0xAB, fill(12)); err != nil {
		t.Fatal(err)
	}

	geo, err := geometry.New(90)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < geometry.Mirrors; i++ {
		dev.Corrupt(geo.Physical(i, 1), 10)
	}

	records, _, err := Read(dev)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Status != CRCFail {
		t.Errorf("Status = %v, want CRCFail", records[0].Status)
	}
}
