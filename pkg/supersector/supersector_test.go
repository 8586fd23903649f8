package supersector

import (
	"testing"

	"github.com/raidlog/raidlog/pkg/blockdev"
	"github.com/raidlog/raidlog/pkg/geometry"
	"github.com/raidlog/raidlog/pkg/sector"
)

func newFixture(t *testing.T, totalSectors uint32) (*blockdev.RAMDevice, geometry.Geometry, *Manager) {
	t.Helper()
	dev := blockdev.NewRAMDevice(totalSectors)
	geo, err := geometry.New(totalSectors)
	if err != nil {
		t.Fatal(err)
	}
	return dev, geo, New(dev, geo)
}

func TestInitLogThenGetHead(t *testing.T) {
	_, _, mgr := newFixture(t, 90)
	if err := mgr.InitLog(); err != nil {
		t.Fatal(err)
	}
	head, err := mgr.GetHead()
	if err != nil {
		t.Fatal(err)
	}
	if head != 1 {
		t.Errorf("GetHead() after InitLog = %d, want 1", head)
	}
}

func TestSetHeadThenGetHead(t *testing.T) {
	_, _, mgr := newFixture(t, 90)
	if err := mgr.InitLog(); err != nil {
		t.Fatal(err)
	}
	if err := mgr.SetHead(5); err != nil {
		t.Fatal(err)
	}
	head, err := mgr.GetHead()
	if err != nil {
		t.Fatal(err)
	}
	if head != 5 {
		t.Errorf("GetHead() = %d, want 5", head)
	}
}

// Scenario 5 from spec.md §8: majority vote, then fallback, then ErrMeta.
func TestGetHeadMajorityVoteAndFallback(t *testing.T) {
	dev, geo, mgr := newFixture(t, 90)
	if err := mgr.InitLog(); err != nil {
		t.Fatal(err)
	}
	if err := mgr.SetHead(2); err != nil {
		t.Fatal(err)
	}

	// Corrupt mirror 1's supersector CRC area; 0 and 2 still agree.
	dev.Corrupt(geo.SupersectorLBA(1), 509)
	if head, err := mgr.GetHead(); err != nil || head != 2 {
		t.Fatalf("GetHead() after 1 corruption = (%d, %v), want (2, nil)", head, err)
	}

	// Corrupt mirror 0 too; only mirror 2 remains valid.
	dev.Corrupt(geo.SupersectorLBA(0), 509)
	if head, err := mgr.GetHead(); err != nil || head != 2 {
		t.Fatalf("GetHead() after 2 corruptions = (%d, %v), want (2, nil)", head, err)
	}

	// Corrupt mirror 2: no valid copies remain.
	dev.Corrupt(geo.SupersectorLBA(2), 509)
	if _, err := mgr.GetHead(); err != ErrMeta {
		t.Fatalf("GetHead() after all corrupted = %v, want ErrMeta", err)
	}
}

func TestSetHeadPreservesLegacyFields(t *testing.T) {
	dev, geo, mgr := newFixture(t, 90)
	if err := mgr.InitLog(); err != nil {
		t.Fatal(err)
	}

	// Hand-craft a supersector with legacy fields set, as if some earlier
	// byte-granular write had touched them, then exercise SetHead.
	img, err := sector.EncodeSuper(3, 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < geometry.Mirrors; i++ {
		if err := dev.WriteBlock(geo.SupersectorLBA(i), img); err != nil {
			t.Fatal(err)
		}
	}

	if err := mgr.SetHead(9); err != nil {
		t.Fatal(err)
	}

	var raw [sector.Size]byte
	if err := dev.ReadBlock(geo.SupersectorLBA(0), &raw); err != nil {
		t.Fatal(err)
	}
	_, msgIdx, firstFull, err := sector.DecodeSuper(raw)
	if err != nil {
		t.Fatal(err)
	}
	if msgIdx != 7 || firstFull != 1 {
		t.Errorf("legacy fields after SetHead: msgIdx=%d firstFull=%d, want 7,1", msgIdx, firstFull)
	}
}
