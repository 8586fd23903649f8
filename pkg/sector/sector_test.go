package sector

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func fillPayload(b byte) []byte {
	p := make([]byte, PayloadSize)
	for i := range p {
		p[i] = b
	}
	return p
}

func TestEncodeDecodeDataRoundTrip(t *testing.T) {
	for _, header := range []byte{0x00, 0x01, 0xAB, 0xFF} {
		payload := fillPayload(header)
		enc, err := EncodeData(header, payload)
		if err != nil {
			t.Fatalf("EncodeData(%#x): %v", header, err)
		}
		gotHeader, gotPayload, err := DecodeData(enc)
		if err != nil {
			t.Fatalf("DecodeData: %v", err)
		}
		if gotHeader != header {
			t.Errorf("header = %#x, want %#x", gotHeader, header)
		}
		if !bytes.Equal(gotPayload[:], payload) {
			t.Errorf("payload mismatch:\n%s", spew.Sdump(gotPayload))
		}
	}
}

func TestEncodeDataRejectsWrongLength(t *testing.T) {
	if _, err := EncodeData(0, make([]byte, PayloadSize-1)); err == nil {
		t.Fatal("expected error for short payload")
	}
}

func TestDecodeDataDetectsCorruption(t *testing.T) {
	enc, err := EncodeData(0xAB, fillPayload(12))
	if err != nil {
		t.Fatal(err)
	}
	enc[60] ^= 0xFF
	if _, _, err := DecodeData(enc); err != ErrCRCMismatch {
		t.Errorf("DecodeData on corrupted sector = %v, want ErrCRCMismatch", err)
	}
}

func TestEncodeDecodeSuperRoundTrip(t *testing.T) {
	enc, err := EncodeSuper(1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	head, msgIdx, firstFull, err := DecodeSuper(enc)
	if err != nil {
		t.Fatal(err)
	}
	if head != 1 || msgIdx != 0 || firstFull != 0 {
		t.Errorf("got head=%d msgIdx=%d firstFull=%d, want 1,0,0", head, msgIdx, firstFull)
	}
}

func TestEncodeSuperPreservesLegacyFields(t *testing.T) {
	enc, err := EncodeSuper(42, 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	head, msgIdx, firstFull, err := DecodeSuper(enc)
	if err != nil {
		t.Fatal(err)
	}
	if head != 42 {
		t.Errorf("head = %d, want 42", head)
	}
	if msgIdx != 7 {
		t.Errorf("msgIdx = %d, want 7 (legacy field must round-trip untouched)", msgIdx)
	}
	if firstFull != 1 {
		t.Errorf("firstFull = %d, want 1 (legacy field must round-trip untouched)", firstFull)
	}
}

func TestEncodeSuperRejectsOutOfRangeHead(t *testing.T) {
	if _, err := EncodeSuper(1<<24, 0, 0); err != ErrHeadOutOfRange {
		t.Errorf("EncodeSuper(1<<24, ...) = %v, want ErrHeadOutOfRange", err)
	}
}

func TestDecodeSuperDetectsCorruption(t *testing.T) {
	enc, err := EncodeSuper(5, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	enc[509] ^= 0xFF
	if _, _, _, err := DecodeSuper(enc); err != ErrCRCMismatch {
		t.Errorf("DecodeSuper on corrupted sector = %v, want ErrCRCMismatch", err)
	}
}

func TestReservedBytesAreZero(t *testing.T) {
	enc, err := EncodeSuper(1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 6; i < Size-crcSize; i++ {
		if enc[i] != 0 {
			t.Fatalf("reserved byte %d = %#x, want 0", i, enc[i])
		}
	}
}
