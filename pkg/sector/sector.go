// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sector encodes and decodes the two 512-byte sector flavors that
// ever hit the block device: data sectors and supersectors. Both share the
// same closing shape — a 4-byte little-endian CRC-32 over everything that
// precedes it — so the codec is built the way pkg/core/communication.go
// framed its ComPacket/Packet/SubPacket headers: a bytes.Buffer filled with
// binary.Write, padded to the wire size.
package sector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/raidlog/raidlog/pkg/crc32raid"
)

const (
	// Size is the fixed on-disk size of every sector, data or super.
	Size = 512
	// HeaderSize is the caller tag byte at the front of a data sector.
	HeaderSize = 1
	// PayloadSize is the caller-data portion of a data sector.
	PayloadSize = Size - HeaderSize - crcSize
	// crcSize is the width of the trailing CRC-32 field, shared by both
	// sector flavors.
	crcSize = 4

	// superHeadSize is the width of the supersector's 24-bit head pointer.
	superHeadSize = 3
	// superMsgIndexSize is the legacy byte-granular message cursor.
	superMsgIndexSize = 2
	// superFirstFullSize is the legacy wrap flag for byte-granular messages.
	superFirstFullSize = 1
	// superReservedSize pads the supersector out to the CRC field.
	superReservedSize = Size - superHeadSize - superMsgIndexSize - superFirstFullSize - crcSize

	// maxHead is the largest value the 24-bit head pointer can hold.
	maxHead = 1<<24 - 1
)

// ErrCRCMismatch is returned by the Decode functions when the stored CRC-32
// does not match the recomputed one. It is a data signal for the voting
// logic upstream, not necessarily a fatal error.
var ErrCRCMismatch = errors.New("sector: CRC mismatch")

// ErrHeadOutOfRange is returned by EncodeSuper when head does not fit in the
// supersector's 24-bit field.
var ErrHeadOutOfRange = errors.New("sector: head pointer exceeds 24 bits")

// EncodeData builds a 512-byte data sector from the caller's tag byte and a
// PayloadSize-length payload slice.
func EncodeData(header byte, payload []byte) ([Size]byte, error) {
	var out [Size]byte
	if len(payload) != PayloadSize {
		return out, fmt.Errorf("sector: payload must be exactly %d bytes, got %d", PayloadSize, len(payload))
	}
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	buf.WriteByte(header)
	buf.Write(payload)
	crc := crc32raid.Checksum(buf.Bytes())
	if err := binary.Write(buf, binary.LittleEndian, crc); err != nil {
		return out, err
	}
	copy(out[:], buf.Bytes())
	return out, nil
}

// DecodeData recomputes the CRC over the leading Size-crcSize bytes of
// sector and compares it against the stored little-endian word. On mismatch
// it still returns the header/payload it decoded so callers can report a
// best-effort dump, alongside ErrCRCMismatch.
func DecodeData(sector [Size]byte) (header byte, payload [PayloadSize]byte, err error) {
	header = sector[0]
	copy(payload[:], sector[HeaderSize:HeaderSize+PayloadSize])
	stored := binary.LittleEndian.Uint32(sector[Size-crcSize:])
	calc := crc32raid.Checksum(sector[:Size-crcSize])
	if stored != calc {
		return header, payload, ErrCRCMismatch
	}
	return header, payload, nil
}

// DataCRCs returns the stored and recomputed CRC-32 for sector without
// judging validity, for diagnostics (e.g. the reader CLI's meta/payload
// dumps want to show both even when they disagree).
func DataCRCs(sector [Size]byte) (stored, calc uint32) {
	stored = binary.LittleEndian.Uint32(sector[Size-crcSize:])
	calc = crc32raid.Checksum(sector[:Size-crcSize])
	return stored, calc
}

// EncodeSuper builds a 512-byte supersector image. msgIndex and firstFull
// are the legacy byte-granular message cursor fields; this codec treats
// them as opaque passthrough bytes and never interprets them.
func EncodeSuper(head uint32, msgIndex uint16, firstFull byte) ([Size]byte, error) {
	var out [Size]byte
	if head > maxHead {
		return out, ErrHeadOutOfRange
	}
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	buf.WriteByte(byte(head))
	buf.WriteByte(byte(head >> 8))
	buf.WriteByte(byte(head >> 16))
	if err := binary.Write(buf, binary.LittleEndian, msgIndex); err != nil {
		return out, err
	}
	buf.WriteByte(firstFull)
	buf.Write(make([]byte, superReservedSize))
	crc := crc32raid.Checksum(buf.Bytes())
	if err := binary.Write(buf, binary.LittleEndian, crc); err != nil {
		return out, err
	}
	copy(out[:], buf.Bytes())
	return out, nil
}

// DecodeSuper validates the supersector's CRC and, on success, extracts the
// head pointer and the opaque legacy fields.
func DecodeSuper(sector [Size]byte) (head uint32, msgIndex uint16, firstFull byte, err error) {
	head = uint32(sector[0]) | uint32(sector[1])<<8 | uint32(sector[2])<<16
	msgIndex = binary.LittleEndian.Uint16(sector[superHeadSize : superHeadSize+superMsgIndexSize])
	firstFull = sector[superHeadSize+superMsgIndexSize]

	stored := binary.LittleEndian.Uint32(sector[Size-crcSize:])
	calc := crc32raid.Checksum(sector[:Size-crcSize])
	if stored != calc {
		return head, msgIndex, firstFull, ErrCRCMismatch
	}
	return head, msgIndex, firstFull, nil
}

// SuperCRCs mirrors DataCRCs for supersector images.
func SuperCRCs(sector [Size]byte) (stored, calc uint32) {
	stored = binary.LittleEndian.Uint32(sector[Size-crcSize:])
	calc = crc32raid.Checksum(sector[:Size-crcSize])
	return stored, calc
}
