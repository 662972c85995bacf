// Copyright 2026 The go-ili2117 Authors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ili2117

// Wire layout constants for the ILI2117 touch report.
const (
	// FrameSize is the fixed size of one touch report read from the
	// controller: packet id (1) + 10 finger records (5 each) +
	// key/proximity nibbles (1) + frame checksum (1).
	FrameSize = 53

	// MaxContacts is the number of hardware contact slots reported per frame.
	MaxContacts = 10

	// PacketIDTouch marks a frame that carries touch data. A frame with any
	// other packet id carries nothing usable and also tells the host to stop
	// polling until the next interrupt.
	PacketIDTouch = 0x5A

	// ChecksumNone is the reserved checksum value meaning "no data here".
	// The controller writes it into the frame checksum when the frame as a
	// whole has no touch data, and into a finger record's checksum when that
	// slot has no active contact.
	ChecksumNone = 0xFF

	// CoordMax is the maximum coordinate value on either axis, in raw
	// sensor units.
	CoordMax = 2047

	fingerRecordSize = 5
	fingerDataOffset = 1
	statusByteOffset = fingerDataOffset + MaxContacts*fingerRecordSize
	checksumOffset   = statusByteOffset + 1
)

// FingerRecord is the decoded per-slot portion of a touch frame.
//
// Coordinates are split across a low byte and a 4-bit high nibble, giving an
// 11-bit usable range (the controller never reports above CoordMax). The
// record is an interpretation of the raw bytes, not a validation: out of
// range values pass through untouched.
type FingerRecord struct {
	XHi      uint8 // X bits 11..8
	YHi      uint8 // Y bits 11..8
	XLo      uint8 // X bits 7..0
	YLo      uint8 // Y bits 7..0
	Checksum uint8
}

// Active reports whether this slot carries a live contact. The controller
// writes ChecksumNone into the record of every empty slot.
func (f *FingerRecord) Active() bool {
	return f.Checksum != ChecksumNone
}

// X returns the reconstructed X coordinate in raw sensor units.
func (f *FingerRecord) X() uint16 {
	return uint16(f.XLo) | uint16(f.XHi)<<8
}

// Y returns the reconstructed Y coordinate in raw sensor units.
func (f *FingerRecord) Y() uint16 {
	return uint16(f.YLo) | uint16(f.YHi)<<8
}

// TouchFrame is one decoded 53-byte touch report.
type TouchFrame struct {
	PacketID      uint8
	Fingers       [MaxContacts]FingerRecord
	KeyMask       uint8 // hardware key states, low 4 bits
	ProximityMask uint8 // proximity sensor states, low 4 bits
	Checksum      uint8
}

// Valid reports whether the frame as a whole carries touch data. A frame
// with the wrong packet id or the ChecksumNone sentinel in its frame
// checksum has no usable contacts, regardless of per-finger data.
func (t *TouchFrame) Valid() bool {
	return t.PacketID == PacketIDTouch && t.Checksum != ChecksumNone
}

// DecodeFrame decodes a raw 53-byte touch report into a TouchFrame.
//
// Decoding is pure structural extraction over explicit offsets and bit
// positions; it never fails on frame content. The only error is a buffer of
// the wrong length, which signals a misconfigured transport rather than bad
// sensor data.
func DecodeFrame(buf []byte) (*TouchFrame, error) {
	if len(buf) != FrameSize {
		return nil, NewFrameSizeError("DecodeFrame", len(buf))
	}

	frame := &TouchFrame{
		PacketID: buf[0],
		// The key and proximity nibbles share the status byte, key in the
		// low nibble.
		KeyMask:       buf[statusByteOffset] & 0x0F,
		ProximityMask: buf[statusByteOffset] >> 4,
		Checksum:      buf[checksumOffset],
	}

	for i := range frame.Fingers {
		rec := buf[fingerDataOffset+i*fingerRecordSize:]
		// Byte 0 packs the coordinate high nibbles LSB-first: Y bits 11..8
		// in the low nibble, X bits 11..8 in the high nibble. Byte 3 is
		// reserved. The checksum closes the record.
		frame.Fingers[i] = FingerRecord{
			YHi:      rec[0] & 0x0F,
			XHi:      rec[0] >> 4,
			XLo:      rec[1],
			YLo:      rec[2],
			Checksum: rec[4],
		}
	}

	return frame, nil
}

// EncodeFrame builds the 53-byte wire form of a TouchFrame. It is the exact
// inverse of DecodeFrame for every field the wire format stores and exists
// mainly for simulated transports and tests.
func EncodeFrame(frame *TouchFrame) []byte {
	buf := make([]byte, FrameSize)
	buf[0] = frame.PacketID
	for i := range frame.Fingers {
		f := &frame.Fingers[i]
		rec := buf[fingerDataOffset+i*fingerRecordSize:]
		rec[0] = f.YHi&0x0F | f.XHi<<4
		rec[1] = f.XLo
		rec[2] = f.YLo
		rec[4] = f.Checksum
	}
	buf[statusByteOffset] = frame.KeyMask&0x0F | frame.ProximityMask<<4
	buf[checksumOffset] = frame.Checksum
	return buf
}
