/*
NAME
  unit.go

DESCRIPTION
  unit.go provides parsing of the header and adaptation field of received
  MPEG-TS units.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"github.com/Comcast/gots/v2/packet"
	"github.com/pkg/errors"
)

var (
	ErrSync          = errors.New("unit does not start with sync byte")
	ErrAdaptationLen = errors.New("adaptation field overruns unit")
)

// Unit holds the fields of a received transport unit that monitoring needs.
type Unit struct {
	PID           uint16
	CC            uint8
	TEI           bool  // Transport error indicator.
	PUSI          bool  // Payload unit start indicator.
	TSC           uint8 // Transport scrambling control.
	AFC           uint8 // Adaptation field control.
	Discontinuity bool  // Discontinuity indicator of the adaptation field.

	// Payload references the payload bytes of the source buffer. It is empty
	// when the unit carries none, and is only valid until the buffer is reused.
	Payload []byte
}

// HasPayload reports whether the adaptation field control announces a
// payload.
func (u *Unit) HasPayload() bool { return u.AFC&HasPayload != 0 }

// HasAdaptationField reports whether the adaptation field control announces
// an adaptation field.
func (u *Unit) HasAdaptationField() bool { return u.AFC&HasAdaptationField != 0 }

// ParseUnit parses the first PacketSize bytes of b. ErrSync is returned if
// the sync byte is wrong and ErrAdaptationLen if the adaptation field length
// is impossible; in the second case the header fields of the returned unit
// are still set.
func ParseUnit(b []byte) (Unit, error) {
	if len(b) < PacketSize {
		return Unit{}, ErrInvalidLen
	}
	if b[0] != SyncByte {
		return Unit{}, ErrSync
	}

	var pkt packet.Packet
	copy(pkt[:], b[:PacketSize])
	u := Unit{
		PID:  uint16(pkt.PID()),
		CC:   uint8(pkt.ContinuityCounter()),
		TEI:  b[1]&0x80 != 0,
		PUSI: pkt.PayloadUnitStartIndicator(),
		TSC:  b[3] >> 6,
		AFC:  (b[AdaptationControlIdx] & AdaptationControlMask) >> 4,
	}

	off := HeadSize
	if packet.ContainsAdaptationField(&pkt) {
		afl := int(b[AdaptationIdx])
		if AdaptationFieldsIdx+afl > PacketSize {
			return u, ErrAdaptationLen
		}
		if afl > 0 {
			u.Discontinuity = b[DiscontinuityIndicatorIdx]&DiscontinuityIndicatorMask != 0
		}
		off = AdaptationFieldsIdx + afl
	}
	if u.HasPayload() && off < PacketSize {
		u.Payload = b[off:PacketSize]
	}
	return u, nil
}
