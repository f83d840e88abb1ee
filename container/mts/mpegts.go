/*
NAME
  mpegts.go - provides a data structure intended to encapsulate the properties
  of an MPEG-TS packet and also functions to allow manipulation of these packets.

DESCRIPTION
  mpegts.go holds the transport stream constants, the Packet type used to
  produce transport units and helpers for locating units in a byte stream.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mts provides MPEG-TS (mts) unit parsing, continuity checking and
// unit writing.
package mts

import (
	"github.com/pkg/errors"
)

// PacketSize is the size of a transport unit.
const PacketSize = 188

// SyncByte starts every transport unit.
const SyncByte = 0x47

// Reserved and well known PIDs.
const (
	PatPid   = 0x0000
	NitPid   = 0x0010
	SdtPid   = 0x0011
	NullPid  = 0x1fff
	NumPIDs  = 8192
	MaxPID   = NumPIDs - 1
	FirstPID = 0x0020 // First PID free for programs.
)

// HeadSize is the size of an MPEG-TS packet header.
const HeadSize = 4

// MaxPayloadSize is the payload space of a unit without an adaptation field.
const MaxPayloadSize = PacketSize - HeadSize

// Consts relating to adaptation field.
const (
	AdaptationIdx              = 4                 // Index to the adaptation field (index of AFL).
	AdaptationControlIdx       = 3                 // Index to octet with adaptation field control.
	AdaptationFieldsIdx        = AdaptationIdx + 1 // Adaptation field index is the index of the adaptation fields.
	AdaptationControlMask      = 0x30              // Mask for the adaptation field control in octet 3.
	DiscontinuityIndicatorMask = 0x80              // Mask for the discontinuity indicator at the discontinuity indicator idk.
	DiscontinuityIndicatorIdx  = AdaptationIdx + 1 // The index at which the discontinuity indicator is found in an MTS packet.
)

// pcrLen is the size of the PCR in the adaptation field.
const pcrLen = 6

// pcrReserved sets the reserved bits between the PCR base and extension.
const pcrReserved = 0x3f << 9

// MaxPCRPayloadSize is the payload space of a unit carrying a PCR.
const MaxPCRPayloadSize = MaxPayloadSize - 2 - pcrLen

// Adaptation field control values.
const (
	HasPayload         = 0x1
	HasAdaptationField = 0x2
)

// Packet represents the fields of an MPEG-TS unit that can be written.
type Packet struct {
	TEI      bool // Transport error indicator.
	PUSI     bool // Payload unit start indicator.
	Priority bool // Transport priority.
	PID      uint16
	TSC      byte   // Transport scrambling control.
	AFC      byte   // Adaptation field control.
	CC       byte   // Continuity counter.
	DI       bool   // Discontinuity indicator.
	RAI      bool   // Random access indicator.
	PCRF     bool   // PCR flag.
	PCR      uint64 // Program clock reference base, in 90 kHz ticks.
	Payload  []byte
}

// Bytes encodes p into buf, or into a new slice if buf is too small, and
// returns the unit. Space not taken by the payload is filled with adaptation
// field stuffing, so a short payload needs an adaptation field.
func (p *Packet) Bytes(buf []byte) []byte {
	if cap(buf) < PacketSize {
		buf = make([]byte, 0, PacketSize)
	}
	buf = append(buf[:0],
		SyncByte,
		asByte(p.TEI)<<7|asByte(p.PUSI)<<6|asByte(p.Priority)<<5|byte(p.PID>>8)&0x1f,
		byte(p.PID),
		p.TSC<<6|p.AFC<<4|p.CC&0xf,
	)

	payload := p.Payload
	if p.AFC&HasPayload == 0 {
		payload = nil
	}
	if p.AFC&HasAdaptationField != 0 {
		afl := MaxPayloadSize - 1 - len(payload)
		buf = append(buf, byte(afl))
		if afl > 0 {
			buf = append(buf, asByte(p.DI)<<7|asByte(p.RAI)<<6|asByte(p.PCRF)<<4)
		}
		if p.PCRF {
			v := p.PCR<<15 | pcrReserved
			for i := 40; i >= 0; i -= 8 {
				buf = append(buf, byte(v>>uint(i)))
			}
		}
		for len(buf) < AdaptationFieldsIdx+afl {
			buf = append(buf, stuffing)
		}
	}
	buf = append(buf, payload...)
	for len(buf) < PacketSize {
		buf = append(buf, stuffing)
	}
	return buf[:PacketSize]
}

func asByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// ErrInvalidLen is returned for data that is not a whole unit.
var ErrInvalidLen = errors.New("MPEG-TS data not of valid length")
