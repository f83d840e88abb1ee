/*
NAME
  pes.go

DESCRIPTION
  pes.go encodes PES packet headers for elementary stream payloads.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pes provides encoding of PES packets as carried in MPEG-TS
// payload units.
package pes

import "github.com/Comcast/gots/v2"

// PES header sizes.
const (
	fixedLen      = 9 // Start code, stream ID, length, flags and header length.
	ptsLen        = 5
	MaxHeaderSize = fixedLen + ptsLen
)

// PTS DTS indicator values.
const (
	noPTS   = 0x0
	ptsOnly = 0x2
)

// Packet is a PES packet with an optional presentation time stamp.
type Packet struct {
	StreamID byte   // Stream ID, see the SID constants.
	Length   uint16 // Bytes following the length field. 0 is unbounded, allowed for video only.
	DAI      bool   // Data alignment indicator.
	HasPTS   bool
	PTS      uint64 // Presentation time stamp in 90 kHz ticks.
	Data     []byte
}

// Bytes appends the encoded packet to buf[:0] and returns it.
func (p *Packet) Bytes(buf []byte) []byte {
	pdi, hdrLen := byte(noPTS), byte(0)
	if p.HasPTS {
		pdi, hdrLen = ptsOnly, ptsLen
	}
	buf = append(buf[:0],
		0x00, 0x00, 0x01,
		p.StreamID,
		byte(p.Length>>8),
		byte(p.Length),
		0x80|boolByte(p.DAI)<<2, // Marker bits '10'.
		pdi<<6,
		hdrLen,
	)
	if p.HasPTS {
		n := len(buf)
		buf = append(buf, make([]byte, ptsLen)...)
		gots.InsertPTS(buf[n:], p.PTS)
	}
	return append(buf, p.Data...)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
