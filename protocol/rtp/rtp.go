/*
NAME
  rtp.go

DESCRIPTION
  rtp.go provides the RTP packet type used to carry MPEG-TS datagrams.

  See https://tools.ietf.org/html/rfc3550 and https://tools.ietf.org/html/rfc2250
  for the rtp standard and its mpeg-ts payload format.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rtp provides encoding and parsing of RTP packets carrying MPEG-TS
// datagrams, a sequence tracker for received packets and an encoder that
// wraps outgoing datagrams.
package rtp

import "encoding/binary"

const (
	rtpVer           = 2                                // Version of RTP that this package is compatible with.
	defaultHeadSize  = 12                               // Header size of an rtp packet.
	defPayloadSize   = sendSize                         // Default payload size for the rtp packet.
	defPktSize       = defaultHeadSize + defPayloadSize // Default packet size is header size + payload size.
	optionalFieldIdx = 12                               // This is the idx of optional fields including CSRC and extension header in an RTP packet.
)

// Packet provides fields consistent with RFC3550 definition of an rtp packet.
// The CSRC count and the padding and extension indicators follow from the
// fields present. The last padding byte must hold the padding length.
type Packet struct {
	Version    uint8            // Version (currently 2).
	Marker     bool             // Marker bit.
	PacketType uint8            // Payload type, 33 for MPEG-TS.
	Sync       uint16           // Sequence number.
	Timestamp  uint32           // Timestamp.
	SSRC       uint32           // Synchronisation source identifier.
	CSRC       [][4]byte        // Contributing source identifiers, at most 15.
	Extension  *ExtensionHeader // Header extension, nil for none.
	Payload    []byte
	Padding    []byte
}

// ExtensionHeader header provides fields for an RTP packet extension header.
type ExtensionHeader struct {
	ID     uint16
	Header [][4]byte
}

// Bytes encodes p into buf, or into a new slice if buf is too small.
func (p *Packet) Bytes(buf []byte) []byte {
	n := defaultHeadSize + 4*len(p.CSRC) + len(p.Payload) + len(p.Padding)
	if p.Extension != nil {
		n += 4 + 4*len(p.Extension.Header)
	}
	if cap(buf) < n {
		buf = make([]byte, 0, max(n, defPktSize))
	}

	buf = append(buf[:0],
		p.Version<<6|asByte(len(p.Padding) != 0)<<5|asByte(p.Extension != nil)<<4|byte(len(p.CSRC))&0x0f,
		asByte(p.Marker)<<7|p.PacketType&0x7f,
	)
	buf = binary.BigEndian.AppendUint16(buf, p.Sync)
	buf = binary.BigEndian.AppendUint32(buf, p.Timestamp)
	buf = binary.BigEndian.AppendUint32(buf, p.SSRC)
	for _, c := range p.CSRC {
		buf = append(buf, c[:]...)
	}
	if p.Extension != nil {
		buf = binary.BigEndian.AppendUint16(buf, p.Extension.ID)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(p.Extension.Header)))
		for _, h := range p.Extension.Header {
			buf = append(buf, h[:]...)
		}
	}
	buf = append(buf, p.Payload...)
	return append(buf, p.Padding...)
}

func asByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
