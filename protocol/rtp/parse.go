/*
NAME
  parse.go

DESCRIPTION
  parse.go provides functionality for parsing RTP packets.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rtp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrVersion = errors.New("incompatible RTP version")
	ErrLength  = errors.New("invalid RTP packet length")
)

// Payload returns the payload from an RTP packet provided the version is
// compatible, otherwise an error is returned. The CSRC list, extension header
// and padding are removed.
func Payload(d []byte) ([]byte, error) {
	err := checkPacket(d)
	if err != nil {
		return nil, err
	}
	payloadIdx := optionalFieldIdx + 4*csrcCount(d)
	if hasExt(d) {
		if len(d) < payloadIdx+4 {
			return nil, errors.Wrap(ErrLength, "extension header truncated")
		}
		payloadIdx += 4 + 4*int(binary.BigEndian.Uint16(d[payloadIdx+2:]))
	}
	end := len(d)
	if hasPadding(d) && end > payloadIdx {
		end -= int(d[end-1])
	}
	if payloadIdx > end {
		return nil, ErrLength
	}
	return d[payloadIdx:end], nil
}

// SSRC returns the source identifier from an RTP packet. An error is return if
// the packet is not valid.
func SSRC(d []byte) (uint32, error) {
	err := checkPacket(d)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d[8:]), nil
}

// Sequence returns the sequence number of an RTP packet. An error is returned
// if the packet is not valid.
func Sequence(d []byte) (uint16, error) {
	err := checkPacket(d)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(d[2:]), nil
}

// checkPacket checks the validity of the packet, firstly by checking size and
// then also checking that version is compatible with these utilities.
func checkPacket(d []byte) error {
	if len(d) < defaultHeadSize {
		return ErrLength
	}
	if version(d) != rtpVer {
		return ErrVersion
	}
	return nil
}

// hasExt returns true if an extension is present in the RTP packet.
func hasExt(d []byte) bool {
	return (d[0] & 0x10 >> 4) == 1
}

// hasPadding returns true if the padding indicator is set.
func hasPadding(d []byte) bool {
	return d[0]&0x20 != 0
}

// csrcCount returns the number of CSRC fields.
func csrcCount(d []byte) int {
	return int(d[0] & 0x0f)
}

// version returns the version of the RTP packet.
func version(d []byte) int {
	return int(d[0] & 0xc0 >> 6)
}
