/*
NAME
  encoder.go

DESCRIPTION
  encoder.go provides an Encoder that wraps MPEG-TS datagrams in RTP packets.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rtp

import (
	"fmt"
	"io"
	"math/rand"
	"time"
)

const (
	defaultPktType = 33    // MP2T payload type.
	timestampFreq  = 90000 // Hz
	mtsSize        = 188
	sendSize       = 7 * mtsSize
)

// Encoder implements io writer and provides functionality to wrap data into
// rtp packets. Every call to Write sends one packet, so callers write whole
// datagrams of at most 7 MPEG-TS units.
type Encoder struct {
	dst      io.Writer
	ssrc     uint32
	seqNo    uint16
	start    time.Time
	now      func() time.Time
	pktSpace [defPktSize]byte
}

// NewEncoder returns a new Encoder type given an io.Writer - the destination
// after encoding. Timestamps follow the wall clock from the first packet.
func NewEncoder(dst io.Writer) *Encoder {
	return &Encoder{
		dst:  dst,
		ssrc: rand.Uint32(),
		now:  time.Now,
	}
}

// Write provides an interface between a prior encoder and this rtp encoder,
// so that multiple layers of packetization can occur.
func (e *Encoder) Write(data []byte) (int, error) {
	err := e.Encode(data)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Encode takes a payload and encodes it into an rtp packet and writes to the
// io.Writer given in NewEncoder.
func (e *Encoder) Encode(payload []byte) error {
	if len(payload) > sendSize {
		return fmt.Errorf("payload of %d bytes exceeds %d", len(payload), sendSize)
	}
	pkt := Packet{
		Version:    rtpVer,
		PacketType: defaultPktType,
		Sync:       e.nxtSeqNo(),
		Timestamp:  e.nxtTimestamp(),
		SSRC:       e.ssrc,
		Payload:    payload,
	}
	_, err := e.dst.Write(pkt.Bytes(e.pktSpace[:0]))
	return err
}

// nxtTimestamp gets the next timestamp
func (e *Encoder) nxtTimestamp() uint32 {
	now := e.now()
	if e.start.IsZero() {
		e.start = now
	}
	return uint32(now.Sub(e.start).Seconds() * timestampFreq)
}

// nxtSeqNo gets the next rtp packet sequence number
func (e *Encoder) nxtSeqNo() uint16 {
	e.seqNo++
	return e.seqNo - 1
}
