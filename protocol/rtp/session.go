/*
NAME
  session.go

DESCRIPTION
  session.go provides tracking of the sequence numbers of a received RTP
  stream.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rtp

// Session follows the sequence numbers of a received RTP stream. It is not
// safe for concurrent use.
type Session struct {
	ssrc     uint32
	sequence uint16
	cycles   uint16
	started  bool
}

// Receive strips the header of the RTP packet d and returns its payload. lost
// is the number of packets missing between the previous packet and d; it is
// 0 for the first packet, a packet from a new source, or a packet that is
// late or repeated.
func (s *Session) Receive(d []byte) (payload []byte, lost int, err error) {
	payload, err = Payload(d)
	if err != nil {
		return nil, 0, err
	}
	seq, _ := Sequence(d)
	ssrc, _ := SSRC(d)

	if !s.started || ssrc != s.ssrc {
		s.ssrc = ssrc
		s.sequence = seq
		s.cycles = 0
		s.started = true
		return payload, 0, nil
	}

	diff := seq - s.sequence
	if diff == 0 || diff >= 0x8000 {
		return payload, 0, nil
	}
	s.setSequence(seq)
	return payload, int(diff) - 1, nil
}

// setSequence sets the most recently received sequence number, and updates the
// cycles count if the sequence number has rolled over.
func (s *Session) setSequence(seq uint16) {
	if seq < s.sequence {
		s.cycles++
	}
	s.sequence = seq
}

// SSRC returns the identified for the source from which the RTP packets being
// received are coming from.
func (s *Session) SSRC() uint32 { return s.ssrc }

// Sequence returns the most recent RTP packet sequence number received.
func (s *Session) Sequence() uint16 { return s.sequence }

// Cycles returns the number of RTP sequence number cycles that have been received.
func (s *Session) Cycles() uint16 { return s.cycles }
