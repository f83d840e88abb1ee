/*
DESCRIPTION
  input.go defines the datagram Source the monitor reads from and the options
  shared by its implementations.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package input provides datagram sources carrying MPEG-TS: a UDP socket,
// optionally joined to a multicast group, and pcap capture replay.
package input

import (
	"time"

	"github.com/ausocean/tsmon/protocol/rtp"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

var (
	// ErrTimeout is returned by Next when nothing arrived within the
	// receive timeout.
	ErrTimeout = errors.New("receive timed out")

	// ErrMalformed is returned by Next for a datagram that could not be
	// unwrapped. The source remains usable.
	ErrMalformed = errors.New("malformed datagram")
)

// Datagram is one received datagram and the time it was received.
type Datagram struct {
	// Data is only valid until the next call to Next.
	Data []byte
	Time time.Time
}

// Source yields datagrams one receive at a time.
type Source interface {
	// Next blocks for at most the source's receive timeout. It returns
	// ErrTimeout if nothing arrived and io.EOF once a finite source is
	// exhausted.
	Next() (Datagram, error)

	// Name describes the source for display.
	Name() string

	Close() error
}

// Option configures a source.
type Option func(*source) error

// RTP is an option that strips an RTP header from every datagram and logs
// gaps in the RTP sequence numbers.
func RTP() Option {
	return func(s *source) error {
		s.rtp = &rtp.Session{}
		s.log.Debug("configured for RTP unwrapping")
		return nil
	}
}

// source holds what UDP and Pcap have in common.
type source struct {
	log  logging.Logger
	rtp  *rtp.Session
	lost uint64
}

func (s *source) apply(options []Option) error {
	for _, option := range options {
		err := option(s)
		if err != nil {
			return errors.Wrap(err, "option failed")
		}
	}
	return nil
}

// unwrap returns the MPEG-TS carried by datagram d.
func (s *source) unwrap(d []byte) ([]byte, error) {
	if s.rtp == nil {
		return d, nil
	}
	p, lost, err := s.rtp.Receive(d)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "could not strip RTP header: %v", err)
	}
	if lost != 0 {
		s.lost += uint64(lost)
		s.log.Warning("RTP sequence gap", "lost", lost, "sequence", s.rtp.Sequence(), "total", s.lost)
	}
	return p, nil
}

// Lost returns the number of RTP packets found missing.
func (s *source) Lost() uint64 { return s.lost }
