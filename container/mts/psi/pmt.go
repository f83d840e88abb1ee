/*
NAME
  pmt.go

DESCRIPTION
  pmt.go provides validation of program map sections and extraction of their
  elementary stream loop.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	gotspsi "github.com/Comcast/gots/v2/psi"
	"github.com/pkg/errors"
)

// Lengths of PMT fields.
const (
	PMTDefLen  = 4 // PCR PID and program_info_length.
	ESSDataLen = 5 // Stream type, elementary PID and ES_info_length.
)

// Stream types.
const (
	StreamTypeMPEG1Video = 0x01
	StreamTypeMPEG2Video = 0x02
	StreamTypeMPEG1Audio = 0x03
	StreamTypeMPEG2Audio = 0x04
	StreamTypePrivate    = 0x06
	StreamTypeADTS       = 0x0f
	StreamTypeMPEG4Video = 0x10
	StreamTypeLATM       = 0x11
	StreamTypeH264       = 0x1b
	StreamTypeH265       = 0x24
)

// ElementaryStream is one entry of a PMT stream loop.
type ElementaryStream struct {
	Type uint8
	PID  uint16
	Tags []uint8 // Tags of the ES descriptors, in order.
}

// ProgramMap holds the parts of a program map section used for stream
// classification.
type ProgramMap struct {
	Program uint16
	Version uint8
	Streams []ElementaryStream
}

// ValidatePMTSection checks that s is a single section PMT whose program info
// and elementary stream loops exactly fill the section.
func ValidatePMTSection(s Section) error {
	if err := checkLongForm(s, PMTTableID); err != nil {
		return err
	}
	if s.Number() != 0 || s.LastNumber() != 0 {
		return errors.Wrap(ErrSectionNumber, "PMT must be a single section")
	}
	p := s.Payload()
	if len(p) < PMTDefLen {
		return errors.Wrap(ErrMalformed, "PMT too short for program info length")
	}
	infoLen := int(p[2]&0x0f)<<8 | int(p[3])
	p = p[PMTDefLen:]
	if infoLen > len(p) {
		return errors.Wrap(ErrMalformed, "program info overruns section")
	}
	p = p[infoLen:]
	for len(p) != 0 {
		if len(p) < ESSDataLen {
			return errors.Wrap(ErrMalformed, "truncated elementary stream entry")
		}
		esLen := int(p[3]&0x0f)<<8 | int(p[4])
		if ESSDataLen+esLen > len(p) {
			return errors.Wrap(ErrMalformed, "ES info overruns section")
		}
		p = p[ESSDataLen+esLen:]
	}
	return nil
}

// ParsePMT returns the program number, version and elementary streams of the
// PMT section s. s should have passed ValidatePMTSection.
func ParsePMT(s Section) (*ProgramMap, error) {
	// The parser expects a TS payload, i.e. a pointer field first.
	payload := make([]byte, 1, 1+len(s))
	payload = append(payload, s...)
	for len(payload) < unitPayloadSize {
		payload = append(payload, stuffing)
	}
	pmt, err := gotspsi.NewPMT(payload)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse PMT")
	}

	p := &ProgramMap{Program: s.TableIDExt(), Version: s.Version()}
	for _, es := range pmt.ElementaryStreams() {
		e := ElementaryStream{Type: uint8(es.StreamType()), PID: uint16(es.ElementaryPid())}
		for _, d := range es.Descriptors() {
			e.Tags = append(e.Tags, uint8(d.Tag()))
		}
		p.Streams = append(p.Streams, e)
	}
	return p, nil
}
