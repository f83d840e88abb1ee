/*
NAME
  sdt.go

DESCRIPTION
  sdt.go provides parsing and validation of DVB service description tables.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import "github.com/pkg/errors"

// Lengths of SDT fields.
const (
	SDTDefLen     = 3 // original_network_id and reserved byte.
	SDTServiceLen = 5 // Fixed part of a service entry.
)

// SDTService is one entry of an SDT service loop.
type SDTService struct {
	ID                  uint16
	EITSchedule         bool
	EITPresentFollowing bool
	RunningStatus       uint8
	Scrambled           bool // free_CA_mode.
	Descriptors         []Descriptor
}

// ServiceDescriptor is the content of a service descriptor (tag 0x48). Names
// are left in their DVB encoding.
type ServiceDescriptor struct {
	Type     uint8
	Provider []byte
	Name     []byte
}

// OriginalNetworkID returns the original_network_id of an SDT section.
func OriginalNetworkID(s Section) uint16 {
	p := s.Payload()
	return uint16(p[0])<<8 | uint16(p[1])
}

// SDTServices parses the service loop of SDT section s.
func SDTServices(s Section) ([]SDTService, error) {
	p := s.Payload()
	if len(p) < SDTDefLen {
		return nil, errors.Wrap(ErrMalformed, "SDT too short for network id")
	}
	p = p[SDTDefLen:]

	var svcs []SDTService
	for len(p) != 0 {
		if len(p) < SDTServiceLen {
			return svcs, errors.Wrap(ErrMalformed, "truncated service entry")
		}
		l := int(p[3]&0x0f)<<8 | int(p[4])
		if SDTServiceLen+l > len(p) {
			return svcs, errors.Wrap(ErrMalformed, "service descriptors overrun section")
		}
		descs, err := Descriptors(p[SDTServiceLen : SDTServiceLen+l])
		if err != nil {
			return svcs, err
		}
		svcs = append(svcs, SDTService{
			ID:                  uint16(p[0])<<8 | uint16(p[1]),
			EITSchedule:         p[2]&0x02 != 0,
			EITPresentFollowing: p[2]&0x01 != 0,
			RunningStatus:       p[3] >> 5,
			Scrambled:           p[3]&0x10 != 0,
			Descriptors:         descs,
		})
		p = p[SDTServiceLen+l:]
	}
	return svcs, nil
}

// ValidateSDTSection checks that s is structurally an SDT section for the
// actual transport stream.
func ValidateSDTSection(s Section) error {
	if err := checkLongForm(s, SDTActualTableID); err != nil {
		return err
	}
	_, err := SDTServices(s)
	return err
}

// ValidateSDT checks a complete SDT: every section must be valid and carry
// the same original network id.
func ValidateSDT(t *Table) error {
	var onid uint16
	for i, s := range t.Sections() {
		if err := ValidateSDTSection(s); err != nil {
			return errors.Wrapf(err, "section %d", s.Number())
		}
		if i == 0 {
			onid = OriginalNetworkID(s)
		} else if OriginalNetworkID(s) != onid {
			return errors.Wrap(ErrMalformed, "original network id differs between sections")
		}
	}
	return nil
}

// ParseServiceDescriptor parses a service descriptor.
func ParseServiceDescriptor(d Descriptor) (ServiceDescriptor, error) {
	if d.Tag != ServiceDescriptorTag {
		return ServiceDescriptor{}, errors.Errorf("not a service descriptor: tag 0x%02x", d.Tag)
	}
	b := d.Data
	if len(b) < 2 {
		return ServiceDescriptor{}, errors.Wrap(ErrMalformed, "service descriptor too short")
	}
	sd := ServiceDescriptor{Type: b[0]}
	pl := int(b[1])
	b = b[2:]
	if pl+1 > len(b) {
		return ServiceDescriptor{}, errors.Wrap(ErrMalformed, "provider name overruns descriptor")
	}
	sd.Provider = b[:pl]
	b = b[pl:]
	nl := int(b[0])
	b = b[1:]
	if nl > len(b) {
		return ServiceDescriptor{}, errors.Wrap(ErrMalformed, "service name overruns descriptor")
	}
	sd.Name = b[:nl]
	return sd, nil
}
