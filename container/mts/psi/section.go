/*
NAME
  section.go

DESCRIPTION
  section.go provides a read-only view of a complete PSI/SI section and
  structural validation of sections.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"github.com/pkg/errors"
)

// Section header lengths.
const (
	HeaderLen       = 3 // table_id and section_length.
	SyntaxHeaderLen = 8 // HeaderLen plus the long-form syntax fields.
)

// MaxSectionLen is the largest section_length allowed for private sections.
// PSI tables proper are limited to 1021.
const MaxSectionLen = 4093

// Table IDs.
const (
	PATTableID       = 0x00
	PMTTableID       = 0x02
	SDTActualTableID = 0x42
	SDTOtherTableID  = 0x46
)

// Errors returned by section validation.
var (
	ErrShortSection  = errors.New("section shorter than its header")
	ErrSectionLength = errors.New("section length does not match data")
	ErrCRC           = errors.New("section CRC mismatch")
	ErrSyntax        = errors.New("section syntax indicator not set")
	ErrTableID       = errors.New("unexpected table id")
	ErrSectionNumber = errors.New("section number exceeds last section number")
	ErrMalformed     = errors.New("malformed section data")
)

// Section is one complete section as it appeared on the wire, from table_id up
// to and including the CRC. A Section produced by an Assembler is owned by
// whoever receives it; the Assembler keeps no reference.
type Section []byte

// SectionLen returns the section_length field of a section header in b. b must
// hold at least HeaderLen bytes.
func SectionLen(b []byte) int {
	return int(b[1]&0x0f)<<8 | int(b[2])
}

// TableID returns the table_id.
func (s Section) TableID() uint8 { return s[0] }

// SyntaxIndicator returns the section_syntax_indicator.
func (s Section) SyntaxIndicator() bool { return s[1]&0x80 != 0 }

// Length returns the section_length field.
func (s Section) Length() int { return SectionLen(s) }

// TableIDExt returns the table_id_extension, i.e. the transport stream id of a
// PAT, the program number of a PMT or the transport stream id of an SDT.
func (s Section) TableIDExt() uint16 { return uint16(s[3])<<8 | uint16(s[4]) }

// Version returns the 5 bit version_number.
func (s Section) Version() uint8 { return (s[5] >> 1) & 0x1f }

// CurrentNext returns the current_next_indicator.
func (s Section) CurrentNext() bool { return s[5]&0x01 != 0 }

// Number returns the section_number.
func (s Section) Number() uint8 { return s[6] }

// LastNumber returns the last_section_number.
func (s Section) LastNumber() uint8 { return s[7] }

// Payload returns the table data between the long-form header and the CRC.
func (s Section) Payload() []byte { return s[SyntaxHeaderLen : len(s)-CRCLen] }

// Validate checks the structure of s: its declared length must match its data
// and, for long-form sections, the header must be present, the section number
// must be within range and the CRC must check.
func Validate(s Section) error {
	if len(s) < HeaderLen {
		return ErrShortSection
	}
	if HeaderLen+s.Length() != len(s) {
		return errors.Wrapf(ErrSectionLength, "declared %d, have %d", s.Length(), len(s)-HeaderLen)
	}
	if !s.SyntaxIndicator() {
		return nil
	}
	if len(s) < SyntaxHeaderLen+CRCLen {
		return ErrShortSection
	}
	if s.Number() > s.LastNumber() {
		return ErrSectionNumber
	}
	if !CheckCRC(s) {
		return ErrCRC
	}
	return nil
}

// checkLongForm checks that s carries table id id and the syntax indicator.
func checkLongForm(s Section, id uint8) error {
	if s.TableID() != id {
		return errors.Wrapf(ErrTableID, "got 0x%02x, want 0x%02x", s.TableID(), id)
	}
	if !s.SyntaxIndicator() {
		return ErrSyntax
	}
	if len(s) < SyntaxHeaderLen+CRCLen {
		return ErrShortSection
	}
	return nil
}
