/*
NAME
  pat.go

DESCRIPTION
  pat.go provides parsing and validation of program association tables.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import "github.com/pkg/errors"

// PATLen is the length of one program entry.
const PATLen = 4

// Program is one PAT entry. Program number 0 maps the network PID.
type Program struct {
	Number uint16
	PID    uint16
}

// Programs returns the program entries of a PAT section in order.
func Programs(s Section) []Program {
	p := s.Payload()
	progs := make([]Program, 0, len(p)/PATLen)
	for ; len(p) >= PATLen; p = p[PATLen:] {
		progs = append(progs, Program{
			Number: uint16(p[0])<<8 | uint16(p[1]),
			PID:    uint16(p[2]&0x1f)<<8 | uint16(p[3]),
		})
	}
	return progs
}

// ValidatePATSection checks that s is structurally a PAT section.
func ValidatePATSection(s Section) error {
	if err := checkLongForm(s, PATTableID); err != nil {
		return err
	}
	if len(s.Payload())%PATLen != 0 {
		return errors.Wrap(ErrMalformed, "program loop not a multiple of 4 bytes")
	}
	return nil
}

// ValidatePAT checks a complete PAT: every section must be valid and no
// program number may be mapped to two different PIDs.
func ValidatePAT(t *Table) error {
	seen := make(map[uint16]uint16)
	for _, s := range t.Sections() {
		if err := ValidatePATSection(s); err != nil {
			return errors.Wrapf(err, "section %d", s.Number())
		}
		for _, p := range Programs(s) {
			if pid, ok := seen[p.Number]; ok && pid != p.PID {
				return errors.Wrapf(ErrMalformed, "program %d mapped to PIDs %d and %d", p.Number, pid, p.PID)
			}
			seen[p.Number] = p.PID
		}
	}
	return nil
}

// TablePrograms returns the program entries of every section of t in order.
func TablePrograms(t *Table) []Program {
	var progs []Program
	for _, s := range t.Sections() {
		progs = append(progs, Programs(s)...)
	}
	return progs
}

// FindProgram looks up the entry for program number n in t.
func FindProgram(t *Table, n uint16) (Program, bool) {
	for _, s := range t.Sections() {
		for _, p := range Programs(s) {
			if p.Number == n {
				return p, true
			}
		}
	}
	return Program{}, false
}
