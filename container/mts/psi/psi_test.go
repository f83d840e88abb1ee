/*
NAME
  psi_test.go

DESCRIPTION
  psi_test.go provides testing for section encoding and validation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

// Std PSI in bytes form
var (
	standardPatBytes = []byte{
		// table header
		0x00, // table id
		0xb0, // section syntax indicator:1|private bit:1|reserved:2|section length:2|more bytes...:2
		0x0d, // more bytes...

		// syntax section
		0x00, 0x01, // table id extension
		0xc1, // reserved bits:2|version:5|use now:1 1100 0001
		0x00, // section number
		0x00, // last section number
		// table data
		0x00, 0x01, // Program number
		0xf0, 0x00, // reserved:3|program map PID:13

		0x2a, 0xb1, 0x04, 0xb2, // CRC
	}
	standardPmtBytes = []byte{
		// table header
		0x02, // table id
		0xb0, // section syntax indicator:1|private bit:1|reserved:2|section length:2|more bytes...:2
		0x12, // more bytes...

		// syntax section
		0x00, 0x01, // table id extension
		0xc1, // reserved bits:3|version:5|use now:1
		0x00, // section number
		0x00, // last section number
		// table data
		0xe1, 0x00, // reserved:3|PCR PID:13
		0xf0, 0x00, // reserved:4|unused:2|program info length:10
		// elementary stream info data
		0x1b,       // stream type
		0xe1, 0x00, // reserved:3|elementary PID:13
		0xf0, 0x00, // reserved:4|unused:2|ES info length:10

		0x15, 0xbd, 0x4d, 0x56, // CRC
	}
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		psi  *PSI
		want []byte
	}{
		{
			name: "pat",
			psi:  NewPATPSI(1, 0, Program{Number: 1, PID: 0x1000}),
			want: standardPatBytes,
		},
		{
			name: "pmt",
			psi:  NewPMTPSI(1, 0, 0x0100, StreamSpecificData{StreamType: StreamTypeH264, PID: 0x0100}),
			want: standardPmtBytes,
		},
	}

	for _, test := range tests {
		got := test.psi.Bytes()
		if !bytes.Equal(got, test.want) {
			t.Errorf("did not get expected result for %s.\n Got: %#v\n Want: %#v\n", test.name, []byte(got), test.want)
		}
	}
}

func TestSectionFields(t *testing.T) {
	s := NewPATPSI(0x1234, 7, Program{Number: 1, PID: 0x100}).Bytes()
	s[6], s[7] = 1, 2
	UpdateCRC(s)

	if s.TableID() != PATTableID {
		t.Errorf("unexpected table id: %d", s.TableID())
	}
	if !s.SyntaxIndicator() {
		t.Error("expected syntax indicator")
	}
	if s.TableIDExt() != 0x1234 {
		t.Errorf("unexpected table id extension: 0x%x", s.TableIDExt())
	}
	if s.Version() != 7 {
		t.Errorf("unexpected version: %d", s.Version())
	}
	if !s.CurrentNext() {
		t.Error("expected current_next_indicator")
	}
	if s.Number() != 1 || s.LastNumber() != 2 {
		t.Errorf("unexpected section numbers: %d/%d", s.Number(), s.LastNumber())
	}
	if s.Length() != len(s)-HeaderLen {
		t.Errorf("unexpected length: %d", s.Length())
	}
	if !bytes.Equal(s.Payload(), []byte{0x00, 0x01, 0xe1, 0x00}) {
		t.Errorf("unexpected payload: %v", s.Payload())
	}
}

func TestValidate(t *testing.T) {
	good := func() Section { return NewPATPSI(1, 0, Program{Number: 1, PID: 0x100}).Bytes() }

	tests := []struct {
		name   string
		mutate func(Section) Section
		want   error
	}{
		{name: "valid", mutate: func(s Section) Section { return s }},
		{name: "short", mutate: func(s Section) Section { return s[:2] }, want: ErrShortSection},
		{name: "truncated", mutate: func(s Section) Section { return s[:len(s)-1] }, want: ErrSectionLength},
		{
			name:   "bad crc",
			mutate: func(s Section) Section { s[len(s)-1] ^= 0xff; return s },
			want:   ErrCRC,
		},
		{
			name: "section number",
			mutate: func(s Section) Section {
				s[6] = 3
				UpdateCRC(s)
				return s
			},
			want: ErrSectionNumber,
		},
		{
			name:   "short form",
			mutate: func(s Section) Section { return Section{0x70, 0x70, 0x01, 0x00} },
		},
	}

	for _, test := range tests {
		err := Validate(test.mutate(good()))
		if !errors.Is(err, test.want) {
			t.Errorf("did not get expected error for %s.\n Got: %v\n Want: %v\n", test.name, err, test.want)
		}
	}
}

func TestCheckCRC(t *testing.T) {
	s := AddCRC([]byte{0x00, 0xb0, 0x0d, 0x00, 0x01, 0xc1, 0x00, 0x00, 0x00, 0x01, 0xf0, 0x00})
	if !bytes.Equal(s, standardPatBytes) {
		t.Fatalf("unexpected CRC: %#v", s[len(s)-CRCLen:])
	}
	if !CheckCRC(s) {
		t.Error("CRC did not check")
	}
	s[4]++
	if CheckCRC(s) {
		t.Error("CRC checked after corruption")
	}
}
