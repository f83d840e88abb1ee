/*
NAME
  descriptor_test.go

DESCRIPTION
  descriptor_test.go provides testing for descriptor loops and the PMT and SDT
  parsing that depends on them.

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

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

const (
	errNotExpectedOut = "Did not get expected output: \ngot : %v, \nwant: %v"
	errUnexpectedErr  = "Unexpected error: %v\n"
)

func TestDescriptors(t *testing.T) {
	loop := []byte{
		0x6a, 0x01, 0x00, // AC-3 descriptor.
		0x0a, 0x04, 'e', 'n', 'g', 0x00, // ISO 639 language descriptor.
	}
	got, err := Descriptors(loop)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	want := []Descriptor{
		{Tag: AC3DescriptorTag, Len: 1, Data: []byte{0x00}},
		{Tag: 0x0a, Len: 4, Data: []byte{'e', 'n', 'g', 0x00}},
	}
	if !cmp.Equal(got, want) {
		t.Errorf(errNotExpectedOut, got, want)
	}

	_, err = Descriptors(loop[:len(loop)-1])
	if !errors.Is(err, ErrMalformed) {
		t.Errorf(errNotExpectedOut, err, ErrMalformed)
	}
}

func TestDescriptorBytes(t *testing.T) {
	d := NewDescriptor(SubtitlingDescriptorTag, []byte{1, 2, 3})
	want := []byte{SubtitlingDescriptorTag, 3, 1, 2, 3}
	if got := d.Bytes(); !bytes.Equal(got, want) {
		t.Errorf(errNotExpectedOut, got, want)
	}
}

func TestParsePMT(t *testing.T) {
	s := NewPMTPSI(1, 4, 0x101,
		StreamSpecificData{StreamType: StreamTypeMPEG2Video, PID: 0x101},
		StreamSpecificData{StreamType: StreamTypeMPEG2Audio, PID: 0x102},
		StreamSpecificData{
			StreamType:  StreamTypePrivate,
			PID:         0x103,
			Descriptors: []Descriptor{NewDescriptor(SubtitlingDescriptorTag, []byte{'e', 'n', 'g', 0x10, 0x00, 0x01, 0x00, 0x01})},
		},
	).Bytes()

	if err := ValidatePMTSection(s); err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}

	got, err := ParsePMT(s)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	want := &ProgramMap{
		Program: 1,
		Version: 4,
		Streams: []ElementaryStream{
			{Type: StreamTypeMPEG2Video, PID: 0x101},
			{Type: StreamTypeMPEG2Audio, PID: 0x102},
			{Type: StreamTypePrivate, PID: 0x103, Tags: []uint8{SubtitlingDescriptorTag}},
		},
	}
	if !cmp.Equal(got, want) {
		t.Errorf(errNotExpectedOut, got, want)
	}
}

func TestValidatePMTSection(t *testing.T) {
	good := NewPMTPSI(1, 0, 0x101, StreamSpecificData{StreamType: StreamTypeH264, PID: 0x101}).Bytes()

	overrun := append(Section{}, good...)
	overrun[len(overrun)-CRCLen-1] = 0x20 // ES info length beyond section.
	UpdateCRC(overrun)

	multi := append(Section{}, good...)
	multi[7] = 1
	UpdateCRC(multi)

	pat := NewPATPSI(1, 0, Program{1, 0x100}).Bytes()

	tests := []struct {
		name string
		s    Section
		want error
	}{
		{"valid", good, nil},
		{"overrun", overrun, ErrMalformed},
		{"multi section", multi, ErrSectionNumber},
		{"wrong table", pat, ErrTableID},
	}
	for _, test := range tests {
		if err := ValidatePMTSection(test.s); !errors.Is(err, test.want) {
			t.Errorf("%s: "+errNotExpectedOut, test.name, err, test.want)
		}
	}
}

func TestSDT(t *testing.T) {
	s := NewSDTPSI(1, 2, 0,
		SDTService{
			ID:                  1,
			EITPresentFollowing: true,
			RunningStatus:       4,
			Scrambled:           true,
			Descriptors:         []Descriptor{NewServiceDescriptor(0x01, []byte("Prov"), []byte("Test"))},
		},
		SDTService{ID: 2},
	).Bytes()

	if err := Validate(s); err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	if err := ValidateSDTSection(s); err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	if got := OriginalNetworkID(s); got != 2 {
		t.Errorf(errNotExpectedOut, got, 2)
	}

	svcs, err := SDTServices(s)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	if len(svcs) != 2 {
		t.Fatalf("expected 2 services, got %d", len(svcs))
	}
	first := svcs[0]
	if first.ID != 1 || !first.Scrambled || first.RunningStatus != 4 || !first.EITPresentFollowing || first.EITSchedule {
		t.Errorf("unexpected service fields: %+v", first)
	}
	if svcs[1].ID != 2 || svcs[1].Scrambled || len(svcs[1].Descriptors) != 0 {
		t.Errorf("unexpected service fields: %+v", svcs[1])
	}

	sd, err := ParseServiceDescriptor(first.Descriptors[0])
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	want := ServiceDescriptor{Type: 0x01, Provider: []byte("Prov"), Name: []byte("Test")}
	if !cmp.Equal(sd, want) {
		t.Errorf(errNotExpectedOut, sd, want)
	}
}

func TestParseServiceDescriptorMalformed(t *testing.T) {
	tests := []Descriptor{
		NewDescriptor(ServiceDescriptorTag, []byte{0x01}),
		NewDescriptor(ServiceDescriptorTag, []byte{0x01, 0x05, 'a'}),
		NewDescriptor(ServiceDescriptorTag, []byte{0x01, 0x00, 0x04, 'a'}),
	}
	for i, d := range tests {
		if _, err := ParseServiceDescriptor(d); !errors.Is(err, ErrMalformed) {
			t.Errorf("test %d: "+errNotExpectedOut, i, err, ErrMalformed)
		}
	}
	if _, err := ParseServiceDescriptor(NewDescriptor(0x4d, nil)); err == nil {
		t.Error("expected error for wrong tag")
	}
}
