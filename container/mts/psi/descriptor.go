/*
NAME
  descriptor.go

DESCRIPTION
  descriptor.go provides encoding and parsing of descriptor loops.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import "github.com/pkg/errors"

// DescDefLen is the length of a descriptor header.
const DescDefLen = 2

// Descriptor tags.
const (
	ServiceDescriptorTag    = 0x48
	TeletextDescriptorTag   = 0x56
	SubtitlingDescriptorTag = 0x59
	AC3DescriptorTag        = 0x6a
	EAC3DescriptorTag       = 0x7a
	ExtensionDescriptorTag  = 0x7f
)

// Descriptor is a single tag-length-value descriptor.
type Descriptor struct {
	Tag  byte   // Descriptor tag
	Len  byte   // Descriptor length
	Data []byte // Descriptor data
}

// NewDescriptor returns a descriptor with tag and data and its length set.
func NewDescriptor(tag byte, data []byte) Descriptor {
	return Descriptor{Tag: tag, Len: byte(len(data)), Data: data}
}

// Bytes outputs a byte slice representation of the Descriptor.
func (d *Descriptor) Bytes() []byte {
	out := make([]byte, DescDefLen, DescDefLen+len(d.Data))
	out[0] = d.Tag
	out[1] = d.Len
	out = append(out, d.Data...)
	return out
}

// Descriptors parses a descriptor loop. The returned descriptors share memory
// with b. An error is returned if a descriptor overruns b.
func Descriptors(b []byte) ([]Descriptor, error) {
	var descs []Descriptor
	for len(b) != 0 {
		if len(b) < DescDefLen {
			return descs, errors.Wrap(ErrMalformed, "truncated descriptor header")
		}
		l := int(b[1])
		if DescDefLen+l > len(b) {
			return descs, errors.Wrapf(ErrMalformed, "descriptor 0x%02x overruns loop", b[0])
		}
		descs = append(descs, Descriptor{Tag: b[0], Len: b[1], Data: b[DescDefLen : DescDefLen+l]})
		b = b[DescDefLen+l:]
	}
	return descs, nil
}

func descriptorLoopBytes(descs []Descriptor) []byte {
	var out []byte
	for i := range descs {
		out = append(out, descs[i].Bytes()...)
	}
	return out
}
