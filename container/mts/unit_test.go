/*
NAME
  unit_test.go

DESCRIPTION
  unit_test.go provides testing for unit parsing.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	full := bytes.Repeat([]byte{0xaa}, MaxPayloadSize)

	tests := []struct {
		name        string
		pkt         Packet
		wantPayload int
	}{
		{
			name:        "payload only",
			pkt:         Packet{PID: 0x100, PUSI: true, CC: 7, AFC: HasPayload, Payload: full},
			wantPayload: MaxPayloadSize,
		},
		{
			name:        "adaptation and payload",
			pkt:         Packet{PID: 0x1ffe, CC: 15, AFC: HasPayload | HasAdaptationField, TSC: 2, Payload: full[:100]},
			wantPayload: 100,
		},
		{
			name: "adaptation only",
			pkt:  Packet{PID: 0x20, CC: 3, AFC: HasAdaptationField, DI: true},
		},
	}

	for _, test := range tests {
		u, err := ParseUnit(test.pkt.Bytes(nil))
		require.NoError(t, err, test.name)
		assert.Equal(t, test.pkt.PID, u.PID, test.name)
		assert.Equal(t, test.pkt.CC, u.CC, test.name)
		assert.Equal(t, test.pkt.PUSI, u.PUSI, test.name)
		assert.Equal(t, test.pkt.AFC, u.AFC, test.name)
		assert.Equal(t, test.pkt.TSC, u.TSC, test.name)
		assert.Equal(t, test.pkt.DI, u.Discontinuity, test.name)
		assert.Len(t, u.Payload, test.wantPayload, test.name)
		assert.Equal(t, test.wantPayload != 0, u.HasPayload(), test.name)
	}
}

func TestParseUnitErrors(t *testing.T) {
	pkt := Packet{PID: 0x100, AFC: HasPayload | HasAdaptationField, TEI: true}
	b := pkt.Bytes(nil)

	u, err := ParseUnit(b)
	require.NoError(t, err)
	assert.True(t, u.TEI)

	b[AdaptationIdx] = 184
	u, err = ParseUnit(b)
	assert.True(t, errors.Is(err, ErrAdaptationLen))
	assert.Equal(t, uint16(0x100), u.PID)

	b[0] = 0x48
	_, err = ParseUnit(b)
	assert.True(t, errors.Is(err, ErrSync))

	_, err = ParseUnit(b[:100])
	assert.True(t, errors.Is(err, ErrInvalidLen))
}
