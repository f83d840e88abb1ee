/*
DESCRIPTION
  udp_test.go provides testing for the UDP source.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package input

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/ausocean/tsmon/protocol/rtp"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial returns a connection sending to the socket of u.
func dial(t *testing.T, u *UDP) net.Conn {
	conn, err := net.Dial("udp4", u.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestUDP(t *testing.T) {
	u, err := NewUDP("127.0.0.1", 0, "", 200*time.Millisecond, (*logging.TestLogger)(t))
	require.NoError(t, err)
	defer u.Close()

	conn := dial(t, u)
	want := bytes.Repeat([]byte{0x47, 0x1f, 0xff, 0x10}, 47)
	_, err = conn.Write(want)
	require.NoError(t, err)

	before := time.Now()
	d, err := u.Next()
	require.NoError(t, err)
	assert.Equal(t, want, d.Data)
	assert.False(t, d.Time.Before(before.Add(-time.Second)))

	_, err = u.Next()
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestUDPRTP(t *testing.T) {
	u, err := NewUDP("127.0.0.1", 0, "", time.Second, (*logging.TestLogger)(t), RTP())
	require.NoError(t, err)
	defer u.Close()

	conn := dial(t, u)
	payload := bytes.Repeat([]byte{0x47}, 188)
	for _, seq := range []uint16{10, 11, 14} {
		_, err = conn.Write((&rtp.Packet{Version: 2, PacketType: 33, Sync: seq, Payload: payload}).Bytes(nil))
		require.NoError(t, err)
	}
	_, err = conn.Write([]byte{0x47, 0x00})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		d, err := u.Next()
		require.NoError(t, err)
		assert.Equal(t, payload, d.Data)
	}
	assert.Equal(t, uint64(2), u.Lost())

	_, err = u.Next()
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestFindInterface(t *testing.T) {
	ifi, err := findInterface("")
	require.NoError(t, err)
	assert.Nil(t, ifi)

	_, err = findInterface("no-such-interface0")
	assert.Error(t, err)

	_, err = findInterface("192.0.2.123")
	assert.Error(t, err)
}
