/*
DESCRIPTION
  main_test.go provides testing for the tsmon command.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"bytes"
	"encoding/csv"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/tsmon/container/mts"
	"github.com/ausocean/tsmon/container/mts/psi"
	"github.com/ausocean/tsmon/monitor/config"
	"github.com/ausocean/tsmon/monitor/report"
	"github.com/ausocean/utils/logging"
)

func TestSettingsFlags(t *testing.T) {
	v := viper.New()
	cmd := newRootCmd(v)
	require.NoError(t, cmd.Flags().Parse([]string{"-m", "239.1.1.1", "-qq", "-c", "-l", "-", "--rtp"}))

	vars := settings(v)
	assert.Equal(t, "239.1.1.1", vars[config.KeyMulticast])
	assert.Equal(t, "2", vars[config.KeyQuiet])
	assert.Equal(t, "true", vars[config.KeyShowCC])
	assert.Equal(t, "false", vars[config.KeyShowTimes])
	assert.Equal(t, "true", vars[config.KeyRTP])
	assert.Equal(t, "-", vars[config.KeyCSVPath])
	assert.Equal(t, "1234", vars[config.KeyPort])
	assert.Equal(t, "info", vars[config.KeyLogging])
	assert.Len(t, vars, len(keys))
}

func TestSettingsEnv(t *testing.T) {
	t.Setenv("TSMON_PORT", "5000")
	t.Setenv("TSMON_GAP_THRESHOLD", "250")

	v := viper.New()
	cmd := newRootCmd(v)
	require.NoError(t, cmd.Flags().Parse([]string{"-p", "6000"}))

	vars := settings(v)
	assert.Equal(t, "6000", vars[config.KeyPort], "flag should override environment")
	assert.Equal(t, "250", vars[config.KeyGapThreshold])
}

func TestSettingsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("multicast: 239.2.2.2\nshow-times: true\nstats-period: 5\n"), 0o644))

	v := viper.New()
	cmd := newRootCmd(v)
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path}))
	require.NoError(t, readConfig(v))

	vars := settings(v)
	assert.Equal(t, "239.2.2.2", vars[config.KeyMulticast])
	assert.Equal(t, "true", vars[config.KeyShowTimes])
	assert.Equal(t, "5", vars[config.KeyStatsPeriod])

	c := &config.Config{Logger: (*logging.TestLogger)(t)}
	c.Update(vars)
	require.NoError(t, c.Validate())
	assert.Equal(t, 5*time.Second, c.Period())
}

func TestSettingsMissingConfigFile(t *testing.T) {
	v := viper.New()
	cmd := newRootCmd(v)
	require.NoError(t, cmd.Flags().Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))
	assert.Error(t, readConfig(v))
}

func TestRunNoInput(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrNoInput)
}

// writeCapture writes an Ethernet capture of UDP datagrams to port 1234.
func writeCapture(t *testing.T, path string, data [][]byte, times []time.Time) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	for i, d := range data {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
			DstMAC:       net.HardwareAddr{0x01, 0x00, 0x5e, 0x01, 0x01, 0x01},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      16,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IPv4(10, 0, 0, 1).To4(),
			DstIP:    net.IPv4(239, 1, 1, 1).To4(),
		}
		udp := &layers.UDP{SrcPort: 40000, DstPort: 1234}
		require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(d)))
		b := buf.Bytes()
		require.NoError(t, w.WritePacket(gopacket.CaptureInfo{Timestamp: times[i], CaptureLength: len(b), Length: len(b)}, b))
	}
}

func TestRunPcap(t *testing.T) {
	dir := t.TempDir()

	var ts bytes.Buffer
	w, err := mts.NewWriter(&ts, (*logging.TestLogger)(t))
	require.NoError(t, err)
	require.NoError(t, w.WriteSection(mts.PatPid, psi.NewPATPSI(1, 0, psi.Program{Number: 1, PID: 0x100}).Bytes()))
	for i := 0; i < 6; i++ {
		require.NoError(t, w.WritePayload(0x101, make([]byte, mts.MaxPayloadSize), i == 0))
	}
	first := ts.Bytes()
	second := append([]byte(nil), first[mts.PacketSize:]...)

	start := time.Unix(1700000000, 0)
	capPath := filepath.Join(dir, "feed.pcap")
	writeCapture(t, capPath, [][]byte{first, second}, []time.Time{start, start.Add(1500 * time.Millisecond)})

	csvPath := filepath.Join(dir, "stats.csv")
	var out, errOut bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--pcap", capPath, "-q", "-l", csvPath, "--stats-period", "1"})
	require.NoError(t, cmd.Execute())

	assert.Empty(t, out.String(), "quiet run should not print statistics")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, report.Header, rows[0])
	// The second datagram repeats units, so its first video unit breaks
	// continuity.
	assert.Equal(t, "1700000001", rows[1][0])
	assert.Equal(t, "1", rows[1][3])
	assert.Equal(t, "13", rows[1][6])
}
