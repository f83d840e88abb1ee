/*
DESCRIPTION
  report_test.go provides testing for the console, CSV and metrics
  reporters.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/tsmon/monitor"
)

var when = time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)

func record() monitor.Record {
	return monitor.Record{
		Time:        when,
		Elapsed:     10 * time.Second,
		Bitrate:     3800000,
		DataBitrate: 3500000,
		Delta:       monitor.Totals{Packets: 25265, DataPackets: 23271, CCErrors: 2},
		Totals:      monitor.Totals{Packets: 50530, DataPackets: 46542, CCErrors: 5, SyncErrors: 1},
		Services:    1,
		Primary:     "Test",
		Idle:        10 * time.Millisecond,
		Source:      "239.1.1.1:1234",
	}
}

func TestConsoleReport(t *testing.T) {
	ts := when.Format(TimeFormat)
	tests := []struct {
		name string
		edit func(*monitor.Record)
		want string
	}{
		{
			name: "single service",
			edit: func(*monitor.Record) {},
			want: ts + " [239.1.1.1:1234|Test] OK bitrate 3.80 (data: 3.50) Mbps cc=2 sync=0 tei=0\n",
		},
		{
			name: "scrambled unnamed",
			edit: func(r *monitor.Record) { r.Primary, r.Scrambled = "", true },
			want: ts + " [239.1.1.1:1234|unknown$] OK bitrate 3.80 (data: 3.50) Mbps cc=2 sync=0 tei=0\n",
		},
		{
			name: "mpts",
			edit: func(r *monitor.Record) { r.Services = 2 },
			want: ts + " [239.1.1.1:1234|MPTS2] OK bitrate 3.80 (data: 3.50) Mbps cc=2 sync=0 tei=0\n",
		},
		{
			name: "no services and idle",
			edit: func(r *monitor.Record) { r.Services, r.Idle = 0, time.Second },
			want: ts + " [239.1.1.1:1234] DEAD bitrate 3.80 (data: 3.50) Mbps cc=2 sync=0 tei=0\n",
		},
		{
			name: "continuity errors",
			edit: func(r *monitor.Record) { r.Totals.CCErrors = 11 },
			want: ts + " [239.1.1.1:1234|Test] CC bitrate 3.80 (data: 3.50) Mbps cc=2 sync=0 tei=0\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := record()
			test.edit(&r)
			require.NoError(t, NewConsole(&buf).Report(r))
			assert.Equal(t, test.want, buf.String())
		})
	}
}

func TestConsoleFinish(t *testing.T) {
	var buf bytes.Buffer
	err := NewConsole(&buf).Finish(monitor.Summary{
		Bitrate:  1e6,
		Totals:   monitor.Totals{Packets: 42, CCErrors: 3},
		Services: 1,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Final stats:\n"))
	assert.Contains(t, out, "  total bitrate: 1.00 Mbps\n")
	assert.Contains(t, out, "  total packets: 42\n")
	assert.Contains(t, out, "  cc errors: 3\n")
}

// closeBuffer records whether it was closed.
type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closeBuffer) Close() error {
	b.closed = true
	return nil
}

func TestCSV(t *testing.T) {
	var buf closeBuffer
	c, err := NewCSV(&buf)
	require.NoError(t, err)
	require.NoError(t, c.Report(record()))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Timestamp,Bitrate (kbps),Data Bitrate (kbps),CC Errors,Sync Errors,TEI Errors,Total Packets,Data Packets", strings.Join(rows[0], ","))
	assert.Equal(t, []string{
		strconv.FormatInt(when.Unix(), 10), "3800.00", "3500.00", "5", "1", "0", "25265", "23271",
	}, rows[1])

	require.NoError(t, c.Finish(monitor.Summary{}))
	assert.True(t, buf.closed)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	r := record()
	require.NoError(t, m.Report(r))
	require.NoError(t, m.Report(r))

	assert.Equal(t, float64(2*r.Delta.Packets), testutil.ToFloat64(m.packets))
	assert.Equal(t, float64(2*r.Delta.DataPackets), testutil.ToFloat64(m.dataPackets))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.ccErrors))
	assert.Equal(t, 3800000.0, testutil.ToFloat64(m.bitrate))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.services))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	require.NoError(t, m.Finish(monitor.Summary{}))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.bitrate))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")
}
