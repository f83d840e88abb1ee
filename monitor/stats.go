/*
DESCRIPTION
  stats.go provides the statistics aggregator and the records it produces.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package monitor

import (
	"fmt"
	"time"

	"github.com/ausocean/tsmon/container/mts"
	"github.com/ausocean/utils/bitrate"
)

// Totals are the counters kept by the monitor.
type Totals struct {
	Packets     uint64 // Packets counts every unit, including invalid and null units.
	DataPackets uint64 // DataPackets counts valid units other than null units.
	Media       uint64 // Media counts units on data-bearing channels.
	SyncErrors  uint64
	CCErrors    uint64
	TEIErrors   uint64
}

func (t Totals) sub(o Totals) Totals {
	return Totals{
		Packets:     t.Packets - o.Packets,
		DataPackets: t.DataPackets - o.DataPackets,
		Media:       t.Media - o.Media,
		SyncErrors:  t.SyncErrors - o.SyncErrors,
		CCErrors:    t.CCErrors - o.CCErrors,
		TEIErrors:   t.TEIErrors - o.TEIErrors,
	}
}

// Stats accumulates totals and splits them into intervals.
type Stats struct {
	Totals

	period time.Duration
	start  time.Time // First observation.
	last   time.Time // Start of the current interval.
	base   Totals    // Totals at the start of the current interval.

	rate    *bitrate.Calculator
	sampled time.Time // Wall time of the last rate sample.
	rolling int
}

func newStats(period time.Duration) Stats {
	return Stats{period: period, rate: bitrate.NewCalculator(), sampled: time.Now()}
}

// rollingRate returns the datagram bitrate since the previous sample. The
// calculator divides by whole wall milliseconds, so the previous value is
// returned until one has passed.
func (s *Stats) rollingRate() int {
	if time.Since(s.sampled) >= time.Millisecond {
		s.rolling = s.rate.Bitrate()
		s.sampled = time.Now()
	}
	return s.rolling
}

// begin starts the first interval at now if none has started.
func (s *Stats) begin(now time.Time) {
	if s.start.IsZero() {
		s.start, s.last = now, now
	}
}

// Due reports whether the current interval has run for a period.
func (s *Stats) Due(now time.Time) bool {
	return !s.last.IsZero() && now.Sub(s.last) >= s.period
}

// interval ends the current interval at now, returning its deltas and
// length, and starts the next.
func (s *Stats) interval(now time.Time) (Totals, time.Duration) {
	d := s.Totals.sub(s.base)
	elapsed := now.Sub(s.last)
	s.base = s.Totals
	s.last = now
	return d, elapsed
}

// rate returns the bitrate in bits per second of n units over elapsed.
func rate(n uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(n*mts.PacketSize*8) / elapsed.Seconds()
}

// Record is the statistics of one interval.
type Record struct {
	Time        time.Time
	Elapsed     time.Duration
	Bitrate     float64 // Bitrate of all units in bits per second.
	DataBitrate float64 // Bitrate of valid non-null units in bits per second.
	Delta       Totals  // Counts for the interval.
	Totals      Totals  // Counts since the start.
	Services    int
	Primary     string // Primary is the name of the lowest numbered service.
	Scrambled   bool
	Idle        time.Duration // Idle is the time since the last datagram.
	Rolling     int           // Rolling is the datagram bitrate estimate in bits per second.
	Source      string
}

// Label names the stream: the service name of a single program stream,
// "unknown" if it is unnamed, or MPTS and the service count.
func (r Record) Label() string {
	switch {
	case r.Services == 0:
		return ""
	case r.Services > 1:
		return fmt.Sprintf("MPTS%d", r.Services)
	case r.Primary == "":
		return "unknown"
	}
	return r.Primary
}

// Summary is the statistics of a whole run.
type Summary struct {
	Start       time.Time
	End         time.Time
	Bitrate     float64
	DataBitrate float64
	Totals      Totals
	Services    int
	Source      string
}
