/*
DESCRIPTION
  generator.go writes a paced MPEG-TS test signal with periodic tables and
  injected continuity errors.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ausocean/tsmon/container/mts"
	"github.com/ausocean/tsmon/container/mts/pes"
	"github.com/ausocean/utils/logging"
)

// Generator timing.
const (
	psiInterval    = time.Second
	injectInterval = 15 * time.Second
	maxInjected    = 10 // Exclusive upper bound of errors per injection.
	pesUnits       = 20 // Units per PES packet.
	ptsRate        = 90000
	ptsDelay       = ptsRate / 10 // PTS lead over the PCR.
)

// unitsPerDatagram is the number of units in each datagram sent.
const unitsPerDatagram = 7

// batcher groups units into datagrams of unitsPerDatagram units. Each write
// to dst is one datagram.
type batcher struct {
	dst  io.Writer
	buf  []byte
	sent uint64
}

func newBatcher(dst io.Writer) *batcher {
	return &batcher{dst: dst, buf: make([]byte, 0, unitsPerDatagram*mts.PacketSize)}
}

// Write takes one or more units, sending a datagram each time one fills.
func (b *batcher) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		free := cap(b.buf) - len(b.buf)
		if free > len(p) {
			free = len(p)
		}
		b.buf = append(b.buf, p[:free]...)
		p = p[free:]
		if len(b.buf) == cap(b.buf) {
			err := b.Flush()
			if err != nil {
				return n - len(p), err
			}
		}
	}
	return n, nil
}

// Flush sends any buffered units as a short datagram.
func (b *batcher) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	_, err := b.dst.Write(b.buf)
	b.buf = b.buf[:0]
	if err != nil {
		return fmt.Errorf("could not send datagram: %w", err)
	}
	b.sent++
	return nil
}

// pending reports whether units are waiting for a full datagram.
func (b *batcher) pending() bool { return len(b.buf) != 0 }

// Limits stop a run. Zero values do not limit.
type Limits struct {
	Duration time.Duration
	Count    uint64
}

// Generator writes the stream described by a Layout.
type Generator struct {
	log      logging.Logger
	layout   *Layout
	out      *batcher
	w        *mts.Writer
	bitrate  float64
	start    time.Time
	schedule []Stream
	next     int
	units    map[uint16]int
	pcr      map[uint16]bool
	injected int

	intn  func(int) int
	now   func() time.Time
	sleep func(time.Duration)
}

// NewGenerator returns a Generator sending l to dst at bitrate bits per
// second. intn chooses the number of errors for each injection. Options are
// applied to the underlying mts.Writer.
func NewGenerator(dst io.Writer, l *Layout, bitrate float64, intn func(int) int, log logging.Logger, options ...func(*mts.Writer) error) (*Generator, error) {
	if bitrate <= 0 {
		return nil, fmt.Errorf("invalid bitrate %v", bitrate)
	}
	g := &Generator{
		log:      log,
		layout:   l,
		out:      newBatcher(dst),
		bitrate:  bitrate,
		schedule: schedule(l),
		units:    make(map[uint16]int),
		pcr:      make(map[uint16]bool),
		intn:     intn,
		now:      time.Now,
		sleep:    time.Sleep,
	}
	for _, p := range l.Programs {
		g.pcr[p.Streams[0].PID] = true
	}
	var err error
	g.w, err = mts.NewWriter(g.out, log, options...)
	if err != nil {
		return nil, fmt.Errorf("could not create writer: %w", err)
	}
	return g, nil
}

// schedule spreads the streams of l over one cycle in proportion to their
// weights, interleaving them rather than sending each in a burst.
func schedule(l *Layout) []Stream {
	var streams []Stream
	total := 0
	for _, p := range l.Programs {
		for _, s := range p.Streams {
			streams = append(streams, s)
			total += s.Weight
		}
	}
	credit := make([]int, len(streams))
	out := make([]Stream, 0, total)
	for len(out) < total {
		best := 0
		for i, s := range streams {
			credit[i] += s.Weight
			if credit[i] > credit[best] {
				best = i
			}
		}
		credit[best] -= total
		out = append(out, streams[best])
	}
	return out
}

// Count returns the number of units written.
func (g *Generator) Count() uint64 { return g.w.Count() }

// Injected returns the number of continuity errors injected.
func (g *Generator) Injected() int { return g.injected }

// Run writes the stream until ctx is done or a limit is reached.
func (g *Generator) Run(ctx context.Context, lim Limits) error {
	start := g.now()
	g.start = start
	nextPSI := start
	nextInject := start.Add(injectInterval)
	g.log.Info("generator started", "bitrate", g.bitrate, "programs", len(g.layout.Programs))

	for ctx.Err() == nil {
		now := g.now()
		if lim.Duration > 0 && now.Sub(start) >= lim.Duration {
			break
		}
		if lim.Count > 0 && g.w.Count() >= lim.Count {
			break
		}

		if !now.Before(nextPSI) {
			err := g.writePSI()
			if err != nil {
				return err
			}
			nextPSI = nextPSI.Add(psiInterval)
		}
		if !now.Before(nextInject) {
			err := g.inject()
			if err != nil {
				return err
			}
			nextInject = nextInject.Add(injectInterval)
		}

		s := g.schedule[g.next]
		g.next = (g.next + 1) % len(g.schedule)
		err := g.writeES(s)
		if err != nil {
			return err
		}
		g.pace(start)
	}

	g.log.Info("generator stopped", "units", g.w.Count(), "injected", g.injected)
	return g.out.Flush()
}

// writePSI writes the PAT, every PMT and the SDT.
func (g *Generator) writePSI() error {
	err := g.w.WriteSection(mts.PatPid, g.layout.pat(0))
	if err != nil {
		return fmt.Errorf("could not write PAT: %w", err)
	}
	for i := range g.layout.Programs {
		p := &g.layout.Programs[i]
		err = g.w.WriteSection(p.PMT, p.pmt(0))
		if err != nil {
			return fmt.Errorf("could not write PMT for program %d: %w", p.Number, err)
		}
	}
	err = g.w.WriteSection(mts.SdtPid, g.layout.sdt(0))
	if err != nil {
		return fmt.Errorf("could not write SDT: %w", err)
	}
	return nil
}

// inject skips the counter of the video stream before each of a random
// number of its units.
func (g *Generator) inject() error {
	pid := g.layout.videoPID()
	n := g.intn(maxInjected)
	g.log.Info("injecting continuity errors", "pid", pid, "count", n, "unit", g.w.Count())
	for _, s := range g.schedule {
		if s.PID != pid {
			continue
		}
		for i := 0; i < n; i++ {
			g.w.Skip(pid, 1)
			err := g.writeES(s)
			if err != nil {
				return err
			}
			g.injected++
		}
		break
	}
	return nil
}

// writeES writes one unit of zeros on s. Every pesUnits units a PES header
// begins a new payload unit, stamped with the time since the start of the
// run. On the PCR stream of a program that unit also carries the PCR.
func (g *Generator) writeES(s Stream) error {
	var payload [mts.MaxPayloadSize]byte
	start := g.units[s.PID]%pesUnits == 0
	g.units[s.PID]++
	if !start {
		return g.unitErr(s.PID, g.w.WritePayload(s.PID, payload[:], false))
	}

	clock := uint64(g.now().Sub(g.start)/time.Millisecond) * ptsRate / 1000
	pkt := pes.Packet{
		StreamID: pes.StreamID(s.Type),
		DAI:      true,
		HasPTS:   true,
		PTS:      clock + ptsDelay,
	}
	pkt.Bytes(payload[:0])
	if g.pcr[s.PID] {
		return g.unitErr(s.PID, g.w.WritePCR(s.PID, clock, payload[:mts.MaxPCRPayloadSize], true))
	}
	return g.unitErr(s.PID, g.w.WritePayload(s.PID, payload[:], true))
}

func (g *Generator) unitErr(pid uint16, err error) error {
	if err != nil {
		return fmt.Errorf("could not write unit on PID %#x: %w", pid, err)
	}
	return nil
}

// pace sleeps after each full datagram until the configured bitrate is met.
func (g *Generator) pace(start time.Time) {
	if g.out.pending() {
		return
	}
	bits := float64(g.w.Count() * mts.PacketSize * 8)
	due := start.Add(time.Duration(bits / g.bitrate * float64(time.Second)))
	d := due.Sub(g.now())
	if d > 0 {
		g.sleep(d)
	}
}
