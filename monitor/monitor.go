/*
NAME
  monitor.go

DESCRIPTION
  monitor.go provides the Monitor, which follows the protocol state of a
  transport stream: continuity per PID, section reassembly, PAT, PMT and SDT
  tables and the services they describe, and reports statistics at a fixed
  cadence.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package monitor provides a live MPEG-TS monitor.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ausocean/tsmon/container/mts"
	"github.com/ausocean/tsmon/container/mts/psi"
	"github.com/ausocean/tsmon/input"
	"github.com/ausocean/tsmon/monitor/config"
	"github.com/ausocean/utils/logging"
)

// Reporter consumes the statistics of a Monitor.
type Reporter interface {
	// Report is called once per statistics period.
	Report(Record) error

	// Finish is called once when the monitor stops.
	Finish(Summary) error
}

// Monitor holds the whole protocol state of one transport stream. It is not
// safe for concurrent use; Run drives it from a single goroutine.
type Monitor struct {
	cfg *config.Config
	log logging.Logger
	id  uuid.UUID

	channels *Channels
	pat      *psi.VersionedTable
	sdt      *psi.VersionedTable
	services *Services
	stats    Stats

	reporters []Reporter
	observer  func(Event)
	updates   <-chan map[string]string

	lastRecv time.Time // Time of the last datagram.
	clock    time.Time // Latest time seen, from datagrams or ticks.
	source   string
	now      func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor) error

// WithReporter adds a reporter that receives every record.
func WithReporter(r Reporter) Option {
	return func(m *Monitor) error {
		if r == nil {
			return errors.New("nil reporter")
		}
		m.reporters = append(m.reporters, r)
		return nil
	}
}

// WithObserver sets a function notified of every event.
func WithObserver(f func(Event)) Option {
	return func(m *Monitor) error {
		m.observer = f
		return nil
	}
}

// WithUpdates sets a channel of configuration changes. Only the keys in
// config.Live are applied.
func WithUpdates(c <-chan map[string]string) Option {
	return func(m *Monitor) error {
		m.updates = c
		return nil
	}
}

// WithClock replaces the wall clock used when no datagram arrives.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) error {
		if now == nil {
			return errors.New("nil clock")
		}
		m.now = now
		return nil
	}
}

// New returns a Monitor using cfg, which should already be validated.
func New(cfg *config.Config, options ...Option) (*Monitor, error) {
	if cfg.Logger == nil {
		return nil, errors.New("config has no logger")
	}
	if cfg.Period() <= 0 {
		return nil, fmt.Errorf("invalid statistics period: %v", cfg.Period())
	}

	m := &Monitor{
		cfg:      cfg,
		log:      cfg.Logger,
		id:       uuid.New(),
		channels: NewChannels(),
		pat:      psi.NewVersionedTable(),
		sdt:      psi.NewVersionedTable(),
		services: NewServices(),
		stats:    newStats(cfg.Period()),
		now:      time.Now,
	}
	for _, option := range options {
		err := option(m)
		if err != nil {
			return nil, fmt.Errorf("option failed with error: %w", err)
		}
	}
	return m, nil
}

// ID returns the session identifier of the monitor.
func (m *Monitor) ID() uuid.UUID { return m.id }

// Totals returns the counters since the start.
func (m *Monitor) Totals() Totals { return m.stats.Totals }

// Channel returns the state of pid.
func (m *Monitor) Channel(pid uint16) Channel { return m.channels[pid&mts.MaxPID] }

// Services returns the service directory.
func (m *Monitor) Services() *Services { return m.services }

func (m *Monitor) emit(e Event) {
	if m.observer != nil {
		m.observer(e)
	}
}

// ProcessDatagram processes every whole unit of d. Trailing bytes that do not
// make a whole unit are ignored.
func (m *Monitor) ProcessDatagram(d input.Datagram) {
	m.stats.begin(d.Time)
	m.noteArrival(d.Time)

	n := len(d.Data) / mts.PacketSize
	for i := 0; i < n; i++ {
		m.processUnit(d.Data[i*mts.PacketSize : (i+1)*mts.PacketSize])
	}
	m.stats.rate.Report(n * mts.PacketSize)
}

// noteArrival checks the time since the previous datagram.
func (m *Monitor) noteArrival(t time.Time) {
	last := m.lastRecv
	m.lastRecv = t
	if t.After(m.clock) {
		m.clock = t
	}
	if last.IsZero() {
		return
	}

	delta := t.Sub(last)
	if m.cfg.ShowTimes {
		m.log.Info("datagram received", "delta", delta)
		return
	}
	if delta <= m.cfg.Gap() {
		return
	}
	if delta > time.Second {
		m.log.Error("packet gap detected", "gap", delta)
	} else {
		m.log.Warning("packet gap detected", "gap", delta)
	}
	m.emit(Event{Kind: PacketGap, Gap: delta})
}

func (m *Monitor) processUnit(b []byte) {
	m.stats.Packets++

	u, err := mts.ParseUnit(b)
	if err != nil {
		m.stats.SyncErrors++
		m.log.Debug("invalid unit", "error", err)
		return
	}
	if u.PID == mts.NullPid {
		return
	}

	ch := &m.channels[u.PID]
	m.stats.DataPackets++
	ch.Packets++
	if ch.Data {
		m.stats.Media++
	}

	if !mts.Continuous(ch.LastCC, u.CC, u.HasPayload(), u.Discontinuity) {
		m.stats.CCErrors++
		if m.cfg.ShowCC {
			m.log.Info("discontinuity detected", "pid", u.PID, "last", ch.LastCC, "cc", u.CC)
		} else {
			m.log.Debug("discontinuity detected", "pid", u.PID, "last", ch.LastCC, "cc", u.CC)
		}
		m.emit(Event{Kind: Discontinuity, PID: u.PID})
		if ch.Control {
			ch.asm.Reset()
		}
	}
	ch.LastCC = u.CC

	if u.TEI {
		m.stats.TEIErrors++
		m.log.Debug("transport error indicator set", "pid", u.PID)
		m.emit(Event{Kind: TransportError, PID: u.PID})
		if ch.Control {
			ch.asm.Reset()
		}
		return
	}

	if ch.Control {
		m.feed(u.PID, ch, u.Payload, u.PUSI)
	}
}

// feed passes the payload of one unit of a control channel to its assembler,
// dispatching every section completed.
func (m *Monitor) feed(pid uint16, ch *Channel, p []byte, pusi bool) {
	if len(p) == 0 {
		return
	}

	if !pusi {
		if !ch.asm.InProgress() {
			return
		}
		// Anything after a completed section is stuffing.
		s, _ := ch.asm.Write(p)
		if s != nil {
			m.section(pid, ch, s)
		}
		return
	}

	ptr := int(p[0])
	p = p[1:]
	if ptr > len(p) {
		m.log.Debug("pointer field overruns payload", "pid", pid, "pointer", ptr)
		ch.asm.Reset()
		return
	}
	if ch.asm.InProgress() {
		s, _ := ch.asm.Write(p[:ptr])
		if s != nil && !m.section(pid, ch, s) {
			return
		}
	}
	ch.asm.Reset()

	for p = p[ptr:]; len(p) != 0; {
		s, n := ch.asm.Write(p)
		if n == 0 {
			break
		}
		p = p[n:]
		if s != nil && !m.section(pid, ch, s) {
			return
		}
	}
}

// section validates s and dispatches it. It returns false if s was invalid,
// in which case the assembler of ch has been reset.
func (m *Monitor) section(pid uint16, ch *Channel, s psi.Section) bool {
	err := psi.Validate(s)
	if err != nil {
		m.log.Warning("invalid section", "pid", pid, "error", err)
		ch.asm.Reset()
		m.emit(Event{Kind: InvalidSection, PID: pid, Err: err})
		return false
	}
	m.dispatch(pid, s)
	return true
}

// dispatch routes a valid section to the handler of its table.
func (m *Monitor) dispatch(pid uint16, s psi.Section) {
	if !s.SyntaxIndicator() {
		m.log.Debug("ignoring short form section", "pid", pid, "table", s.TableID())
		return
	}
	switch {
	case pid == mts.PatPid && s.TableID() == psi.PATTableID:
		m.installTable(pid, "PAT", m.pat, s, psi.ValidatePAT, m.handlePAT)
	case pid == mts.SdtPid && s.TableID() == psi.SDTActualTableID:
		m.installTable(pid, "SDT", m.sdt, s, psi.ValidateSDT, m.handleSDT)
	case s.TableID() == psi.PMTTableID && pid != mts.PatPid && pid != mts.SdtPid:
		m.handlePMT(pid, s)
	default:
		m.log.Debug("ignoring section", "pid", pid, "table", s.TableID())
	}
}

// installTable accumulates s into vt and installs the table once complete.
func (m *Monitor) installTable(pid uint16, name string, vt *psi.VersionedTable, s psi.Section, validate func(*psi.Table) error, handle func(cur, old *psi.Table)) {
	if !vt.Accumulate(s) {
		return
	}
	res, err := vt.Install(validate, handle)
	switch res {
	case psi.Rejected:
		m.log.Warning("invalid table", "table", name, "pid", pid, "error", err)
		m.emit(Event{Kind: InvalidTable, PID: pid, Err: err})
	case psi.Unchanged:
		m.log.Debug("table unchanged", "table", name)
	}
}

// Tick ends the current statistics interval if it is due at now, passing the
// record to every reporter. It returns the record and whether one was made.
func (m *Monitor) Tick(now time.Time) (Record, bool) {
	m.stats.begin(now)
	if now.After(m.clock) {
		m.clock = now
	}
	if !m.stats.Due(now) {
		return Record{}, false
	}

	delta, elapsed := m.stats.interval(now)
	r := Record{
		Time:        now,
		Elapsed:     elapsed,
		Bitrate:     rate(delta.Packets, elapsed),
		DataBitrate: rate(delta.DataPackets, elapsed),
		Delta:       delta,
		Totals:      m.stats.Totals,
		Services:    m.services.Len(),
		Rolling:     m.stats.rollingRate(),
		Source:      m.source,
	}
	if !m.lastRecv.IsZero() {
		r.Idle = now.Sub(m.lastRecv)
	} else {
		r.Idle = now.Sub(m.stats.start)
	}
	if svc := m.services.Primary(); svc != nil {
		r.Primary = svc.Name
		r.Scrambled = svc.Scrambled
	}
	if r.Services > 1 {
		r.Scrambled = m.services.AnyScrambled()
	}

	for _, rep := range m.reporters {
		err := rep.Report(r)
		if err != nil {
			m.log.Error("could not report statistics", "error", err)
		}
	}
	return r, true
}

// Summary returns the statistics of the whole run so far.
func (m *Monitor) Summary() Summary {
	s := Summary{
		Start:    m.stats.start,
		End:      m.clock,
		Totals:   m.stats.Totals,
		Services: m.services.Len(),
		Source:   m.source,
	}
	elapsed := s.End.Sub(s.Start)
	s.Bitrate = rate(s.Totals.Packets, elapsed)
	s.DataBitrate = rate(s.Totals.DataPackets, elapsed)
	return s
}

// Run processes datagrams from src until ctx is cancelled or src ends. It
// returns nil on cancellation or end of input, and the cause of any other
// receive failure.
func (m *Monitor) Run(ctx context.Context, src input.Source) error {
	m.source = src.Name()
	m.log.Info("monitor started", "session", m.id.String(), "source", m.source)

	for {
		select {
		case <-ctx.Done():
			return m.finish(nil)
		case vars := <-m.updates:
			m.apply(vars)
		default:
		}

		d, err := src.Next()
		switch {
		case err == nil:
			m.ProcessDatagram(d)
			m.Tick(d.Time)
		case errors.Is(err, input.ErrTimeout):
			m.Tick(m.now())
		case errors.Is(err, input.ErrMalformed):
			m.log.Warning("dropping datagram", "error", err)
		case errors.Is(err, io.EOF):
			m.log.Info("end of input", "source", m.source)
			return m.finish(nil)
		default:
			return m.finish(fmt.Errorf("could not receive from %s: %w", m.source, err))
		}
	}
}

// apply applies the live subset of vars to the configuration.
func (m *Monitor) apply(vars map[string]string) {
	live := make(map[string]string)
	for _, k := range config.Live {
		if v, ok := vars[k]; ok {
			live[k] = v
		}
	}
	if len(live) == 0 {
		return
	}
	m.cfg.Update(live)
	m.log.SetLevel(m.cfg.LogLevel)
	m.log.Info("configuration updated", "vars", live)
}

func (m *Monitor) finish(err error) error {
	s := m.Summary()
	for _, rep := range m.reporters {
		rerr := rep.Finish(s)
		if rerr != nil {
			m.log.Error("could not report summary", "error", rerr)
		}
	}
	m.log.Info("monitor stopped", "session", m.id.String(), "packets", s.Totals.Packets, "ccErrors", s.Totals.CCErrors)
	return err
}

// Close releases the service directory and any partly assembled sections.
// The monitor should not be used after Close.
func (m *Monitor) Close() {
	m.services.Clear()
	for pid := range m.channels {
		m.channels.Reset(uint16(pid))
	}
	m.log.Debug("monitor state released", "session", m.id.String())
}
