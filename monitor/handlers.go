/*
DESCRIPTION
  handlers.go provides the PAT, PMT and SDT handlers that update channel
  roles and the service directory.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package monitor

import (
	"github.com/ausocean/tsmon/container/mts"
	"github.com/ausocean/tsmon/container/mts/dvb"
	"github.com/ausocean/tsmon/container/mts/psi"
)

// handlePAT applies a newly installed PAT. old is nil on first install.
func (m *Monitor) handlePAT(cur, old *psi.Table) {
	m.log.Info("PAT installed", "tsid", cur.TableIDExt(), "version", cur.Version())

	progs := psi.TablePrograms(cur)
	for _, p := range progs {
		if p.Number == 0 {
			if p.PID != mts.NitPid {
				m.log.Warning("non-compliant NIT PID", "pid", p.PID)
			}
			continue
		}

		var prev psi.Program
		var existed bool
		if old != nil {
			prev, existed = psi.FindProgram(old, p.Number)
		}

		switch {
		case !existed:
			m.channels.SetControl(p.PID, true)
			m.services.Get(p.Number).PMTPID = p.PID
			m.log.Info("program added", "program", p.Number, "pid", p.PID)
			m.emit(Event{Kind: ProgramAdded, Program: p.Number, PID: p.PID, Version: cur.Version()})

		case prev.PID != p.PID:
			m.channels.SetControl(p.PID, true)
			if !usesPID(progs, prev.PID) {
				m.channels.SetControl(prev.PID, false)
			}
			m.channels.Reset(prev.PID)
			m.services.Get(p.Number).PMTPID = p.PID
			m.log.Info("program moved", "program", p.Number, "from", prev.PID, "to", p.PID)
			m.emit(Event{Kind: ProgramMoved, Program: p.Number, PID: p.PID, OldPID: prev.PID, Version: cur.Version()})
		}
	}
}

// usesPID reports whether a program other than the network pointer maps to
// pid.
func usesPID(progs []psi.Program, pid uint16) bool {
	for _, p := range progs {
		if p.Number != 0 && p.PID == pid {
			return true
		}
	}
	return false
}

// handlePMT applies a PMT section received on pid.
func (m *Monitor) handlePMT(pid uint16, s psi.Section) {
	if !s.CurrentNext() {
		return
	}
	err := psi.ValidatePMTSection(s)
	if err != nil {
		m.log.Warning("invalid PMT", "pid", pid, "error", err)
		m.emit(Event{Kind: InvalidTable, PID: pid, Err: err})
		return
	}

	program := s.TableIDExt()
	svc := m.services.Get(program)
	if svc == nil {
		m.log.Warning("PMT for program 0", "pid", pid)
		return
	}
	if svc.PMTVersion == s.Version() {
		return
	}
	m.log.Info("PMT version change", "program", program, "from", svc.PMTVersion, "to", s.Version())
	svc.PMTVersion = s.Version()
	if svc.PMTPID == 0 {
		svc.PMTPID = pid
	}
	m.emit(Event{Kind: PMTVersion, Program: program, PID: pid, Version: s.Version()})

	pmt, err := psi.ParsePMT(s)
	if err != nil {
		m.log.Warning("could not parse PMT", "pid", pid, "error", err)
		m.emit(Event{Kind: InvalidTable, PID: pid, Err: err})
		return
	}
	for _, es := range pmt.Streams {
		data := isData(es)
		m.channels.SetData(es.PID, data)
		m.log.Info("elementary stream", "pid", es.PID, "type", es.Type, "data", data)
	}
}

// dataStreamTypes are the stream types of audio and video.
var dataStreamTypes = map[uint8]bool{
	psi.StreamTypeMPEG1Video: true,
	psi.StreamTypeMPEG2Video: true,
	psi.StreamTypeMPEG4Video: true,
	psi.StreamTypeH264:       true,
	psi.StreamTypeH265:       true,
	psi.StreamTypeMPEG1Audio: true,
	psi.StreamTypeMPEG2Audio: true,
	psi.StreamTypeADTS:       true,
	psi.StreamTypeLATM:       true,
}

// dataTags are descriptor tags that announce audio or subtitles carried as
// private data.
var dataTags = map[uint8]bool{
	psi.AC3DescriptorTag:        true,
	psi.EAC3DescriptorTag:       true,
	psi.ExtensionDescriptorTag:  true,
	psi.SubtitlingDescriptorTag: true,
	psi.TeletextDescriptorTag:   true,
}

// isData reports whether es carries audio, video or subtitles.
func isData(es psi.ElementaryStream) bool {
	if dataStreamTypes[es.Type] {
		return true
	}
	for _, tag := range es.Tags {
		if dataTags[tag] {
			return true
		}
	}
	return false
}

// handleSDT applies a newly installed SDT. The PMT PID of a service is left
// to the PAT.
func (m *Monitor) handleSDT(cur, old *psi.Table) {
	m.log.Info("SDT installed", "tsid", cur.TableIDExt(), "version", cur.Version())

	for _, s := range cur.Sections() {
		svcs, err := psi.SDTServices(s)
		if err != nil {
			// ValidateSDT has already parsed every section.
			m.log.Error("could not parse SDT section", "error", err)
			continue
		}
		for _, entry := range svcs {
			for _, d := range entry.Descriptors {
				if d.Tag != psi.ServiceDescriptorTag {
					continue
				}
				sd, err := psi.ParseServiceDescriptor(d)
				if err != nil {
					m.log.Warning("invalid service descriptor", "service", entry.ID, "error", err)
					continue
				}
				svc := m.services.Get(entry.ID)
				if svc == nil {
					continue
				}
				svc.Name = dvb.DecodeString(sd.Name)
				svc.Provider = dvb.DecodeString(sd.Provider)
				svc.Type = sd.Type
				svc.Scrambled = entry.Scrambled
				m.log.Info("service described", "service", entry.ID, "name", svc.Name, "provider", svc.Provider,
					"type", sd.Type, "charset", string(dvb.CharsetOf(sd.Name)), "scrambled", entry.Scrambled)
				m.emit(Event{Kind: ServiceUpdated, Program: entry.ID, Version: cur.Version()})
			}
		}
	}
}
