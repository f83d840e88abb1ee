/*
DESCRIPTION
  layout.go describes the programs tsgen sends and builds their PAT, PMT
  and SDT sections.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ausocean/tsmon/container/mts"
	"github.com/ausocean/tsmon/container/mts/dvb"
	"github.com/ausocean/tsmon/container/mts/pes"
	"github.com/ausocean/tsmon/container/mts/psi"
)

// Layout is the set of programs in the generated stream.
type Layout struct {
	TSID     uint16    `yaml:"tsid"`
	ONID     uint16    `yaml:"onid"`
	Programs []Program `yaml:"programs"`
}

// Program is one service of the generated stream.
type Program struct {
	Number    uint16   `yaml:"number"`
	Name      string   `yaml:"name"`
	Provider  string   `yaml:"provider"`
	PMT       uint16   `yaml:"pmt"`
	Scrambled bool     `yaml:"scrambled"`
	Streams   []Stream `yaml:"streams"`
}

// Stream is one elementary stream of a program. Weight is its share of the
// elementary units relative to the other streams.
type Stream struct {
	PID         uint16  `yaml:"pid"`
	Type        uint8   `yaml:"type"`
	Descriptors []uint8 `yaml:"descriptors"`
	Weight      int     `yaml:"weight"`
}

// Service type carried in the service descriptor.
const digitalTV = 0x01

// Running status "running" in the SDT service loop.
const running = 4

// descriptorData holds the body written for known descriptor tags. Tags not
// listed are written empty.
var descriptorData = map[uint8][]byte{
	psi.SubtitlingDescriptorTag: {'e', 'n', 'g', 0x10, 0x00, 0x01, 0x00, 0x01},
	psi.AC3DescriptorTag:        {0x00},
	psi.TeletextDescriptorTag:   {'e', 'n', 'g', 0x09, 0x00},
}

var errNoPrograms = errors.New("layout has no programs")

// defaultLayout returns a single program with video, audio and subtitles.
func defaultLayout() *Layout {
	return &Layout{
		TSID: 1,
		ONID: 1,
		Programs: []Program{{
			Number:   1,
			Name:     "Test",
			Provider: "AusOcean",
			PMT:      0x100,
			Streams: []Stream{
				{PID: 0x101, Type: psi.StreamTypeMPEG2Video, Weight: 90},
				{PID: 0x102, Type: psi.StreamTypeMPEG2Audio, Weight: 8},
				{PID: 0x103, Type: psi.StreamTypePrivate, Descriptors: []uint8{psi.SubtitlingDescriptorTag}, Weight: 2},
			},
		}},
	}
}

// loadLayout reads a YAML layout from path.
func loadLayout(path string) (*Layout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read layout: %w", err)
	}
	var l Layout
	err = yaml.Unmarshal(b, &l)
	if err != nil {
		return nil, fmt.Errorf("could not parse layout %s: %w", path, err)
	}
	err = l.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid layout %s: %w", path, err)
	}
	return &l, nil
}

// validate checks program numbers and PIDs, and defaults identifiers and
// weights.
func (l *Layout) validate() error {
	if len(l.Programs) == 0 {
		return errNoPrograms
	}
	if l.TSID == 0 {
		l.TSID = 1
	}
	if l.ONID == 0 {
		l.ONID = 1
	}

	pids := make(map[uint16]bool)
	claim := func(pid uint16) error {
		if pid < mts.FirstPID || pid >= mts.NullPid {
			return fmt.Errorf("PID %#x out of range", pid)
		}
		if pids[pid] {
			return fmt.Errorf("PID %#x used twice", pid)
		}
		pids[pid] = true
		return nil
	}
	numbers := make(map[uint16]bool)
	for i := range l.Programs {
		p := &l.Programs[i]
		if p.Number == 0 || numbers[p.Number] {
			return fmt.Errorf("bad program number %d", p.Number)
		}
		numbers[p.Number] = true
		if len(p.Streams) == 0 {
			return fmt.Errorf("program %d has no streams", p.Number)
		}
		err := claim(p.PMT)
		if err != nil {
			return fmt.Errorf("program %d: %w", p.Number, err)
		}
		for j := range p.Streams {
			s := &p.Streams[j]
			err := claim(s.PID)
			if err != nil {
				return fmt.Errorf("program %d: %w", p.Number, err)
			}
			if s.Weight <= 0 {
				s.Weight = 1
			}
		}
	}
	return nil
}

// pat returns the PAT, with the network pointer first.
func (l *Layout) pat(version byte) psi.Section {
	progs := []psi.Program{{Number: 0, PID: psi.NetworkPID}}
	for _, p := range l.Programs {
		progs = append(progs, psi.Program{Number: p.Number, PID: p.PMT})
	}
	return psi.NewPATPSI(l.TSID, version, progs...).Bytes()
}

// pmt returns the PMT of p. The first stream carries the PCR.
func (p *Program) pmt(version byte) psi.Section {
	var streams []psi.StreamSpecificData
	for _, s := range p.Streams {
		var ds []psi.Descriptor
		for _, tag := range s.Descriptors {
			ds = append(ds, psi.NewDescriptor(tag, descriptorData[tag]))
		}
		streams = append(streams, psi.StreamSpecificData{StreamType: s.Type, PID: s.PID, Descriptors: ds})
	}
	return psi.NewPMTPSI(p.Number, version, p.Streams[0].PID, streams...).Bytes()
}

// sdt returns the SDT actual describing every program.
func (l *Layout) sdt(version byte) psi.Section {
	var svcs []psi.SDTService
	for _, p := range l.Programs {
		svcs = append(svcs, psi.SDTService{
			ID:                  p.Number,
			EITSchedule:         true,
			EITPresentFollowing: true,
			RunningStatus:       running,
			Scrambled:           p.Scrambled,
			Descriptors: []psi.Descriptor{
				psi.NewServiceDescriptor(digitalTV, dvb.EncodeString(p.Provider), dvb.EncodeString(p.Name)),
			},
		})
	}
	return psi.NewSDTPSI(l.TSID, l.ONID, version, svcs...).Bytes()
}

// videoPID returns the first video stream, or the first stream if there is
// no video.
func (l *Layout) videoPID() uint16 {
	for _, p := range l.Programs {
		for _, s := range p.Streams {
			if pes.StreamID(s.Type) == pes.VideoSID {
				return s.PID
			}
		}
	}
	return l.Programs[0].Streams[0].PID
}
