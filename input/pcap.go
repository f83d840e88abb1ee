/*
DESCRIPTION
  pcap.go provides a Source replaying the UDP datagrams of a pcap or pcapng
  capture file.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package input

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/pkg/errors"
)

// packetReader is satisfied by the pcap and pcapng readers.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Pcap is a Source replaying a capture file. Datagram times are capture
// timestamps and Next returns io.EOF at the end of the file.
type Pcap struct {
	source
	f       *os.File
	r       packetReader
	port    uint
	skipped uint64
}

// NewPcap opens the capture at path. Only UDP datagrams to port are
// returned, or every UDP datagram if port is 0.
func NewPcap(path string, port uint, log logging.Logger, options ...Option) (*Pcap, error) {
	p := &Pcap{source: source{log: log}, port: port}
	err := p.apply(options)
	if err != nil {
		return nil, err
	}

	p.f, err = os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open capture")
	}
	p.r, err = pcapgo.NewReader(p.f)
	if err != nil {
		_, serr := p.f.Seek(0, io.SeekStart)
		if serr != nil {
			p.f.Close()
			return nil, errors.Wrap(serr, "could not rewind capture")
		}
		p.r, err = pcapgo.NewNgReader(p.f, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			p.f.Close()
			return nil, errors.Wrap(err, "not a pcap or pcapng file")
		}
	}
	log.Info("replaying capture", "path", path, "linkType", p.r.LinkType().String(), "port", port)
	return p, nil
}

// Next implements Source.
func (p *Pcap) Next() (Datagram, error) {
	for {
		data, ci, err := p.r.ReadPacketData()
		if err == io.EOF {
			p.log.Debug("end of capture", "skipped", p.skipped)
			return Datagram{}, io.EOF
		}
		if err != nil {
			return Datagram{}, errors.Wrap(err, "could not read capture")
		}

		pkt := gopacket.NewPacket(data, p.r.LinkType(), gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		l := pkt.Layer(layers.LayerTypeUDP)
		if l == nil {
			p.skipped++
			continue
		}
		udp := l.(*layers.UDP)
		if p.port != 0 && uint(udp.DstPort) != p.port {
			p.skipped++
			continue
		}

		d := Datagram{Time: ci.Timestamp}
		d.Data, err = p.unwrap(udp.Payload)
		if err != nil {
			return Datagram{}, err
		}
		return d, nil
	}
}

// Name implements Source.
func (p *Pcap) Name() string { return filepath.Base(p.f.Name()) }

// Close implements Source.
func (p *Pcap) Close() error { return p.f.Close() }
