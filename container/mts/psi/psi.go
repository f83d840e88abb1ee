/*
NAME
  psi.go

DESCRIPTION
  psi.go provides encoding of PSI/SI sections: the program association, program
  map and service description tables.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package psi provides encoding, reassembly, parsing and versioning of MPEG-TS
// program specific information and DVB service information.
package psi

// TSSDefLen is the length of the syntax section fields that follow the
// section length.
const TSSDefLen = 5

// PSI describes a long-form section to be encoded.
type PSI struct {
	TableID         byte           // Table ID
	SyntaxIndicator bool           // Section syntax indicator (1 for PAT, PMT, SDT)
	PrivateBit      bool           // Private bit (0 for PAT, PMT)
	SyntaxSection   *SyntaxSection // Table syntax section
}

// Table syntax section
type SyntaxSection struct {
	TableIDExt   uint16       // Table ID extension
	Version      byte         // Version number
	CurrentNext  bool         // Current/next indicator
	Section      byte         // Section number
	LastSection  byte         // Last section number
	SpecificData SpecificData // Specific data PAT/PMT/SDT
}

// Specific Data, (could be PAT, PMT or SDT)
type SpecificData interface {
	Bytes() []byte
}

// Program association table, implements SpecificData
type PAT struct {
	Programs []Program
}

// Program mapping table, implements SpecificData
type PMT struct {
	ProgramClockPID uint16               // Program clock reference PID.
	Descriptors     []Descriptor         // Program descriptors.
	Streams         []StreamSpecificData // Elementary stream specific data.
}

// Elementary stream specific data
type StreamSpecificData struct {
	StreamType  byte         // Stream type.
	PID         uint16       // Elementary PID.
	Descriptors []Descriptor // Elementary stream desriptors
}

// Service description table, implements SpecificData
type SDT struct {
	OriginalNetworkID uint16
	Services          []SDTService
}

// Bytes encodes p as a complete section, with its length and CRC computed.
func (p *PSI) Bytes() Section {
	data := p.SyntaxSection.Bytes()
	l := len(data) + CRCLen
	out := make([]byte, HeaderLen, HeaderLen+l)
	out[0] = p.TableID
	out[1] = asByte(p.SyntaxIndicator)<<7 | asByte(p.PrivateBit)<<6 | 0x30 | (0x0f & byte(l>>8))
	out[2] = byte(l)
	out = append(out, data...)
	return Section(AddCRC(out))
}

// Bytes outputs a byte slice representation of the SyntaxSection
func (t *SyntaxSection) Bytes() []byte {
	out := make([]byte, TSSDefLen)
	out[0] = byte(t.TableIDExt >> 8)
	out[1] = byte(t.TableIDExt)
	out[2] = 0xc0 | (0x3e & (t.Version << 1)) | (0x01 & asByte(t.CurrentNext))
	out[3] = t.Section
	out[4] = t.LastSection
	out = append(out, t.SpecificData.Bytes()...)
	return out
}

// Bytes outputs a byte slice representation of the PAT
func (p *PAT) Bytes() []byte {
	out := make([]byte, 0, PATLen*len(p.Programs))
	for _, prog := range p.Programs {
		out = append(out,
			byte(prog.Number>>8),
			byte(prog.Number),
			0xe0|(0x1f&byte(prog.PID>>8)),
			byte(prog.PID),
		)
	}
	return out
}

// Bytes outputs a byte slice representation of the PMT
func (p *PMT) Bytes() []byte {
	info := descriptorLoopBytes(p.Descriptors)
	out := make([]byte, PMTDefLen)
	out[0] = 0xe0 | (0x1f & byte(p.ProgramClockPID>>8))
	out[1] = byte(p.ProgramClockPID)
	out[2] = 0xf0 | (0x03 & byte(len(info)>>8))
	out[3] = byte(len(info))
	out = append(out, info...)
	for i := range p.Streams {
		out = append(out, p.Streams[i].Bytes()...)
	}
	return out
}

// Bytes outputs a byte slice representation of the StreamSpecificData
func (e *StreamSpecificData) Bytes() []byte {
	info := descriptorLoopBytes(e.Descriptors)
	out := make([]byte, ESSDataLen)
	out[0] = e.StreamType
	out[1] = 0xe0 | (0x1f & byte(e.PID>>8))
	out[2] = byte(e.PID)
	out[3] = 0xf0 | (0x03 & byte(len(info)>>8))
	out[4] = byte(len(info))
	return append(out, info...)
}

// Bytes outputs a byte slice representation of the SDT
func (s *SDT) Bytes() []byte {
	out := []byte{byte(s.OriginalNetworkID >> 8), byte(s.OriginalNetworkID), 0xff}
	for i := range s.Services {
		out = append(out, s.Services[i].Bytes()...)
	}
	return out
}

// Bytes outputs a byte slice representation of the SDTService
func (s *SDTService) Bytes() []byte {
	descs := descriptorLoopBytes(s.Descriptors)
	out := make([]byte, SDTServiceLen)
	out[0] = byte(s.ID >> 8)
	out[1] = byte(s.ID)
	out[2] = 0xfc | asByte(s.EITSchedule)<<1 | asByte(s.EITPresentFollowing)
	out[3] = s.RunningStatus<<5 | asByte(s.Scrambled)<<4 | (0x0f & byte(len(descs)>>8))
	out[4] = byte(len(descs))
	return append(out, descs...)
}

func asByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
