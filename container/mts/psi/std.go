/*
NAME
  std.go

DESCRIPTION
  std.go provides constructors for the single section tables a simple
  multiplex carries.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

// NetworkPID is the conventional PID of the network information table that
// program 0 of a PAT points to.
const NetworkPID = 0x10

// NewPATPSI returns a single section PAT for transport stream tsid.
func NewPATPSI(tsid uint16, version byte, progs ...Program) *PSI {
	return &PSI{
		TableID:         PATTableID,
		SyntaxIndicator: true,
		SyntaxSection: &SyntaxSection{
			TableIDExt:   tsid,
			Version:      version,
			CurrentNext:  true,
			SpecificData: &PAT{Programs: progs},
		},
	}
}

// NewPMTPSI returns a PMT for program with the PCR carried on pcr.
func NewPMTPSI(program uint16, version byte, pcr uint16, streams ...StreamSpecificData) *PSI {
	return &PSI{
		TableID:         PMTTableID,
		SyntaxIndicator: true,
		SyntaxSection: &SyntaxSection{
			TableIDExt:  program,
			Version:     version,
			CurrentNext: true,
			SpecificData: &PMT{
				ProgramClockPID: pcr,
				Streams:         streams,
			},
		},
	}
}

// NewSDTPSI returns a single section SDT describing the actual transport
// stream tsid.
func NewSDTPSI(tsid, onid uint16, version byte, svcs ...SDTService) *PSI {
	return &PSI{
		TableID:         SDTActualTableID,
		SyntaxIndicator: true,
		PrivateBit:      true,
		SyntaxSection: &SyntaxSection{
			TableIDExt:  tsid,
			Version:     version,
			CurrentNext: true,
			SpecificData: &SDT{
				OriginalNetworkID: onid,
				Services:          svcs,
			},
		},
	}
}

// NewServiceDescriptor returns a service descriptor. provider and name must
// already be in their DVB encoding.
func NewServiceDescriptor(typ byte, provider, name []byte) Descriptor {
	data := make([]byte, 0, 3+len(provider)+len(name))
	data = append(data, typ, byte(len(provider)))
	data = append(data, provider...)
	data = append(data, byte(len(name)))
	data = append(data, name...)
	return NewDescriptor(ServiceDescriptorTag, data)
}
