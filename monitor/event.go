/*
DESCRIPTION
  event.go provides the observations a Monitor reports to its observer.

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
)

// EventKind identifies an observation.
type EventKind int

// Observations.
const (
	Discontinuity  EventKind = iota // A continuity counter error.
	TransportError                  // A unit with the transport error indicator set.
	InvalidSection                  // A reassembled section failed validation.
	InvalidTable                    // A complete table failed validation.
	ProgramAdded                    // A PAT introduced a program.
	ProgramMoved                    // A PAT moved a program to another PMT PID.
	PMTVersion                      // A PMT changed version.
	ServiceUpdated                  // An SDT described a service.
	PacketGap                       // Datagrams stopped for longer than the gap threshold.
)

var kindNames = [...]string{
	Discontinuity:  "discontinuity",
	TransportError: "transport error",
	InvalidSection: "invalid section",
	InvalidTable:   "invalid table",
	ProgramAdded:   "program added",
	ProgramMoved:   "program moved",
	PMTVersion:     "PMT version",
	ServiceUpdated: "service updated",
	PacketGap:      "packet gap",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return kindNames[k]
}

// Event is one observation. Fields not relevant to the kind are zero.
type Event struct {
	Kind    EventKind
	PID     uint16
	OldPID  uint16 // Previous PMT PID of a moved program.
	Program uint16 // Program number or service ID.
	Version uint8
	Gap     time.Duration
	Err     error
}

func (e Event) String() string {
	switch e.Kind {
	case ProgramMoved:
		return fmt.Sprintf("%v: program %d from PID %d to %d", e.Kind, e.Program, e.OldPID, e.PID)
	case ProgramAdded, PMTVersion, ServiceUpdated:
		return fmt.Sprintf("%v: program %d PID %d version %d", e.Kind, e.Program, e.PID, e.Version)
	case PacketGap:
		return fmt.Sprintf("%v: %v", e.Kind, e.Gap)
	case InvalidSection, InvalidTable:
		return fmt.Sprintf("%v: PID %d: %v", e.Kind, e.PID, e.Err)
	}
	return fmt.Sprintf("%v: PID %d", e.Kind, e.PID)
}
