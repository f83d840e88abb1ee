/*
DESCRIPTION
  channel.go provides the per-PID state table of the monitor.

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
	"github.com/ausocean/tsmon/container/mts/psi"
)

// Channel is the state kept for one PID.
type Channel struct {
	LastCC  uint8  // Last continuity counter, or mts.CCUnset.
	Packets uint64 // Valid units received.
	Control bool   // Control is set for channels carrying tables.
	Data    bool   // Data is set for channels carrying audio, video or subtitles.

	asm psi.Assembler
}

// InProgress reports whether a section is part way through reassembly.
func (c Channel) InProgress() bool { return c.asm.InProgress() }

// Channels holds the state of every PID.
type Channels [mts.NumPIDs]Channel

// NewChannels returns a table with every counter unset and the PAT and SDT
// channels marked as control channels.
func NewChannels() *Channels {
	c := &Channels{}
	for i := range c {
		c[i].LastCC = mts.CCUnset
	}
	c[mts.PatPid].Control = true
	c[mts.SdtPid].Control = true
	return c
}

// SetControl sets the control flag of pid. A change of role discards any
// section in progress.
func (c *Channels) SetControl(pid uint16, control bool) {
	ch := &c[pid&mts.MaxPID]
	if ch.Control != control {
		ch.asm.Reset()
	}
	ch.Control = control
}

// SetData sets the data flag of pid.
func (c *Channels) SetData(pid uint16, data bool) {
	c[pid&mts.MaxPID].Data = data
}

// Reset discards any section in progress on pid.
func (c *Channels) Reset(pid uint16) {
	c[pid&mts.MaxPID].asm.Reset()
}
