/*
NAME
  writer.go

DESCRIPTION
  writer.go provides a Writer that packetises PSI sections and payloads into
  MPEG-TS units, keeping the continuity counter of every PID.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"fmt"
	"io"

	"github.com/ausocean/utils/logging"
)

const stuffing = 0xff

// Writer packetises sections and payloads into MPEG-TS units written to dst.
type Writer struct {
	dst io.Writer

	tsSpace [PacketSize]byte

	continuity map[uint16]byte
	initialCC  byte
	count      uint64

	// log is a function that will be used through the writer code for logging.
	log logging.Logger
}

// NewWriter returns a Writer writing units to dst. Options are applied in
// order.
func NewWriter(dst io.Writer, log logging.Logger, options ...func(*Writer) error) (*Writer, error) {
	w := &Writer{
		dst:        dst,
		continuity: make(map[uint16]byte),
		log:        log,
	}
	for _, option := range options {
		err := option(w)
		if err != nil {
			return nil, fmt.Errorf("option failed with error: %w", err)
		}
	}
	w.log.Debug("writer options applied", "initialCC", w.initialCC)
	return w, nil
}

// Count returns the number of units written.
func (w *Writer) Count() uint64 { return w.count }

// WriteSection packetises a single section onto pid.
func (w *Writer) WriteSection(pid uint16, s []byte) error {
	return w.WriteSections(pid, s)
}

// WriteSections packetises sections back to back onto pid. A unit in which a
// section starts has its payload unit start indicator set and a pointer field
// to the first such section. The last unit is padded with stuffing bytes.
func (w *Writer) WriteSections(pid uint16, sections ...[]byte) error {
	var data []byte
	var starts []int
	for _, s := range sections {
		starts = append(starts, len(data))
		data = append(data, s...)
	}

	for pos := 0; pos < len(data); {
		for len(starts) != 0 && starts[0] < pos {
			starts = starts[1:]
		}

		pkt := Packet{PID: pid, AFC: HasPayload}
		var payload []byte
		if len(starts) != 0 && starts[0] < pos+MaxPayloadSize-1 {
			pkt.PUSI = true
			payload = append(payload, byte(starts[0]-pos))
		}
		n := min(MaxPayloadSize-len(payload), len(data)-pos)
		if !pkt.PUSI && len(starts) != 0 && starts[0] < pos+n {
			// A section starting in the last byte needs a pointer field it
			// has no room for, so it moves to the next unit.
			n = starts[0] - pos
		}
		payload = append(payload, data[pos:pos+n]...)
		pos += n
		for len(payload) < MaxPayloadSize {
			payload = append(payload, stuffing)
		}

		pkt.CC = w.ccFor(pid)
		pkt.Payload = payload
		err := w.write(&pkt)
		if err != nil {
			return fmt.Errorf("could not write section unit: %w", err)
		}
	}
	w.log.Debug("sections written", "pid", pid, "sections", len(sections), "bytes", len(data))
	return nil
}

// WritePayload writes one unit carrying payload on pid. Payloads shorter
// than a full unit are preceded by adaptation field stuffing.
func (w *Writer) WritePayload(pid uint16, payload []byte, pusi bool) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("payload of %d bytes does not fit a unit", len(payload))
	}
	pkt := Packet{PID: pid, PUSI: pusi, AFC: HasPayload, Payload: payload}
	if len(payload) < MaxPayloadSize {
		if len(payload) > MaxPayloadSize-2 {
			return fmt.Errorf("payload of %d bytes leaves no room for adaptation field", len(payload))
		}
		pkt.AFC |= HasAdaptationField
	}
	pkt.CC = w.ccFor(pid)
	return w.write(&pkt)
}

// WritePCR writes one unit on pid carrying pcr in its adaptation field
// followed by payload.
func (w *Writer) WritePCR(pid uint16, pcr uint64, payload []byte, pusi bool) error {
	if len(payload) > MaxPCRPayloadSize {
		return fmt.Errorf("payload of %d bytes does not fit a unit with PCR", len(payload))
	}
	pkt := Packet{
		PID:     pid,
		PUSI:    pusi,
		RAI:     pusi,
		AFC:     HasPayload | HasAdaptationField,
		PCRF:    true,
		PCR:     pcr,
		Payload: payload,
		CC:      w.ccFor(pid),
	}
	return w.write(&pkt)
}

// WriteAdaptation writes an adaptation field only unit on pid. It carries the
// continuity counter of the previous unit of pid, which the counter rules
// permit for units without payload.
func (w *Writer) WriteAdaptation(pid uint16, discontinuity bool) error {
	pkt := Packet{PID: pid, AFC: HasAdaptationField, DI: discontinuity, CC: w.lastCC(pid)}
	return w.write(&pkt)
}

// WriteNull writes a null unit.
func (w *Writer) WriteNull() error {
	pkt := Packet{PID: NullPid, AFC: HasPayload, Payload: nullPayload[:]}
	return w.write(&pkt)
}

var nullPayload = func() (b [MaxPayloadSize]byte) {
	for i := range b {
		b[i] = stuffing
	}
	return
}()

// Skip advances the continuity counter of pid by n without writing, so that
// the next unit of pid shows n lost units.
func (w *Writer) Skip(pid uint16, n int) {
	cc, ok := w.continuity[pid]
	if !ok {
		cc = w.initialCC
	}
	w.continuity[pid] = byte((int(cc) + n) & 0xf)
	w.log.Debug("continuity skipped", "pid", pid, "n", n)
}

func (w *Writer) write(pkt *Packet) error {
	_, err := w.dst.Write(pkt.Bytes(w.tsSpace[:PacketSize]))
	if err != nil {
		return err
	}
	w.count++
	return nil
}

// ccFor returns the next continuity counter for pid.
func (w *Writer) ccFor(pid uint16) byte {
	cc, ok := w.continuity[pid]
	if !ok {
		cc = w.initialCC
	}
	const continuityCounterMask = 0xf
	w.continuity[pid] = (cc + 1) & continuityCounterMask
	return cc
}

// lastCC returns the counter of the last unit written on pid.
func (w *Writer) lastCC(pid uint16) byte {
	cc, ok := w.continuity[pid]
	if !ok {
		return w.initialCC
	}
	return (cc - 1) & 0xf
}
