/*
NAME
  assembler.go

DESCRIPTION
  assembler.go provides reassembly of PSI/SI sections from the payloads of
  consecutive MPEG-TS packets on one PID.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

// stuffing is the byte value padding the end of a PSI payload.
const stuffing = 0xff

// unitPayloadSize is the payload size of a transport stream unit.
const unitPayloadSize = 184

// Assembler accumulates payload fragments of one PID into complete sections.
// The zero value is ready to use.
type Assembler struct {
	buf []byte
}

// Reset discards any partially assembled section.
func (a *Assembler) Reset() { a.buf = nil }

// InProgress returns true if a section has been started but not completed.
func (a *Assembler) InProgress() bool { return len(a.buf) != 0 }

// Len returns the number of bytes held for the section in progress.
func (a *Assembler) Len() int { return len(a.buf) }

// Write consumes bytes from p into the section in progress. It returns the
// completed section, if p completed one, and the number of bytes of p consumed.
// Bytes after a completed section are left for the next call, so callers can
// loop over a payload that carries the tail of one section and the whole of
// the next. A stuffing byte where a section would start consumes the rest of p.
// A declared length beyond MaxSectionLen resets the assembler and also
// consumes the rest of p.
func (a *Assembler) Write(p []byte) (Section, int) {
	if len(a.buf) == 0 && len(p) != 0 && p[0] == stuffing {
		return nil, len(p)
	}

	var n int
	for n < len(p) {
		if len(a.buf) < HeaderLen {
			k := min(HeaderLen-len(a.buf), len(p)-n)
			a.buf = append(a.buf, p[n:n+k]...)
			n += k
			if len(a.buf) == HeaderLen && SectionLen(a.buf) > MaxSectionLen {
				a.Reset()
				return nil, len(p)
			}
			continue
		}

		total := HeaderLen + SectionLen(a.buf)
		k := min(total-len(a.buf), len(p)-n)
		a.buf = append(a.buf, p[n:n+k]...)
		n += k
		if len(a.buf) == total {
			break
		}
	}

	if len(a.buf) < HeaderLen || len(a.buf) < HeaderLen+SectionLen(a.buf) {
		return nil, n
	}
	s := Section(a.buf)
	a.buf = nil
	return s, n
}
