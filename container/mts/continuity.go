/*
NAME
  continuity.go

DESCRIPTION
  continuity.go provides the continuity counter rules used to detect lost or
  duplicated MPEG-TS units.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

// CCUnset marks a PID whose continuity counter has not been seen.
const CCUnset = 0xff

// NextCC returns the continuity counter that follows cc.
func NextCC(cc uint8) uint8 { return (cc + 1) & 0xf }

// Continuous reports whether a unit with counter cc may follow a unit of the
// same PID with counter last. Units with a payload must increment the counter
// by one. Units without one may repeat it, or increment it as some
// multiplexers do. A set discontinuity indicator, or an unset last counter,
// always passes.
func Continuous(last, cc uint8, hasPayload, discontinuity bool) bool {
	if last == CCUnset || discontinuity {
		return true
	}
	if cc == NextCC(last) {
		return true
	}
	return !hasPayload && cc == last
}
