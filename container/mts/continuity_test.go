/*
NAME
  continuity_test.go

DESCRIPTION
  continuity_test.go provides testing for the continuity counter rules.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import "testing"

func TestContinuous(t *testing.T) {
	tests := []struct {
		last, cc      uint8
		payload, disc bool
		want          bool
	}{
		{CCUnset, 9, true, false, true},
		{3, 4, true, false, true},
		{15, 0, true, false, true},
		{3, 3, true, false, false},
		{3, 5, true, false, false},
		{3, 3, false, false, true},
		{3, 4, false, false, true},
		{3, 6, false, false, false},
		{3, 9, true, true, true},
	}
	for i, test := range tests {
		got := Continuous(test.last, test.cc, test.payload, test.disc)
		if got != test.want {
			t.Errorf("test %d: did not get expected result.\n Got: %v\n Want: %v\n", i, got, test.want)
		}
	}
}

// TestContinuousExhaustive checks that exactly one counter value follows each
// counter for payload units.
func TestContinuousExhaustive(t *testing.T) {
	for last := uint8(0); last < 16; last++ {
		var n int
		for cc := uint8(0); cc < 16; cc++ {
			if Continuous(last, cc, true, false) {
				n++
				if cc != (last+1)%16 {
					t.Errorf("counter %d accepted after %d", cc, last)
				}
			}
		}
		if n != 1 {
			t.Errorf("%d counters accepted after %d", n, last)
		}
	}
}
