/*
NAME
  options.go

DESCRIPTION
  options.go provides options for the Writer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"errors"
)

var ErrInvalidCC = errors.New("invalid continuity counter")

// InitialCC is an option that can be passed to NewWriter to set the
// continuity counter given to the first unit of every PID. The default is 0.
func InitialCC(cc byte) func(*Writer) error {
	return func(w *Writer) error {
		if cc > 0xf {
			return ErrInvalidCC
		}
		w.initialCC = cc
		w.log.Debug("configured initial continuity counter", "cc", cc)
		return nil
	}
}
