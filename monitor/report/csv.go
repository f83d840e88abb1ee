/*
DESCRIPTION
  csv.go provides a Reporter that appends a CSV row per statistics period.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ausocean/tsmon/monitor"
)

// Header is the first row written by a CSV reporter.
var Header = []string{
	"Timestamp",
	"Bitrate (kbps)",
	"Data Bitrate (kbps)",
	"CC Errors",
	"Sync Errors",
	"TEI Errors",
	"Total Packets",
	"Data Packets",
}

// CSV writes one row per record. Error columns are totals since the start,
// packet columns are counts for the period. Rows are flushed as they are
// written so the file can be followed while monitoring.
type CSV struct {
	w *csv.Writer
	c io.Closer
}

// NewCSV returns a CSV reporter writing to w, after writing the header. If w
// is an io.Closer it is closed by Finish.
func NewCSV(w io.Writer) (*CSV, error) {
	r := &CSV{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		r.c = c
	}
	err := r.write(Header)
	if err != nil {
		return nil, fmt.Errorf("could not write CSV header: %w", err)
	}
	return r, nil
}

// Report writes the row for r.
func (r *CSV) Report(rec monitor.Record) error {
	return r.write([]string{
		strconv.FormatInt(rec.Time.Unix(), 10),
		strconv.FormatFloat(rec.Bitrate/1000, 'f', 2, 64),
		strconv.FormatFloat(rec.DataBitrate/1000, 'f', 2, 64),
		strconv.FormatUint(rec.Totals.CCErrors, 10),
		strconv.FormatUint(rec.Totals.SyncErrors, 10),
		strconv.FormatUint(rec.Totals.TEIErrors, 10),
		strconv.FormatUint(rec.Delta.Packets, 10),
		strconv.FormatUint(rec.Delta.DataPackets, 10),
	})
}

func (r *CSV) write(row []string) error {
	err := r.w.Write(row)
	if err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

// Finish flushes and closes the destination.
func (r *CSV) Finish(monitor.Summary) error {
	r.w.Flush()
	err := r.w.Error()
	if r.c != nil {
		cerr := r.c.Close()
		if err == nil {
			err = cerr
		}
	}
	return err
}
