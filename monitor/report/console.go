/*
DESCRIPTION
  console.go provides a Reporter that prints a coloured statistics line per
  period and a summary when monitoring stops.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package report provides consumers of monitor statistics: a console
// renderer, a CSV log and Prometheus metrics.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ausocean/tsmon/monitor"
)

// TimeFormat is the timestamp layout of console lines.
const TimeFormat = "2006-01-02 15:04:05"

// Thresholds at which counts turn yellow and red.
const (
	ccWarning      = 10
	ccCritical     = 100
	errorWarning   = 1
	errorCritical  = 10
	deadAfter      = 500 * time.Millisecond
	bitsPerMegabit = 1e6
)

// Console renders records as lines of text on w. Colours are used only when
// w is a terminal that supports them.
type Console struct {
	w io.Writer

	green  lipgloss.Style
	yellow lipgloss.Style
	red    lipgloss.Style
	cyan   lipgloss.Style
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:      w,
		green:  r.NewStyle().Foreground(lipgloss.Color("2")),
		yellow: r.NewStyle().Foreground(lipgloss.Color("3")),
		red:    r.NewStyle().Foreground(lipgloss.Color("1")),
		cyan:   r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// Report writes one statistics line.
func (c *Console) Report(r monitor.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format(TimeFormat))
	sb.WriteString(" [")
	sb.WriteString(r.Source)
	switch {
	case r.Services > 1:
		sb.WriteString("|" + c.cyan.Render("MPTS") + strconv.Itoa(r.Services))
	case r.Services == 1:
		sb.WriteString("|" + c.green.Render(r.Label()))
		if r.Scrambled {
			sb.WriteString(c.red.Render("$"))
		}
	}
	sb.WriteString("] ")
	sb.WriteString(c.status(r))
	fmt.Fprintf(&sb, " bitrate %.2f (data: %.2f) Mbps cc=%s sync=%s tei=%s\n",
		r.Bitrate/bitsPerMegabit, r.DataBitrate/bitsPerMegabit,
		c.number(r.Delta.CCErrors, ccWarning, ccCritical),
		c.number(r.Delta.SyncErrors, errorWarning, errorCritical),
		c.number(r.Delta.TEIErrors, errorWarning, errorCritical),
	)
	_, err := io.WriteString(c.w, sb.String())
	return err
}

// status summarises the health of the stream.
func (c *Console) status(r monitor.Record) string {
	switch {
	case r.Totals.CCErrors > ccCritical:
		return c.red.Render("CC")
	case r.Totals.CCErrors > ccWarning:
		return c.yellow.Render("CC")
	case r.Idle > deadAfter:
		return c.red.Render("DEAD")
	}
	return c.green.Render("OK")
}

// number renders n coloured by the thresholds it has reached.
func (c *Console) number(n, warning, critical uint64) string {
	s := strconv.FormatUint(n, 10)
	switch {
	case n >= critical:
		return c.red.Render(s)
	case n >= warning:
		return c.yellow.Render(s)
	}
	return c.green.Render(s)
}

// Finish writes the summary of the run.
func (c *Console) Finish(s monitor.Summary) error {
	var sb strings.Builder
	sb.WriteString("Final stats:\n")
	fmt.Fprintf(&sb, "  total bitrate: %.2f Mbps\n", s.Bitrate/bitsPerMegabit)
	fmt.Fprintf(&sb, "  total data bitrate: %.2f Mbps\n", s.DataBitrate/bitsPerMegabit)
	fmt.Fprintf(&sb, "  total packets: %d\n", s.Totals.Packets)
	fmt.Fprintf(&sb, "  services: %d\n", s.Services)
	fmt.Fprintf(&sb, "  sync errors: %s\n", c.number(s.Totals.SyncErrors, errorWarning, errorCritical))
	fmt.Fprintf(&sb, "  cc errors: %s\n", c.number(s.Totals.CCErrors, ccWarning, ccCritical))
	fmt.Fprintf(&sb, "  tei errors: %s\n", c.number(s.Totals.TEIErrors, errorWarning, errorCritical))
	_, err := io.WriteString(c.w, sb.String())
	return err
}
